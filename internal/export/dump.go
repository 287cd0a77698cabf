package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"enrollment-insights/internal/aggregate"

	"gopkg.in/yaml.v3"
)

// Format of a whole-views dump.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("export: unknown format %q", s)
	}
}

// WriteViews dumps every view in one document.
func WriteViews(w io.Writer, v aggregate.Views, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("export: unknown format %q", f)
	}
}

// WriteDir writes one CSV per view plus a views dump into dir and returns
// the paths written, in a stable order.
func WriteDir(dir string, v aggregate.Views, f Format) ([]string, error) {
	if f == "" {
		f = FormatJSON
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"city_stats.csv", func(w io.Writer) error { return WriteCityCSV(w, v.CityStats) }},
		{"course_stats.csv", func(w io.Writer) error { return WriteCourseCSV(w, v.CourseStats) }},
		{"center_stats.csv", func(w io.Writer) error { return WriteCenterCSV(w, v.CenterStats) }},
		{"region_stats.csv", func(w io.Writer) error { return WriteRegionCSV(w, v.RegionStats) }},
		{"timeline.csv", func(w io.Writer) error { return WriteTimelineCSV(w, v.Timeline) }},
		{"kpis.csv", func(w io.Writer) error { return WriteKPICSV(w, v.KPIs) }},
		{"views." + string(f), func(w io.Writer) error { return WriteViews(w, v, f) }},
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		p := filepath.Join(dir, file.name)
		if err := writeFile(p, file.write); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("export: %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
