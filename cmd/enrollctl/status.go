package main

import (
	"fmt"
	"io"
	"time"

	"enrollment-insights/internal/aggregate"
	"enrollment-insights/internal/session"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)

	printer = message.NewPrinter(language.English)
)

// number formats with thousands separators.
func number(n int) string { return printer.Sprintf("%d", n) }

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Load data the way the dashboard does and summarize the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.start(cmd)
			printStatus(cmd.OutOrStdout(), a.ctrl.Status(), a.ctrl.Views())
			return nil
		},
	}
}

func printStatus(w io.Writer, st session.Status, v aggregate.Views) {
	state := okColor.Sprint(st.State)
	switch st.State {
	case session.Error:
		state = errColor.Sprint(st.State)
	case session.Idle, session.Loading:
		state = warnColor.Sprint(st.State)
	}

	mode := "static"
	if st.IsLiveMode {
		mode = "live"
	}
	fmt.Fprintf(w, "state:       %s\n", state)
	fmt.Fprintf(w, "data:        %s (source %s)\n", mode, st.Source)
	if !st.LastRefreshed.IsZero() {
		fmt.Fprintf(w, "refreshed:   %s\n", st.LastRefreshed.Format(time.RFC3339))
	}
	if st.Error != "" {
		fmt.Fprintf(w, "last error:  %s\n", errColor.Sprint(st.Error))
	}

	k := v.KPIs
	fmt.Fprintln(w)
	fmt.Fprintf(w, "leaders:     %s\n", number(k.TotalLeaders))
	fmt.Fprintf(w, "cities:      %s\n", number(k.TotalCities))
	fmt.Fprintf(w, "enrollments: %s (%s completed, %s in progress)\n",
		number(k.TotalEnrollments), number(k.TotalCompleted), number(k.TotalInProgress))
	fmt.Fprintf(w, "completion:  %s%%\n", printer.Sprintf("%.0f", k.CompletionRate))
	fmt.Fprintf(w, "avg score:   %s\n", printer.Sprintf("%.1f", k.AvgScore))

	if len(v.CityStats) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, dimColor.Sprint("top cities"))
		for i, c := range v.CityStats {
			if i == 5 {
				break
			}
			fmt.Fprintf(w, "  %-20s %6s  %3.0f%%\n", c.City, number(c.Total), c.CompletionRate)
		}
	}
}
