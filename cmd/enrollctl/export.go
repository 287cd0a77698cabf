package main

import (
	"fmt"

	"enrollment-insights/internal/export"
	"enrollment-insights/internal/sftpclient"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		outDir     string
		format     string
		uploadSFTP bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write view CSVs and a views dump, optionally publishing them over SFTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			a.start(cmd)

			paths, err := export.WriteDir(outDir, a.ctrl.Views(), f)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}

			if !uploadSFTP {
				return nil
			}
			if err := sftpclient.UploadFiles(cmd.Context(), sftpclient.FromConfig(a.cfg), paths); err != nil {
				return err
			}
			a.logger.Info("export published", zap.String("host", a.cfg.SFTPHost), zap.String("dir", a.cfg.SFTPDir), zap.Int("files", len(paths)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "export", "output directory")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "views dump format: json or yaml")
	cmd.Flags().BoolVar(&uploadSFTP, "sftp", false, "upload the generated files via SFTP")
	return cmd
}
