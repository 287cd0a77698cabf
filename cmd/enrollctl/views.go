package main

import (
	"enrollment-insights/internal/export"

	"github.com/spf13/cobra"
)

func newViewsCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "views",
		Short: "Print every derived view as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			a.start(cmd)
			return export.WriteViews(cmd.OutOrStdout(), a.ctrl.Views(), f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}
