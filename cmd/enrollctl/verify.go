package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"enrollment-insights/internal/airtable"
	"enrollment-insights/internal/devutil"

	"github.com/spf13/cobra"
)

// newVerifyCmd checks the base directly: each table is paged through and its
// record count, column names and one sample record are printed.
func newVerifyCmd(a *app) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Fetch every table directly from Airtable and print counts and a sample record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.HasAirtableCredentials() {
				return errors.New("verify: AIRTABLE_PAT and AIRTABLE_BASE_ID must be set")
			}
			c := airtable.FromConfig(a.cfg, a.logger)

			out := cmd.OutOrStdout()
			var failed []error
			for _, table := range []string{a.cfg.LeadersTable, a.cfg.CitiesTable, a.cfg.EnrollmentsTable} {
				recs, err := c.FetchAll(cmd.Context(), table)
				if err != nil {
					fmt.Fprintf(out, "%s %s: %v\n", errColor.Sprint("FAIL"), table, err)
					failed = append(failed, err)
					continue
				}

				fmt.Fprintf(out, "%s %s: %s records\n", okColor.Sprint("OK"), table, number(len(recs)))
				fmt.Fprintf(out, "  fields: %s\n", strings.Join(devutil.FieldNames(recs), ", "))
				if len(recs) == 0 {
					continue
				}
				sample, _ := json.MarshalIndent(devutil.Pick(recs[0].Fields, fields...), "  ", "  ")
				fmt.Fprintf(out, "  sample %s: %s\n", recs[0].ID, sample)
			}
			return errors.Join(failed...)
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "only show these fields of the sample record")
	return cmd
}
