package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/contractd/pkg/compat"
	"github.com/getmockd/contractd/pkg/contract"
)

type compatFailure struct {
	Scenario string `json:"scenario"`
	Path     string `json:"path,omitempty"`
	Message  string `json:"message"`
}

type compatReport struct {
	Old        string          `json:"old"`
	New        string          `json:"new"`
	Scenarios  int             `json:"scenarios"`
	Compatible bool            `json:"compatible"`
	Breaking   bool            `json:"breaking"`
	Failures   []compatFailure `json:"failures,omitempty"`
}

var compatCmd = &cobra.Command{
	Use:   "compat <old-contract> <new-contract>",
	Short: "Check that a new contract is backward compatible with an old one",
	Long: `Check that a new contract is backward compatible with an old one.

Every scenario of the old contract must still exist. The new request must
accept every request an old client sends, and the old response must accept
every response the new server returns.

Incompatible changes fail the check unless the new version is a major
version bump of the old one.

Examples:
  contractd compat v1/orders.yaml v2/orders.yaml
  contractd compat old.yaml new.yaml --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		older, err := contract.Open(cmd.Context(), args[0], logger)
		if err != nil {
			return fmt.Errorf("old contract: %w", err)
		}
		newer, err := contract.Open(cmd.Context(), args[1], logger)
		if err != nil {
			return fmt.Errorf("new contract: %w", err)
		}

		results := compat.NewChecker(logger).Check(older, newer)
		report := compatReport{
			Old:        versionOf(older),
			New:        versionOf(newer),
			Scenarios:  len(results.Entries()),
			Compatible: results.Success(),
			Breaking:   compat.Breaking(older, newer, results),
		}
		for _, f := range results.Failures() {
			report.Failures = append(report.Failures, compatFailure{
				Scenario: f.Name,
				Path:     f.Result.PathString(),
				Message:  f.Result.Message(),
			})
		}

		out := cmd.OutOrStdout()
		err = printResult(out, report, func() {
			switch {
			case report.Compatible:
				fmt.Fprintf(out, "%s is backward compatible with %s (%d scenarios)\n", report.New, report.Old, report.Scenarios)
			case !report.Breaking:
				fmt.Fprint(out, results.Report())
				fmt.Fprintf(out, "\nIncompatible changes are allowed by the major version bump %s -> %s\n", report.Old, report.New)
			default:
				fmt.Fprint(out, results.Report())
			}
		})
		if err != nil {
			return err
		}
		if report.Breaking {
			return fmt.Errorf("%w: %d of %d scenarios", ErrBreakingChanges, len(report.Failures), report.Scenarios)
		}
		return nil
	},
}

func versionOf(c *contract.Compiled) string {
	if c.Version == "" {
		return c.Name
	}
	return c.Name + " " + c.Version
}

func init() {
	rootCmd.AddCommand(compatCmd)
}
