package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/contractd/pkg/contract"
	"github.com/getmockd/contractd/pkg/stub"
)

var validateStubs string

type validateResult struct {
	Path      string       `json:"path"`
	Name      string       `json:"name"`
	Version   string       `json:"version,omitempty"`
	Scenarios int          `json:"scenarios"`
	Stubs     []stubResult `json:"stubs,omitempty"`
}

type stubResult struct {
	ID       string `json:"id,omitempty"`
	Scenario string `json:"scenario"`
	Valid    bool   `json:"valid"`
	Path     string `json:"path,omitempty"`
	Message  string `json:"message,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate <contract>...",
	Short: "Validate contracts and, optionally, stubs against them",
	Long: `Validate contracts and, optionally, stubs against them.

Each argument is a contract file or a glob (** matches directories).
Every named type must resolve and every scenario must compile.

With --stubs, every stub in the file is checked against its scenario in
the contract it names (or the only contract given).

Examples:
  contractd validate orders.yaml
  contractd validate 'contracts/**/*.yaml'
  contractd validate orders.yaml --stubs stubs.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var compiled []*contract.Compiled
		var results []*validateResult
		for _, arg := range args {
			all, err := contract.OpenAll(cmd.Context(), arg, logger)
			if err != nil {
				return err
			}
			for _, path := range sortedKeys(all) {
				c := all[path]
				compiled = append(compiled, c)
				results = append(results, &validateResult{Path: path, Name: c.Name, Version: c.Version, Scenarios: len(c.Scenarios)})
			}
		}

		invalid := 0
		if validateStubs != "" {
			stubs, err := stub.LoadFile(validateStubs)
			if err != nil {
				return err
			}
			for _, s := range stubs {
				i, err := contractFor(compiled, s.Contract)
				if err != nil {
					return fmt.Errorf("stub for %q: %w", s.Scenario, err)
				}
				res := stub.Validate(compiled[i], s)
				sr := stubResult{ID: s.ID, Scenario: s.Scenario, Valid: res.IsSuccess()}
				if res.IsFailure() {
					invalid++
					sr.Path, sr.Message = res.PathString(), res.Message()
				}
				results[i].Stubs = append(results[i].Stubs, sr)
			}
		}

		out := cmd.OutOrStdout()
		err := printResult(out, results, func() {
			for _, r := range results {
				fmt.Fprintf(out, "%s: ok (%s %s, %d scenarios)\n", r.Path, r.Name, r.Version, r.Scenarios)
				for _, s := range r.Stubs {
					if s.Valid {
						fmt.Fprintf(out, "  stub %q: ok\n", s.Scenario)
						continue
					}
					fmt.Fprintf(out, "  stub %q: >> %s\n    %s\n", s.Scenario, s.Path, s.Message)
				}
			}
		})
		if err != nil {
			return err
		}
		if invalid > 0 {
			return fmt.Errorf("%w: %d invalid", ErrInvalidStubs, invalid)
		}
		return nil
	},
}

// contractFor picks the contract a stub names, or the only contract.
func contractFor(compiled []*contract.Compiled, name string) (int, error) {
	if name == "" {
		if len(compiled) == 1 {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: stub names no contract and %d are loaded", stub.ErrUnknownContract, len(compiled))
	}
	for i, c := range compiled {
		if c.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", stub.ErrUnknownContract, name)
}

func init() {
	validateCmd.Flags().StringVar(&validateStubs, "stubs", "", "YAML file of stubs to validate")
	rootCmd.AddCommand(validateCmd)
}
