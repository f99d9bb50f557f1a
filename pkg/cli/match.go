package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/contractd/internal/matching"
	"github.com/getmockd/contractd/pkg/cli/internal/output"
	"github.com/getmockd/contractd/pkg/cli/internal/parse"
	"github.com/getmockd/contractd/pkg/contract"
	"github.com/getmockd/contractd/pkg/stub"
	"github.com/getmockd/contractd/pkg/value"
)

var (
	matchStubs      string
	matchMethod     string
	matchPath       string
	matchHeaders    []string
	matchQuery      []string
	matchBody       string
	matchTarget     string
	matchKey        string
	matchValue      string
	matchNearMisses int
)

type matchReport struct {
	Matched    bool                `json:"matched"`
	Stub       *stub.File          `json:"stub,omitempty"`
	NearMisses []matching.NearMiss `json:"nearMisses,omitempty"`
}

var matchCmd = &cobra.Command{
	Use:   "match <contract>",
	Short: "Find the stub answering a request or message",
	Long: `Find the stub answering a request or message.

Stubs are generated from the contract; explicit stubs from --stubs are
added on top and win for the exact request they were written for.

Describe an HTTP request with --method and --path (plus -H, -q and
--body), or a message with --target (plus --key and --value).

When nothing matches, the closest stubs are listed with the reason they
missed.

Examples:
  contractd match orders.yaml --method GET --path /orders/42
  contractd match orders.yaml --method POST --path /orders -H 'Content-Type: application/json' --body '{"qty": 2}'
  contractd match orders.yaml --target order-created --key o-1 --value '{"id": "o-1"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		isMessage := matchTarget != ""
		if isMessage == (matchPath != "") {
			return errors.New("describe either a request (--path) or a message (--target)")
		}

		c, err := contract.Open(cmd.Context(), args[0], logger)
		if err != nil {
			return err
		}
		engine := stub.NewEngine(stub.WithLogger(logger), stub.WithNearMisses(matchNearMisses))
		if _, err := engine.Load(c); err != nil {
			return err
		}
		if matchStubs != "" {
			stubs, err := stub.LoadFile(matchStubs)
			if err != nil {
				return err
			}
			for _, s := range stubs {
				if s.Contract == "" {
					s.Contract = c.Name
				}
				if err := engine.Add(s); err != nil {
					return err
				}
			}
		}

		var m *stub.Match
		if isMessage {
			msg, err := messageFromFlags()
			if err != nil {
				return err
			}
			m = engine.MatchMessage(msg)
		} else {
			req, err := requestFromFlags()
			if err != nil {
				return err
			}
			m = engine.MatchHTTP(req)
		}
		return printMatch(cmd.OutOrStdout(), m)
	},
}

func requestFromFlags() (*contract.RequestValue, error) {
	headers, err := parse.Headers(matchHeaders)
	if err != nil {
		return nil, err
	}
	query, err := parse.Query(matchQuery)
	if err != nil {
		return nil, err
	}
	body, err := value.Parse(matchBody)
	if err != nil {
		return nil, fmt.Errorf("invalid body: %w", err)
	}
	return &contract.RequestValue{
		Method:  strings.ToUpper(matchMethod),
		Path:    matchPath,
		Headers: headers,
		Query:   query,
		Body:    body,
	}, nil
}

func messageFromFlags() (value.Message, error) {
	msg := value.Message{Target: matchTarget}
	if matchKey != "" {
		key, err := value.Parse(matchKey)
		if err != nil {
			return msg, fmt.Errorf("invalid key: %w", err)
		}
		msg.Key = key
	}
	v, err := value.Parse(matchValue)
	if err != nil {
		return msg, fmt.Errorf("invalid value: %w", err)
	}
	msg.Value = v
	return msg, nil
}

func printMatch(w io.Writer, m *stub.Match) error {
	report := &matchReport{Matched: m.Found(), NearMisses: m.NearMisses}
	if m.Found() {
		report.Stub = m.Stub.File()
	}

	err := printResult(w, report, func() {
		if m.Found() {
			fmt.Fprintf(w, "Matched stub %s (scenario %q)\n\n", m.Stub.ID, m.Stub.Scenario)
			if err := stub.Encode(w, []*stub.Stub{m.Stub}); err != nil {
				output.Warn(w, "failed to print stub: %v", err)
			}
			return
		}
		if len(m.NearMisses) == 0 {
			fmt.Fprintln(w, "No stub matched and none came close.")
			return
		}
		fmt.Fprintln(w, "No stub matched. Closest stubs:")
		tw := output.Table(w)
		fmt.Fprintln(tw, "  SCENARIO\tSTUB\tMATCH\tREASON")
		for _, nm := range m.NearMisses {
			fmt.Fprintf(tw, "  %s\t%s\t%d%%\t%s\n", nm.Scenario, nm.StubID, nm.MatchPercentage, nm.Reason)
		}
		_ = tw.Flush()
	})
	if err != nil {
		return err
	}
	if !m.Found() {
		return ErrNoMatch
	}
	return nil
}

func init() {
	matchCmd.Flags().StringVar(&matchStubs, "stubs", "", "YAML file of explicit stubs to add")
	matchCmd.Flags().StringVarP(&matchMethod, "method", "X", "GET", "HTTP method")
	matchCmd.Flags().StringVar(&matchPath, "path", "", "HTTP request path")
	matchCmd.Flags().StringArrayVarP(&matchHeaders, "header", "H", nil, "Request header as name:value (repeatable)")
	matchCmd.Flags().StringArrayVarP(&matchQuery, "query", "q", nil, "Query parameter as name=value (repeatable)")
	matchCmd.Flags().StringVar(&matchBody, "body", "", "Request body")
	matchCmd.Flags().StringVar(&matchTarget, "target", "", "Message target (topic)")
	matchCmd.Flags().StringVar(&matchKey, "key", "", "Message key")
	matchCmd.Flags().StringVar(&matchValue, "value", "", "Message value")
	matchCmd.Flags().IntVar(&matchNearMisses, "near-misses", matching.DefaultTopN, "Number of near misses to report")
	rootCmd.AddCommand(matchCmd)
}
