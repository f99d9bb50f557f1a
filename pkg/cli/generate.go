package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/contractd/pkg/cli/internal/output"
	"github.com/getmockd/contractd/pkg/cli/internal/parse"
	"github.com/getmockd/contractd/pkg/contract"
	"github.com/getmockd/contractd/pkg/message"
	"github.com/getmockd/contractd/pkg/stub"
)

var (
	generateOutput       string
	generateScenario     string
	generateKafkaBrokers string
	generateMQTTBroker   string
	generateMQTTQoS      int
	generateTimeout      time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate <contract>",
	Short: "Generate stubs from a contract's scenarios and examples",
	Long: `Generate stubs from a contract's scenarios and examples.

Every example row of a scenario (or a single empty row) yields one stub per
pattern variant, filled with generated values. Stub IDs are stable, so
regenerating an unchanged contract reproduces the same stubs.

Message stubs can be published to a broker: --kafka-brokers sends them to
Kafka topics, --mqtt-broker to MQTT topics named by the message target.

Examples:
  contractd generate orders.yaml -o stubs.yaml
  contractd generate orders.yaml --scenario "get order"
  contractd generate orders.yaml --kafka-brokers localhost:9092
  contractd generate orders.yaml --mqtt-broker tcp://localhost:1883`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := contract.Open(cmd.Context(), args[0], logger)
		if err != nil {
			return err
		}
		stubs, err := stub.Generate(c)
		if err != nil {
			return err
		}
		if generateScenario != "" {
			if _, ok := c.Scenario(generateScenario); !ok {
				return fmt.Errorf("no scenario named %q in contract %s", generateScenario, c.Name)
			}
			stubs = filterScenario(stubs, generateScenario)
		}
		logger.Info("generated stubs", "contract", c.Name, "stubs", len(stubs))

		if err := writeStubs(cmd.OutOrStdout(), stubs); err != nil {
			return err
		}
		return publishStubs(cmd.Context(), cmd.ErrOrStderr(), stubs)
	},
}

func filterScenario(stubs []*stub.Stub, scenario string) []*stub.Stub {
	var out []*stub.Stub
	for _, s := range stubs {
		if s.Scenario == scenario {
			out = append(out, s)
		}
	}
	return out
}

// writeStubs writes YAML (or JSON with --json) to --output or w.
func writeStubs(w io.Writer, stubs []*stub.Stub) (err error) {
	if generateOutput != "" && generateOutput != "-" {
		f, cerr := os.Create(generateOutput)
		if cerr != nil {
			return fmt.Errorf("failed to create %s: %w", generateOutput, cerr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if jsonOutput {
		files := make([]*stub.File, len(stubs))
		for i, s := range stubs {
			files[i] = s.File()
		}
		return output.JSON(w, files)
	}
	return stub.Encode(w, stubs)
}

// publishStubs sends message stubs to the configured brokers.
func publishStubs(ctx context.Context, stderr io.Writer, stubs []*stub.Stub) error {
	var publishers []message.Publisher
	var closers []func() error

	if brokers := parse.SplitTrim(generateKafkaBrokers, ","); len(brokers) > 0 {
		p, err := message.DialKafka(brokers, "contractd", logger)
		if err != nil {
			return err
		}
		publishers, closers = append(publishers, p), append(closers, p.Close)
	}
	if generateMQTTBroker != "" {
		p, err := message.DialMQTT(generateMQTTBroker, "contractd", byte(generateMQTTQoS), generateTimeout, logger)
		if err != nil {
			return err
		}
		publishers, closers = append(publishers, p), append(closers, p.Close)
	}
	defer func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				output.Warn(stderr, "failed to close publisher: %v", err)
			}
		}
	}()
	if len(publishers) == 0 {
		return nil
	}

	var errs []error
	published := 0
	for _, s := range stubs {
		if !s.IsMessage() {
			continue
		}
		for _, p := range publishers {
			pctx, cancel := context.WithTimeout(ctx, generateTimeout)
			err := p.Publish(pctx, *s.Message)
			cancel()
			if err != nil {
				errs = append(errs, fmt.Errorf("stub %s: %w", s.ID, err))
				continue
			}
			published++
		}
	}
	logger.Info("published message stubs", "published", published, "failed", len(errs))
	return errors.Join(errs...)
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write stubs to this file instead of stdout")
	generateCmd.Flags().StringVar(&generateScenario, "scenario", "", "Only generate stubs for this scenario")
	generateCmd.Flags().StringVar(&generateKafkaBrokers, "kafka-brokers", "", "Comma-separated Kafka brokers to publish message stubs to")
	generateCmd.Flags().StringVar(&generateMQTTBroker, "mqtt-broker", "", "MQTT broker URL to publish message stubs to")
	generateCmd.Flags().IntVar(&generateMQTTQoS, "mqtt-qos", 0, "MQTT QoS level (0, 1 or 2)")
	generateCmd.Flags().DurationVar(&generateTimeout, "publish-timeout", 5*time.Second, "Timeout for connecting and for each publish")
	rootCmd.AddCommand(generateCmd)
}
