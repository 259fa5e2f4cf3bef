// Command analyze scores a single patient transcript and prints the urgency
// result as JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"medtriage/internal/config"
	"medtriage/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errNoTranscript = errors.New("No transcript provided")

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command and returns the process exit code.
// stdout receives exactly one JSON document; logs go to stderr.
func execute(args []string, stdout, stderr io.Writer) (code int) {
	log.SetOutput(stderr)

	defer func() {
		if r := recover(); r != nil {
			writeJSON(stdout, map[string]string{"error": fmt.Sprint(r)})
			code = 1
		}
	}()

	cmd := newRootCmd(viper.New(), stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		writeJSON(stdout, map[string]string{"error": err.Error()})
		return 1
	}
	return 0
}

func newRootCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [transcript]",
		Short: "Score the medical urgency of a patient transcript",
		Long: `analyze classifies a free-text description of symptoms into an urgency
score (0-10), rank, severity and recommendation. Without a reachable
zero-shot classifier it falls back to keyword scoring.

Only leading --provider and --timeout flags are read. Anything after
them, or after "--", is the transcript, even when it starts with "-".`,
		// Transcripts such as "-5 degrees and I can't breathe" must not be
		// read as flags, so flags are parsed by leadingFlags instead.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rest, err := leadingFlags(cmd, args)
			if err != nil {
				return err
			}
			switch len(rest) {
			case 0:
				return errNoTranscript
			case 1:
				return runAnalyze(cmd.Context(), v, rest[0], stdout)
			default:
				return fmt.Errorf("expected one transcript argument, got %d (quote the transcript)", len(rest))
			}
		},
	}

	cmd.Flags().String("provider", "", "classifier provider: huggingface, openai or none (or set CLASSIFIER_PROVIDER)")
	cmd.Flags().Int("timeout", 0, "classifier timeout in seconds (or set CLASSIFIER_TIMEOUT)")

	_ = v.BindPFlag("provider", cmd.Flags().Lookup("provider"))
	_ = v.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
	_ = v.BindEnv("provider", "CLASSIFIER_PROVIDER")
	_ = v.BindEnv("timeout", "CLASSIFIER_TIMEOUT")

	return cmd
}

// leadingFlags consumes --provider and --timeout (as "--name value" or
// "--name=value") from the front of args and returns what follows.
// A "--" ends the flags and is dropped.
func leadingFlags(cmd *cobra.Command, args []string) ([]string, error) {
	for len(args) > 0 {
		arg := args[0]
		if arg == "--" {
			return args[1:], nil
		}

		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if !strings.HasPrefix(arg, "--") || (name != "provider" && name != "timeout") {
			return args, nil
		}

		consumed := 1
		if !hasValue {
			if len(args) < 2 {
				return nil, fmt.Errorf("flag --%s needs a value", name)
			}
			value = args[1]
			consumed = 2
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return nil, fmt.Errorf("invalid value %q for --%s: %w", value, name, err)
		}
		args = args[consumed:]
	}
	return args, nil
}

func runAnalyze(ctx context.Context, v *viper.Viper, transcript string, stdout io.Writer) error {
	cfg, err := config.Load(func(cfg *config.Config) {
		if provider := v.GetString("provider"); provider != "" {
			cfg.Classifier.Provider = strings.ToLower(provider)
		}
		if timeout := v.GetInt("timeout"); timeout > 0 {
			cfg.Classifier.Timeout = timeout
		}
	})
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Classifier.Timeout)*time.Second+5*time.Second)
	defer cancel()

	analyzer := service.NewUrgencyAnalyzerWithFactory(func() (service.ZeroShotClassifier, error) {
		return service.NewZeroShotClassifier(cfg)
	})

	return writeJSON(stdout, analyzer.Analyze(ctx, transcript))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
