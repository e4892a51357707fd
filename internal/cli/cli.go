// Package cli implements the tradebotctl commands. Each command makes one call to the trading bot API
// and prints the payload, or the normalized error message when the call fails.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Netflix/go-env"
	"github.com/spf13/cobra"

	"github.com/tradebot/dashboard/internal/logger"
	"github.com/tradebot/dashboard/internal/ui/client"
	"github.com/tradebot/dashboard/internal/version"
)

// environment provides the defaults for the persistent flags
type environment struct {
	APIURL   string        `env:"TRADEBOT_API_URL,default=http://localhost:8000"`
	APIRoot  string        `env:"TRADEBOT_API_ROOT,default=/api"`
	Timeout  time.Duration `env:"TRADEBOT_API_TIMEOUT,default=10s"`
	Output   string        `env:"TRADEBOT_OUTPUT,default=json"`
	Language string        `env:"TRADEBOT_LANG,default=en"`
	LogLevel string        `env:"TRADEBOT_LOG_LEVEL,default=warn"`
}

// options are the resolved persistent flags
type options struct {
	apiURL   string
	apiRoot  string
	timeout  time.Duration
	output   string
	language string
	logLevel string
}

// app is created by the root command's PersistentPreRunE and used by the subcommands
type app struct {
	opts       options
	client     *client.Client
	normalizer *client.Normalizer
	stdout     io.Writer
	stderr     io.Writer
}

// reportedError marks an error whose message has already been written to stderr
type reportedError struct {
	error
}

// NewRootCommand builds the tradebotctl command tree
func NewRootCommand() (*cobra.Command, error) {
	var defaults environment
	if _, err := env.UnmarshalFromEnviron(&defaults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	a := &app{}

	root := &cobra.Command{
		Use:           "tradebotctl",
		Short:         "Command line client for the trading bot API",
		Long:          `Query and control a running trading bot: status, statistics, prediction jobs, trades, predictions, configuration and model training.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.apiURL, "api-url", defaults.APIURL, "trading bot API base url (env TRADEBOT_API_URL)")
	flags.StringVar(&a.opts.apiRoot, "api-root", defaults.APIRoot, "path prefix of the API endpoints (env TRADEBOT_API_ROOT)")
	flags.DurationVar(&a.opts.timeout, "timeout", defaults.Timeout, "request timeout (env TRADEBOT_API_TIMEOUT)")
	flags.StringVarP(&a.opts.output, "output", "o", defaults.Output, "output format: json or yaml (env TRADEBOT_OUTPUT)")
	flags.StringVar(&a.opts.language, "lang", defaults.Language, "language of error messages: en or de (env TRADEBOT_LANG)")
	flags.StringVar(&a.opts.logLevel, "log-level", defaults.LogLevel, "log level for request logging: debug, info, warn or error (env TRADEBOT_LOG_LEVEL)")

	root.AddCommand(
		a.statusCommand(),
		a.statsCommand(),
		a.jobsCommand(),
		a.tradesCommand(),
		a.tradeCommand(),
		a.predictCommand(),
		a.configCommand(),
		a.trainCommand(),
	)

	return root, nil
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root, err := NewRootCommand()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (a *app) init(cmd *cobra.Command) error {
	a.stdout = cmd.OutOrStdout()
	a.stderr = cmd.ErrOrStderr()

	if a.opts.output != "json" && a.opts.output != "yaml" {
		return fmt.Errorf("invalid output format %q (expects json or yaml)", a.opts.output)
	}

	normalizer, err := client.NewNormalizerForCode(a.opts.language)
	if err != nil {
		return err
	}
	a.normalizer = normalizer

	log := logger.New(a.stderr, logger.ParseLogLevel(a.opts.logLevel), "dev")

	c, err := client.NewClient(client.Config{
		BaseURL: a.opts.apiURL,
		APIRoot: a.opts.apiRoot,
		Timeout: a.opts.timeout,
	},
		client.RequestID(),
		client.WithHeader("User-Agent", "tradebotctl/"+version.Get().Version),
		client.Logging(log),
	)
	if err != nil {
		return err
	}
	a.client = c
	return nil
}

// call runs one API operation and prints the result.
// Failures are written to stderr as the normalized message.
func (a *app) call(payload []byte, err error) error {
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %s\n", a.normalizer.Format(err))
		return reportedError{err}
	}
	return writePayload(a.stdout, a.opts.output, payload)
}
