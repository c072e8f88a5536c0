package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/addressform/internal/config"
	"github.com/vango-dev/addressform/internal/errors"
	"github.com/vango-dev/addressform/pkg/addressform"
	"github.com/vango-dev/addressform/pkg/server"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	config   string
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "addressform",
		Short: "Capture and validate postal addresses",
		Long: `addressform serves and fills a nested address form.

A form has a name, an email and an address group of area, street and
pincode. Messages appear once a field is touched or edited, and only a
valid form is submitted to the configured sink.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Path to addressform.json or its directory (default: ./addressform.json when present)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")

	rootCmd.AddCommand(
		serveCmd(flags),
		fillCmd(flags),
		checkCmd(flags),
		schemaCmd(),
		initCmd(),
		versionCmd(),
	)

	server.Version = version
	return rootCmd
}

// loadConfig resolves --config and --log-level into a validated Config.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case flags.config == "":
		cfg, err = config.LoadOptional(".")
	case isDir(flags.config):
		cfg, err = config.Load(flags.config)
	default:
		cfg, err = config.LoadFile(flags.config)
	}
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// newLogger builds the process logger. Logs go to stderr so command output
// stays clean.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
}

// loadMessages reads the configured message overrides, if any.
func loadMessages(cfg *config.Config) (*addressform.Messages, error) {
	path := cfg.MessagesPath()
	if path == "" {
		return addressform.DefaultMessages(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.CodeMessagesFile).
			WithDetail("Cannot open " + path).
			Wrap(err)
	}
	defer f.Close()

	messages, err := addressform.LoadMessages(f)
	if err != nil {
		return nil, yamlError(errors.New(errors.CodeMessagesFile), path, err)
	}
	return messages, nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// failure prints a failure line.
func failure(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
