package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/addressform/internal/errors"
	"github.com/vango-dev/addressform/pkg/addressform"
	"github.com/vango-dev/addressform/pkg/submit"
)

func checkCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check <values.json|values.yaml>",
		Short: "Validate a values file",
		Long: `Validate a values file as if it were submitted.

Every field is treated as touched, so every failing rule is reported.
Nothing is delivered to the configured sink. The exit status is non-zero
when the values are invalid.

Examples:
  addressform check testdata/valid.yaml
  addressform check values.json --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			messages, err := loadMessages(cfg)
			if err != nil {
				return err
			}
			values, err := readValues(args[0])
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			return runCheck(cmd, values, formOptions(cfg, messages), logger, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the error map as JSON")

	return cmd
}

// checkResult is the --json output of check.
type checkResult struct {
	Valid  bool               `json:"valid"`
	Errors map[string]string  `json:"errors"`
	Values addressform.Values `json:"values"`
}

func runCheck(cmd *cobra.Command, values addressform.Values, opts []addressform.Option, logger *slog.Logger, asJSON bool) error {
	sink := submit.NewMemory()
	f := addressform.New(append(opts,
		addressform.WithSubmitter(sink),
		addressform.WithLogger(logger),
	)...)
	f.SetAll(values)

	ok, err := f.Submit(cmd.Context())
	if err != nil {
		return errors.New(errors.CodeSubmitFailed).Wrap(err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(checkResult{Valid: ok, Errors: f.Errors().Map(), Values: f.Values()}); err != nil {
			return err
		}
	} else if ok {
		success(out, "Valid")
		for _, rec := range sink.Records() {
			printValues(out, rec.Values)
		}
	} else {
		printErrors(out, f.Errors())
	}

	if !ok {
		return errors.New(errors.CodeFormInvalid)
	}
	return nil
}

// printValues writes the value tree, one field per line.
func printValues(w io.Writer, v addressform.Values) {
	for _, id := range addressform.Fields() {
		fmt.Fprintf(w, "  %-16s %s\n", id.Path(), v.Get(id))
	}
}
