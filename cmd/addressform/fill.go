package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/vango-dev/addressform/internal/errors"
	"github.com/vango-dev/addressform/pkg/addressform"
)

// errAborted is returned by a PromptDriver when the user interrupts.
var errAborted = stderrors.New("prompt aborted")

// InputConfig configures one text prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// PromptDriver asks for input. It is an interface so fill can run without a
// terminal in tests.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, message string, def bool) (bool, error)
}

type surveyDriver struct{}

func (surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	var opts []survey.AskOpt
	if cfg.Validator != nil {
		validate := cfg.Validator
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyDriver) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if stderrors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

func fillCmd(flags *globalFlags) *cobra.Command {
	var (
		defaults addressform.Values
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill the form interactively",
		Long: `Prompt for each field in order and submit to the configured sink.

Each answer is checked as it is entered; an invalid answer shows its
message and asks again.

Examples:
  addressform fill
  addressform fill --name="Asha Rao" --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			messages, err := loadMessages(cfg)
			if err != nil {
				return err
			}
			sink, err := newSubmitter(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			f := addressform.New(append(formOptions(cfg, messages),
				addressform.WithSubmitter(sink),
				addressform.WithLogger(logger),
			)...)
			return runFill(cmd.Context(), surveyDriver{}, f, defaults, yes, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&defaults.Name, "name", "", "Default name")
	cmd.Flags().StringVar(&defaults.Email, "email", "", "Default email")
	cmd.Flags().StringVar(&defaults.Address.Area, "area", "", "Default area")
	cmd.Flags().StringVar(&defaults.Address.Street, "street", "", "Default street")
	cmd.Flags().StringVar(&defaults.Address.Pincode, "pincode", "", "Default pincode")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Submit without confirmation")

	return cmd
}

// runFill prompts each field in schema order. Every answer is set and
// touched, and the field's message becomes the prompt's validation error.
func runFill(ctx context.Context, driver PromptDriver, f *addressform.Form, defaults addressform.Values, yes bool, out io.Writer) error {
	for _, id := range addressform.Fields() {
		id := id
		answer, err := driver.Input(ctx, InputConfig{
			Message: id.Label() + ":",
			Default: defaults.Get(id),
			Help:    fieldHelp(id),
			Validator: func(s string) error {
				f.Set(id, s)
				f.Touch(id)
				if msg := f.Error(id); msg != "" {
					return stderrors.New(msg)
				}
				return nil
			},
		})
		if err != nil {
			return promptError(err)
		}
		f.Set(id, answer)
		f.Touch(id)
	}

	if !yes {
		ok, err := driver.Confirm(ctx, "Submit?", true)
		if err != nil {
			return promptError(err)
		}
		if !ok {
			f.Reset()
			fmt.Fprintln(out, "  Form reset.")
			return nil
		}
	}

	submitted, err := f.Submit(ctx)
	if err != nil {
		return errors.New(errors.CodeSubmitFailed).Wrap(err)
	}
	if !submitted {
		printErrors(out, f.Errors())
		return errors.New(errors.CodeFormInvalid)
	}
	success(out, "Data submitted.")
	return nil
}

func promptError(err error) error {
	if stderrors.Is(err, errAborted) {
		return errors.New(errors.CodePromptAborted)
	}
	return errors.New(errors.CodePromptAborted).Wrap(err)
}

// fieldHelp describes a field's rules for the prompt's help text.
func fieldHelp(id addressform.FieldID) string {
	minLen, maxLen := id.Bounds()
	switch {
	case minLen > 0 && minLen == maxLen:
		return fmt.Sprintf("Exactly %d characters.", minLen)
	case maxLen > 0 && id.Required():
		return fmt.Sprintf("Required, at most %d characters.", maxLen)
	case maxLen > 0:
		return fmt.Sprintf("Optional, at most %d characters.", maxLen)
	case id == addressform.Email:
		return "Required, an email address."
	case id.Required():
		return "Required."
	}
	return ""
}

// printErrors writes every non-empty message as "path: message".
func printErrors(w io.Writer, m addressform.ErrorMap) {
	for _, id := range addressform.Fields() {
		if msg := m.Get(id); msg != "" {
			failure(w, "%s: %s", id.Path(), msg)
		}
	}
}
