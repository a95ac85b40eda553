package cli

import (
	"context"
	"errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"
)

// ErrAborted reports that the user cancelled an interactive prompt.
var ErrAborted = errors.New("cli: prompt aborted")

// Prompter asks the user to choose one of options.
type Prompter interface {
	Select(ctx context.Context, message string, options []string) (string, error)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(ctx context.Context, message string, options []string) (string, error)

func (fn PromptFunc) Select(ctx context.Context, message string, options []string) (string, error) {
	return fn(ctx, message, options)
}

type surveyPrompter struct {
	opts []survey.AskOpt
}

// NewSurveyPrompter prompts on the process terminal.
func NewSurveyPrompter(opts ...survey.AskOpt) Prompter {
	return surveyPrompter{opts: opts}
}

func (p surveyPrompter) Select(ctx context.Context, message string, options []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(options) == 0 {
		return "", errors.New("cli: nothing to select")
	}
	var answer string
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &answer, p.opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return answer, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
