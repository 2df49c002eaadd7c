package provider

import (
	"context"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil/errorutil"
)

// Prompter asks the user for values mlpad could not find elsewhere.
type Prompter interface {
	Secret(ctx context.Context, message string) (string, error)
}

type surveyPrompter struct{}

func SurveyPrompter() Prompter {
	return &surveyPrompter{}
}

func (p *surveyPrompter) Secret(ctx context.Context, message string) (string, error) {
	answer := ""
	err := survey.AskOne(
		&survey.Password{Message: message},
		&answer,
		survey.WithValidator(survey.Required),
	)
	return answer, errors.WithStack(err)
}

type nonInteractive struct{}

// NonInteractive fails every prompt. Used when stdout is not a terminal.
func NonInteractive() Prompter {
	return &nonInteractive{}
}

func (p *nonInteractive) Secret(ctx context.Context, message string) (string, error) {
	return "", errorutil.NewUserErrorf("cannot prompt for %q outside an interactive terminal", message)
}
