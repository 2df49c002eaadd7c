package mock

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.jetpack.io/mlpad/mlcli/flags"
	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/provider"
	"go.jetpack.io/mlpad/mlpad"
	"go.jetpack.io/mlpad/pkg/aztesting"
)

// MockCmdOptions satisfies the command options with in-memory providers.
// Unset fields fall back to defaults that never reach Azure.
type MockCmdOptions struct {
	RootCMDFlags *flags.RootCmdFlags
	MockSettings *viper.Viper
	MockPad      mlpad.MLPad
	MockHooks    *hook.Hooks
	Analytics    *MockAnalytics
	// Optional. Default to a fake static credential and a prompter that
	// always fails.
	MockCredentials provider.CredentialProvider
	MockPrompter    provider.Prompter
}

// MockPrompter answers every prompt with Answer and records the messages.
type MockPrompter struct {
	Answer   string
	Messages []string
}

func (p *MockPrompter) Secret(ctx context.Context, message string) (string, error) {
	p.Messages = append(p.Messages, message)
	return p.Answer, nil
}

type MockAnalytics struct {
	Events []string
}

func (*MockCmdOptions) AdditionalCommands() []*cobra.Command {
	return nil
}

func (m *MockCmdOptions) AnalyticsProvider() provider.Analytics {
	if m.Analytics == nil {
		m.Analytics = &MockAnalytics{}
	}
	return m.Analytics
}

func (m *MockCmdOptions) CredentialProvider() provider.CredentialProvider {
	if m.MockCredentials != nil {
		return m.MockCredentials
	}
	return provider.StaticCredentialProvider(aztesting.FakeCredential{})
}

func (*MockCmdOptions) ErrorLogger() provider.ErrorLogger {
	return &provider.NoOpLogger{}
}

func (m *MockCmdOptions) Hooks() *hook.Hooks {
	if m.MockHooks == nil {
		m.MockHooks = hook.New()
	}
	return m.MockHooks
}

func (m *MockCmdOptions) Pad() mlpad.MLPad {
	if m.MockPad == nil {
		m.MockPad = &MockPad{}
	}
	return m.MockPad
}

func (m *MockCmdOptions) Prompter() provider.Prompter {
	if m.MockPrompter != nil {
		return m.MockPrompter
	}
	return provider.NonInteractive()
}

func (m *MockCmdOptions) Settings() *viper.Viper {
	if m.MockSettings == nil {
		m.MockSettings = viper.New()
	}
	return m.MockSettings
}

func (m *MockCmdOptions) RootFlags() *flags.RootCmdFlags {
	return m.RootCMDFlags
}

func (m *MockCmdOptions) RootCommand() *cobra.Command {
	return &cobra.Command{}
}

func (*MockCmdOptions) PersistentPreRunE(cmd *cobra.Command, args []string) error {
	return nil
}

func (*MockCmdOptions) PersistentPostRunE(cmd *cobra.Command, args []string) error {
	return nil
}

func (a *MockAnalytics) Track(ctx context.Context, event string, options map[string]any) {
	a.Events = append(a.Events, event)
}

func (*MockAnalytics) Close() error {
	return nil
}
