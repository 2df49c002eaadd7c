// Copyright 2022 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package mlcli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.jetpack.io/mlpad/mlcli/command"
	"go.jetpack.io/mlpad/mlcli/flags"
	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/provider"
	"go.jetpack.io/mlpad/mlcli/terminal"
	"go.jetpack.io/mlpad/mlpad"
)

type Mlcli struct {
	additionalCommands []*cobra.Command
	analyticsProvider  provider.Analytics
	credentialProvider provider.CredentialProvider
	errorLogger        provider.ErrorLogger
	hooks              *hook.Hooks
	pad                mlpad.MLPad
	persistentPreRunE  func(cmd *cobra.Command, args []string) error
	persistentPostRunE func(cmd *cobra.Command, args []string) error
	prompter           provider.Prompter
	rootCommand        *cobra.Command
	rootFlags          *flags.RootCmdFlags
	settings           *viper.Viper
}
type Option func(*Mlcli)

func New(opts ...Option) *Mlcli {
	m := &Mlcli{
		hooks:             hook.New(),
		rootFlags:         &flags.RootCmdFlags{},
		analyticsProvider: provider.DefaultAnalyticsProvider(),
		errorLogger:       &provider.NoOpLogger{},
		prompter:          provider.NonInteractive(),
		settings:          provider.NewSettings(),
	}
	if terminal.IsInteractive() && !terminal.IsCI() {
		m.prompter = provider.SurveyPrompter()
	}
	for _, opt := range opts {
		opt(m)
	}
	// These depend on options above, so they are filled in last.
	if m.credentialProvider == nil {
		m.credentialProvider = provider.SettingsCredentialProvider(m.settings)
	}
	if m.pad == nil {
		m.pad = mlpad.NewPad(m.errorLogger)
	}
	return m
}

func (m *Mlcli) Run(ctx context.Context) {
	command.Execute(ctx, m)
}

func (m *Mlcli) AnalyticsProvider() provider.Analytics {
	return m.analyticsProvider
}

func (m *Mlcli) CredentialProvider() provider.CredentialProvider {
	return m.credentialProvider
}

func (m *Mlcli) ErrorLogger() provider.ErrorLogger {
	return m.errorLogger
}

func (m *Mlcli) Hooks() *hook.Hooks {
	return m.hooks
}

func (m *Mlcli) Pad() mlpad.MLPad {
	return m.pad
}

func (m *Mlcli) Prompter() provider.Prompter {
	return m.prompter
}

func (m *Mlcli) Settings() *viper.Viper {
	return m.settings
}

func (m *Mlcli) RootFlags() *flags.RootCmdFlags {
	return m.rootFlags
}

func (m *Mlcli) RootCommand() *cobra.Command {
	if m.rootCommand == nil {
		m.rootCommand = command.NewRootCmd(m)
	}
	return m.rootCommand
}

func (m *Mlcli) AdditionalCommands() []*cobra.Command {
	return m.additionalCommands
}

func (m *Mlcli) PersistentPreRunE(cmd *cobra.Command, args []string) error {
	if m == nil || m.persistentPreRunE == nil {
		return nil
	}
	return m.persistentPreRunE(cmd, args)
}

func (m *Mlcli) PersistentPostRunE(cmd *cobra.Command, args []string) error {
	if m == nil || m.persistentPostRunE == nil {
		return nil
	}
	return m.persistentPostRunE(cmd, args)
}

// Options
type cmdFunc func(m *Mlcli) *cobra.Command

func WithAdditionalCommands(cmds ...cmdFunc) Option {
	return func(m *Mlcli) {
		for _, cmd := range cmds {
			m.additionalCommands = append(m.additionalCommands, cmd(m))
		}
	}
}

func WithAnalyticsProvider(analytics provider.Analytics) Option {
	return func(m *Mlcli) {
		m.analyticsProvider = analytics
	}
}

func WithCredentialProvider(p provider.CredentialProvider) Option {
	return func(m *Mlcli) {
		m.credentialProvider = p
	}
}

func WithErrorLogger(logger provider.ErrorLogger) Option {
	return func(m *Mlcli) {
		m.errorLogger = logger
	}
}

func WithHooks(hooks *hook.Hooks) Option {
	return func(m *Mlcli) {
		m.hooks = hooks
	}
}

// WithPad replaces the pad the commands run against.
func WithPad(pad mlpad.MLPad) Option {
	return func(m *Mlcli) {
		m.pad = pad
	}
}

func WithPersistentPreRunE(r func(cmd *cobra.Command, args []string) error) Option {
	return func(m *Mlcli) {
		m.persistentPreRunE = r
	}
}

func WithPersistentPostRunE(r func(cmd *cobra.Command, args []string) error) Option {
	return func(m *Mlcli) {
		m.persistentPostRunE = r
	}
}

func WithPrompter(p provider.Prompter) Option {
	return func(m *Mlcli) {
		m.prompter = p
	}
}

func WithSettings(settings *viper.Viper) Option {
	return func(m *Mlcli) {
		m.settings = settings
	}
}
