package provider

import "github.com/spf13/viper"

// Keep abc
type Providers interface {
	AnalyticsProvider() Analytics
	CredentialProvider() CredentialProvider
	ErrorLogger() ErrorLogger
	Prompter() Prompter
	Settings() *viper.Viper
}
