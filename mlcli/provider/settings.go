package provider

import (
	"github.com/spf13/viper"

	"go.jetpack.io/mlpad/pkg/azml"
)

// Setting keys. Each is read from the environment variables listed in
// settingEnv (first one set wins) unless a flag bound to it was passed.
const (
	SettingSubscriptionID     = "subscription_id"
	SettingResourceGroup      = "resource_group"
	SettingWorkspace          = "workspace"
	SettingEnvironment        = "environment"
	SettingClientID           = "client_id"
	SettingClientSecret       = "client_secret"
	SettingTenantID           = "tenant_id"
	SettingLogAnalyticsRG     = "law_rg"
	SettingLogAnalyticsName   = "law_name"
	SettingBicepMainPath      = "bicep_main_path"
	SettingBicepParameterPath = "bicep_parameter_path"
	SettingSentryDSN          = "sentry_dsn"
	SettingLogFile            = "log_file"
)

var settingEnv = map[string][]string{
	SettingSubscriptionID:     {"SUBSCRIPTION_ID", "ARM_SUBSCRIPTION_ID", "AZURE_SUBSCRIPTION_ID"},
	SettingResourceGroup:      {"RESOURCE_GROUP"},
	SettingWorkspace:          {"WORKSPACE_NAME"},
	SettingEnvironment:        {"ENVIRONMENT"},
	SettingClientID:           {"ARM_CLIENT_ID", "AZURE_CLIENT_ID"},
	SettingClientSecret:       {"ARM_CLIENT_SECRET", "AZURE_CLIENT_SECRET"},
	SettingTenantID:           {"ARM_TENANT_ID", "AZURE_TENANT_ID"},
	SettingLogAnalyticsRG:     {"LAW_RG"},
	SettingLogAnalyticsName:   {"LAW_NAME"},
	SettingBicepMainPath:      {"BICEP_MAIN_PATH"},
	SettingBicepParameterPath: {"BICEP_PARAMETER_PATH"},
	SettingSentryDSN:          {"MLPAD_SENTRY_DSN"},
	SettingLogFile:            {"MLPAD_LOG_FILE"},
}

// NewSettings returns a viper instance bound to mlpad's environment
// variables.
func NewSettings() *viper.Viper {
	v := viper.New()
	for key, envs := range settingEnv {
		args := append([]string{key}, envs...)
		_ = v.BindEnv(args...)
	}
	return v
}

// Workspace returns the workspace coordinates from settings. The result is
// not validated.
func Workspace(settings *viper.Viper) azml.Workspace {
	return azml.Workspace{
		SubscriptionID: settings.GetString(SettingSubscriptionID),
		ResourceGroup:  settings.GetString(SettingResourceGroup),
		Name:           settings.GetString(SettingWorkspace),
	}
}
