package provider

import (
	"context"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type CredentialProvider interface {
	Get(ctx context.Context) (azcore.TokenCredential, error)
}

type settingsCredential struct {
	settings *viper.Viper

	once sync.Once
	cred azcore.TokenCredential
	err  error
}

// SettingsCredentialProvider authenticates as the service principal named
// by the client settings when all three are set, and otherwise falls back
// to the default Azure credential chain (environment, managed identity,
// az CLI login).
func SettingsCredentialProvider(settings *viper.Viper) CredentialProvider {
	return &settingsCredential{settings: settings}
}

func (p *settingsCredential) Get(ctx context.Context) (azcore.TokenCredential, error) {
	p.once.Do(func() {
		id := p.settings.GetString(SettingClientID)
		secret := p.settings.GetString(SettingClientSecret)
		tenant := p.settings.GetString(SettingTenantID)
		if id != "" && secret != "" && tenant != "" {
			p.cred, p.err = azidentity.NewClientSecretCredential(tenant, id, secret, nil)
		} else {
			p.cred, p.err = azidentity.NewDefaultAzureCredential(nil)
		}
		p.err = errors.Wrap(p.err, "failed to create Azure credential")
	})
	return p.cred, p.err
}

type staticCredential struct {
	cred azcore.TokenCredential
}

// StaticCredentialProvider always returns cred.
func StaticCredentialProvider(cred azcore.TokenCredential) CredentialProvider {
	return &staticCredential{cred: cred}
}

func (p *staticCredential) Get(ctx context.Context) (azcore.TokenCredential, error) {
	return p.cred, nil
}
