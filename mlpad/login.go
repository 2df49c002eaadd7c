package mlpad

import (
	"context"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/pkg/azaccount"
	"go.jetpack.io/mlpad/pkg/padlog"
)

// Login signs the az CLI in as the service principal and selects the
// subscription, either given by ID or looked up from the environment
// name.
func (p *Pad) Login(ctx context.Context, opts *LoginOptions) (*LoginOutput, error) {
	sp := opts.ServicePrincipal
	for _, v := range []struct{ name, value string }{
		{"ARM_CLIENT_ID", sp.ClientID},
		{"ARM_CLIENT_SECRET", sp.ClientSecret},
		{"ARM_TENANT_ID", sp.TenantID},
	} {
		if v.value == "" {
			return nil, errorutil.NewUserErrorf("%s is not set", v.name)
		}
	}

	subscription := opts.SubscriptionID
	if subscription == "" {
		name, err := azaccount.SubscriptionName(opts.Environment)
		if err != nil {
			return nil, err
		}
		if opts.FindSubscription == nil {
			return nil, errorutil.NewUserErrorf("cannot look up subscription %q", name).
				WithHint("Set SUBSCRIPTION_ID")
		}
		if subscription, err = opts.FindSubscription(ctx, name); err != nil {
			return nil, err
		}
	}

	log := padlog.Logger(ctx)
	if err := opts.CLI.Login(ctx, sp); err != nil {
		return nil, err
	}
	if err := opts.CLI.SetSubscription(ctx, subscription); err != nil {
		return nil, err
	}
	account, err := opts.CLI.CurrentAccount(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("Logged in to subscription %s (%s)\n", account.Name, account.ID)
	return &LoginOutput{Account: account}, nil
}
