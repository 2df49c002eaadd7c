// Package azaccount resolves which subscription a deployment environment
// targets.
package azaccount

import (
	"context"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/goutil/errorutil"
)

var environmentSubscriptions = map[string]string{
	"dev":  "Development",
	"test": "Testing",
	"prod": "Production",
}

// SubscriptionName maps a deployment environment (dev, test, prod) to the
// display name of its subscription.
func SubscriptionName(environment string) (string, error) {
	name, ok := environmentSubscriptions[strings.ToLower(environment)]
	if !ok {
		return "", errorutil.NewUserErrorf(
			"unknown environment %q, expected one of dev, test, prod", environment,
		).WithHint("or set SUBSCRIPTION_ID to pick the subscription directly")
	}
	return name, nil
}

type Subscription struct {
	ID          string
	DisplayName string
	State       string
}

type Lister struct {
	client *armsubscriptions.Client
}

func NewLister(cred azcore.TokenCredential, opts *arm.ClientOptions) (*Lister, error) {
	c, err := armsubscriptions.NewClient(cred, opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Lister{client: c}, nil
}

// List returns every subscription the credential can see.
func (l *Lister) List(ctx context.Context) ([]Subscription, error) {
	subs := []Subscription{}
	pager := l.client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list subscriptions")
		}
		for _, s := range page.Value {
			if s == nil {
				continue
			}
			subs = append(subs, Subscription{
				ID:          goutil.Deref(s.SubscriptionID),
				DisplayName: goutil.Deref(s.DisplayName),
				State:       string(goutil.Deref(s.State)),
			})
		}
	}
	return subs, nil
}

// FindByName returns the ID of the subscription with the given display
// name. Names are compared case-insensitively.
func (l *Lister) FindByName(ctx context.Context, displayName string) (string, error) {
	subs, err := l.List(ctx)
	if err != nil {
		return "", err
	}
	for _, s := range subs {
		if strings.EqualFold(s.DisplayName, displayName) {
			return s.ID, nil
		}
	}
	return "", errorutil.NewUserErrorf("no subscription named %q is visible to this identity", displayName)
}
