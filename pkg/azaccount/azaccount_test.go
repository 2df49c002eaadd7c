package azaccount

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/pkg/aztesting"
)

func TestSubscriptionName(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"dev", "Development"},
		{"TEST", "Testing"},
		{"prod", "Production"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			got, err := SubscriptionName(tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := SubscriptionName("staging")
	require.Error(t, err)
	assert.True(t, errorutil.IsUserError(err))
}

func TestFindByName(t *testing.T) {
	sender := aztesting.NewSender().Route(http.MethodGet, "/subscriptions", http.StatusOK, map[string]any{
		"value": []map[string]any{
			{"subscriptionId": "1111", "displayName": "Development", "state": "Enabled"},
			{"subscriptionId": "2222", "displayName": "Production", "state": "Enabled"},
		},
	})
	l, err := NewLister(aztesting.FakeCredential{}, sender.ClientOptions())
	require.NoError(t, err)

	id, err := l.FindByName(context.Background(), "production")
	require.NoError(t, err)
	assert.Equal(t, "2222", id)

	_, err = l.FindByName(context.Background(), "Testing")
	require.Error(t, err)
	assert.True(t, errorutil.IsUserError(err))
}
