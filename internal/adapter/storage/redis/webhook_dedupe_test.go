package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookDeduper_CheckAndSet(t *testing.T) {
	_, client := newTestClient(t)
	d := NewWebhookDeduper(client)
	ctx := context.Background()

	ok, err := d.CheckAndSet(ctx, "swiftpay:ORD1:abc", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "first delivery should be new")

	ok, err = d.CheckAndSet(ctx, "swiftpay:ORD1:abc", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "replayed delivery should be rejected")

	ok, err = d.CheckAndSet(ctx, "swiftpay:ORD1:def", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "different body is a different delivery")
}

func TestWebhookDeduper_Expiry(t *testing.T) {
	s, client := newTestClient(t)
	d := NewWebhookDeduper(client)
	ctx := context.Background()

	_, err := d.CheckAndSet(ctx, "k", time.Minute)
	require.NoError(t, err)
	s.FastForward(2 * time.Minute)

	ok, err := d.CheckAndSet(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWebhookDeduper_Release(t *testing.T) {
	_, client := newTestClient(t)
	d := NewWebhookDeduper(client)
	ctx := context.Background()

	_, err := d.CheckAndSet(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, d.Release(ctx, "k"))

	ok, err := d.CheckAndSet(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "released key should be accepted again")
}
