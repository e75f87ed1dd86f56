package consent

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsent(t *testing.T) {
	ctx := context.Background()
	local := storage.NewMemory()

	s, err := Open(ctx, local)
	require.NoError(t, err)
	_, ok := s.Choice()
	assert.False(t, ok)

	assert.Error(t, s.Set(ctx, "maybe"))
	require.NoError(t, s.Set(ctx, Declined))

	reopened, err := Open(ctx, local)
	require.NoError(t, err)
	c, ok := reopened.Choice()
	assert.True(t, ok)
	assert.Equal(t, Declined, c)

	raw, err := local.Get(ctx, storage.KeyCookieConsent)
	require.NoError(t, err)
	assert.JSONEq(t, `"declined"`, string(raw))
}
