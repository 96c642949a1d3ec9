package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDefaultWhenMissing(t *testing.T) {
	store := NewSettingsStore(filepath.Join(t.TempDir(), "config.json"))
	assert.Equal(t, 1, store.Get(context.Background()).DisplayMode)
}

func TestSettingsDefaultWhenUnparsable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	store := NewSettingsStore(path)
	assert.Equal(t, 1, store.Get(context.Background()).DisplayMode)
}

func TestSettingsSetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store := NewSettingsStore(path)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 2))
	assert.Equal(t, 2, store.Get(ctx).DisplayMode)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"displayMode": 2}`, string(data))
}

func TestSettingsRejectsInvalidMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store := NewSettingsStore(path)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 2))

	err := store.Set(ctx, 3)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 2, store.Get(ctx).DisplayMode)

	fresh := NewSettingsStore(filepath.Join(t.TempDir(), "config.json"))
	assert.ErrorIs(t, fresh.Set(ctx, 3), ErrInvalidArgument)
	assert.Equal(t, 1, fresh.Get(ctx).DisplayMode)
}
