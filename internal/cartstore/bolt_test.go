package cartstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoltMirror(t *testing.T) *BoltMirror {
	t.Helper()
	m, err := NewBoltMirror(filepath.Join(t.TempDir(), "carts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestBoltMirror_GetMissingKey(t *testing.T) {
	m := newTestBoltMirror(t)

	_, err := m.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrMirrorNotFound)
}

func TestBoltMirror_SetThenGet(t *testing.T) {
	m := newTestBoltMirror(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "s1", []byte(`[{"id":"b1"}]`)))

	data, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"b1"}]`, string(data))
}

func TestBoltMirror_OverwriteIsLastWriteWins(t *testing.T) {
	m := newTestBoltMirror(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "s1", []byte(`["old"]`)))
	require.NoError(t, m.Set(ctx, "s1", []byte(`["new"]`)))

	data, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, `["new"]`, string(data))
}

func TestBoltMirror_KeysAreIsolated(t *testing.T) {
	m := newTestBoltMirror(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "s1", []byte(`["a"]`)))
	require.NoError(t, m.Set(ctx, "s2", []byte(`["b"]`)))

	data, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(data))
}
