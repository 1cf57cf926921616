package migrate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpDownSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "ledger.db")

	require.NoError(t, Up(ctx, "sqlite", dsn))
	v, err := Version(ctx, "sqlite", dsn)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	require.NoError(t, Down(ctx, "sqlite", dsn))
	v, err = Version(ctx, "sqlite", dsn)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestUnsupportedDriver(t *testing.T) {
	assert.Error(t, Up(context.Background(), "mysql", "x"))
}
