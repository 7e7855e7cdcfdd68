package bundb

import (
	"context"
	"testing"

	"github.com/Black-And-White-Club/ttbw-roster/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_RequiresDSN(t *testing.T) {
	db, err := Open(context.Background(), config.PostgresConfig{}, nil)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
