package database

import (
	"context"
	"testing"

	"travel-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_InvalidConfig(t *testing.T) {
	pool, err := InitDB(context.Background(), utils.DatabaseConfig{
		Host:    "localhost",
		Port:    "not-a-port",
		Name:    "travel",
		SSLMode: "disable",
	})

	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Contains(t, err.Error(), "parse pool config")
}
