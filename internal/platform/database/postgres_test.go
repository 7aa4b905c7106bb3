package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srgjo27/cinema_client/internal/platform/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.Postgres{
		Host:     "db",
		Port:     "5433",
		User:     "cinema",
		Password: "secret",
		DBName:   "catalog",
	})

	assert.Equal(t, "postgres://cinema:secret@db:5433/catalog?sslmode=disable", dsn)
}
