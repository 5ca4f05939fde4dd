package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finny/internal/config"
)

func TestConfig_DSNAndURL(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBHost:     "db",
		DBPort:     "5433",
		DBUser:     "u",
		DBPassword: "p",
		DBName:     "ledger",
		DBSSLMode:  "require",
	})

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=ledger sslmode=require", cfg.DSN())
	assert.Equal(t, "postgres://u:p@db:5433/ledger?sslmode=require", cfg.URL())
}
