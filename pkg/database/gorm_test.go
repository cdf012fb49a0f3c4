package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConfigDSN(t *testing.T) {
	cfg := GormConfig{Host: "db", Port: "5432", User: "brd", Password: "pw", DBName: "brdgenius"}
	assert.Equal(t, "host=db user=brd password=pw dbname=brdgenius port=5432 sslmode=disable", cfg.DSN())

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}

func TestNewGormDBFromDSNRejectsEmpty(t *testing.T) {
	_, err := NewGormDBFromDSN("")
	require.Error(t, err)
}
