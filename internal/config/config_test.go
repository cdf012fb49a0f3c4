package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STATE_STORE", "")
	t.Setenv("WIZARD_TEMPLATE_STEP", "")

	cfg := Load()
	assert.Equal(t, "brdGeniusState", cfg.Storage.KeyPrefix)
	assert.True(t, cfg.Wizard.TemplateStep)
	assert.Equal(t, "split", cfg.Wizard.TechStackMode)
	assert.Equal(t, "BRDGenius_Document", cfg.Wizard.DocumentName)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STATE_STORE", "Redis")
	t.Setenv("WIZARD_TEMPLATE_STEP", "false")
	t.Setenv("WIZARD_TECH_STACK_MODE", "COMBINED")
	t.Setenv("SESSION_TTL_HOURS", "12")
	t.Setenv("AI_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.False(t, cfg.Wizard.TemplateStep)
	assert.Equal(t, "combined", cfg.Wizard.TechStackMode)
	assert.Equal(t, 12, cfg.Session.TTLHours)
	assert.Equal(t, 0, cfg.Ai.TimeoutSeconds)
}

func TestSessionSecret(t *testing.T) {
	t.Run("development falls back to the dev secret", func(t *testing.T) {
		t.Setenv("GO_ENV", "development")
		t.Setenv("SESSION_SECRET", "")

		cfg := Load()
		assert.Equal(t, DevSessionSecret, cfg.Session.Secret)
		require.NoError(t, cfg.Validate())
	})

	t.Run("production without a secret is rejected", func(t *testing.T) {
		t.Setenv("GO_ENV", "production")
		t.Setenv("SESSION_SECRET", "")

		cfg := Load()
		assert.Empty(t, cfg.Session.Secret)
		assert.ErrorIs(t, cfg.Validate(), ErrMissingSessionSecret)
	})

	t.Run("production with the dev secret is rejected", func(t *testing.T) {
		t.Setenv("GO_ENV", "production")
		t.Setenv("SESSION_SECRET", DevSessionSecret)

		assert.ErrorIs(t, Load().Validate(), ErrMissingSessionSecret)
	})

	t.Run("production with a secret", func(t *testing.T) {
		t.Setenv("GO_ENV", "production")
		t.Setenv("SESSION_SECRET", "s3cr3t-value")

		cfg := Load()
		assert.Equal(t, "s3cr3t-value", cfg.Session.Secret)
		require.NoError(t, cfg.Validate())
	})
}
