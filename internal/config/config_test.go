package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CartStorageRedis, cfg.Cart.Storage)
	assert.Equal(t, "alma_cart", cfg.Cart.Namespace)
	assert.Equal(t, 30*24*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, 30*time.Minute, cfg.Cart.IdleTTL)
	assert.Equal(t, 10*time.Second, cfg.Payment.VerifyTimeout)
	assert.Equal(t, []string{"Aceptada", "Aceptado", "APPROVED", "approved"}, cfg.Payment.AcceptedStates)
	assert.Equal(t, "COP", cfg.Payment.DefaultCurrency)
	assert.Contains(t, cfg.Payment.ValidationURL, "{ref}")
	assert.Zero(t, cfg.Server.WriteTimeout)
	assert.True(t, cfg.UsesRedis())
	assert.False(t, cfg.UsesPostgres())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CART_STORAGE", "Postgres")
	t.Setenv("PAYMENT_ACCEPTED_STATES", " Aceptada , APPROVED ,,")
	t.Setenv("PAYMENT_VERIFY_TIMEOUT", "3s")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CartStoragePostgres, cfg.Cart.Storage)
	assert.True(t, cfg.UsesPostgres())
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, []string{"Aceptada", "APPROVED"}, cfg.Payment.AcceptedStates)
	assert.Equal(t, 3*time.Second, cfg.Payment.VerifyTimeout)
	assert.Contains(t, cfg.GetDatabaseDSN(), "host=db.internal")
}

func TestLoad_IdleTTLCappedByCartTTL(t *testing.T) {
	t.Setenv("CART_TTL", "10m")
	t.Setenv("CART_IDLE_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Cart.IdleTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "short jwt secret", env: map[string]string{"JWT_SECRET": "short"}, wantErr: "JWT_SECRET"},
		{name: "unknown storage", env: map[string]string{"CART_STORAGE": "sqlite"}, wantErr: "CART_STORAGE"},
		{name: "bad timeout", env: map[string]string{"PAYMENT_VERIFY_TIMEOUT": "-1s"}, wantErr: "PAYMENT_VERIFY_TIMEOUT"},
		{name: "memory needs no redis", env: map[string]string{"CART_STORAGE": "memory", "REDIS_HOST": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
