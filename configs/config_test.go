package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "Cloud Kitchen", cfg.Store.RestaurantName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 24, cfg.JWT.ExpiryHours)
}

func TestLoadConfig_ReleaseRequiresSecret(t *testing.T) {
	t.Setenv("GIN_MODE", "release")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "a-real-secret", cfg.JWT.SecretKey)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("DELIVERY_CHARGES", "30")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30.0, cfg.Store.DeliveryCharge)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "3001"},
			JWT:    JWTConfig{SecretKey: "s", ExpiryHours: 1},
			Store:  StoreConfig{WhatsAppNumber: "919739998398", UPIID: "kitchen@okhdfcbank"},
			Log:    LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: true},
		{name: "empty secret", mutate: func(c *Config) { c.JWT.SecretKey = "" }, wantErr: true},
		{name: "whatsapp with plus", mutate: func(c *Config) { c.Store.WhatsAppNumber = "+919739998398" }, wantErr: true},
		{name: "upi without handle", mutate: func(c *Config) { c.Store.UPIID = "kitchen" }, wantErr: true},
		{name: "negative delivery charge", mutate: func(c *Config) { c.Store.DeliveryCharge = -1 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantErr: true},
		{name: "log level case-insensitive", mutate: func(c *Config) { c.Log.Level = "WARN" }},
		{name: "default secret in debug", mutate: func(c *Config) { c.JWT.SecretKey = DefaultJWTSecret }},
		{name: "default secret in release", mutate: func(c *Config) {
			c.Server.Mode = "release"
			c.JWT.SecretKey = DefaultJWTSecret
		}, wantErr: true},
		{name: "custom secret in release", mutate: func(c *Config) { c.Server.Mode = "release" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
