package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConnection() ConnectionConfig {
	return ConnectionConfig{
		Host:     "node-1.dc.example",
		Port:     22,
		Username: "ubuntu",
		Password: "s3cret",
	}
}

func TestValidateConnection_Valid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ConnectionConfig)
	}{
		{"password auth", func(c *ConnectionConfig) {}},
		{"key auth", func(c *ConnectionConfig) { c.Password = ""; c.PrivateKey = "-----BEGIN KEY-----" }},
		{"ipv4 host", func(c *ConnectionConfig) { c.Host = "10.0.0.5" }},
		{"ipv6 host", func(c *ConnectionConfig) { c.Host = "2001:db8::1" }},
		{"zero timeout", func(c *ConnectionConfig) { c.Timeout = floatPtr(0) }},
		{"positive timeout", func(c *ConnectionConfig) { c.Timeout = floatPtr(30) }},
		{"dotted username", func(c *ConnectionConfig) { c.Username = "deploy.bot_1-a" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConnection()
			tt.mutate(&cfg)

			res := ValidateConnection(cfg)

			assert.True(t, res.Valid, "errors: %v", res.Errors)
			assert.Empty(t, res.Errors)
		})
	}
}

func TestValidateConnection_SingleErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ConnectionConfig)
		errMsg string
	}{
		{"empty host", func(c *ConnectionConfig) { c.Host = "" }, "host is required"},
		{"host with shell chars", func(c *ConnectionConfig) { c.Host = "node;rm -rf" }, "host may only contain letters, digits, '.', '-' and ':'"},
		{"port zero", func(c *ConnectionConfig) { c.Port = 0 }, "port must be an integer between 1 and 65535"},
		{"port too high", func(c *ConnectionConfig) { c.Port = 70000 }, "port must be an integer between 1 and 65535"},
		{"empty username", func(c *ConnectionConfig) { c.Username = "" }, "username is required"},
		{"username with space", func(c *ConnectionConfig) { c.Username = "root user" }, "username may only contain letters, digits, '.', '_' and '-'"},
		{"no auth", func(c *ConnectionConfig) { c.Password = "" }, "at least one authentication method (private_key or password) is required"},
		{"negative timeout", func(c *ConnectionConfig) { c.Timeout = floatPtr(-1) }, "timeout must be non-negative"},
		{"infinite timeout", func(c *ConnectionConfig) { c.Timeout = floatPtr(math.Inf(1)) }, "timeout must be a finite number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConnection()
			tt.mutate(&cfg)

			res := ValidateConnection(cfg)

			assert.False(t, res.Valid)
			assert.Equal(t, []string{tt.errMsg}, res.Errors)
		})
	}
}

func TestValidateConnection_AccumulatesEverything(t *testing.T) {
	res := ValidateConnection(ConnectionConfig{
		Host:     "bad host!",
		Port:     0,
		Username: "",
		Timeout:  floatPtr(-5),
	})

	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 5)
	assert.Contains(t, res.Errors, "host may only contain letters, digits, '.', '-' and ':'")
	assert.Contains(t, res.Errors, "port must be an integer between 1 and 65535")
	assert.Contains(t, res.Errors, "username is required")
	assert.Contains(t, res.Errors, "timeout must be non-negative")
	assert.Contains(t, res.Errors, "at least one authentication method (private_key or password) is required")
}
