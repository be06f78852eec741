package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Passwords are never part of the environment, use PromptPassword.
type Config struct {
	Port              string        `envconfig:"PORT" default:"8080"`
	Network           string        `envconfig:"NEAR_NETWORK" default:"mainnet"`
	RPCURL            string        `envconfig:"NEAR_RPC_URL"`
	VaultBackend      string        `envconfig:"VAULT_BACKEND" default:"file"`
	VaultPath         string        `envconfig:"VAULT_PATH" default:"./narwallet-data"`
	RedisAddr         string        `envconfig:"REDIS_ADDR"`
	RPCTimeout        time.Duration `envconfig:"RPC_TIMEOUT" default:"30s"`
	RPCMaxRetries     int           `envconfig:"RPC_MAX_RETRIES" default:"2"`
	RPCRateLimit      float64       `envconfig:"RPC_RATE_LIMIT" default:"10"`
	AutoUnlockSeconds int           `envconfig:"AUTO_UNLOCK_SECONDS" default:"0"`
	IdleLockSeconds   int           `envconfig:"IDLE_LOCK_SECONDS" default:"900"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`
}

var rpcURLs = map[string]string{
	"mainnet":  "https://rpc.mainnet.near.org",
	"testnet":  "https://rpc.testnet.near.org",
	"betanet":  "https://rpc.betanet.near.org",
	"guildnet": "https://rpc.openshards.io",
	"local":    "http://127.0.0.1:3030",
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return errors.Wrap(err, "failed to process config")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// Validate checks values envconfig cannot check by itself
func (c *Config) Validate() error {
	switch c.VaultBackend {
	case "file", "leveldb", "memory":
	default:
		return errors.Errorf("unknown VAULT_BACKEND %q", c.VaultBackend)
	}
	if c.RPCURL == "" {
		if _, ok := rpcURLs[c.Network]; !ok {
			return errors.Errorf("unknown NEAR_NETWORK %q and no NEAR_RPC_URL set", c.Network)
		}
	}
	if c.RPCMaxRetries < 0 {
		return errors.New("RPC_MAX_RETRIES cannot be negative")
	}
	if c.AutoUnlockSeconds < 0 {
		return errors.New("AUTO_UNLOCK_SECONDS cannot be negative")
	}
	if c.IdleLockSeconds < 0 {
		return errors.New("IDLE_LOCK_SECONDS cannot be negative")
	}
	return nil
}

// Set replaces the global configuration. Used by tests and the CLI.
func Set(c *Config) {
	cfg = c
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetNetwork returns the NEAR network name (mainnet, testnet, ...)
func GetNetwork() string {
	return Get().Network
}

// GetRPCURL returns NEAR_RPC_URL or the default endpoint of the network
func GetRPCURL() string {
	c := Get()
	if c.RPCURL != "" {
		return c.RPCURL
	}
	return rpcURLs[c.Network]
}

// GetAutoUnlockTTL returns the default auto-unlock lifetime, zero means disabled
func GetAutoUnlockTTL() time.Duration {
	return time.Duration(Get().AutoUnlockSeconds) * time.Second
}

// GetIdleLockTimeout returns how long an unused session stays unlocked, zero means forever
func GetIdleLockTimeout() time.Duration {
	return time.Duration(Get().IdleLockSeconds) * time.Second
}

// PromptPassword prompts for a password in the terminal without echo.
// Caller must zero the returned slice after use.
func PromptPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read password")
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}
