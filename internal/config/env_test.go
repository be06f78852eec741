package config

import (
	"testing"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	t.Setenv("NEAR_NETWORK", "testnet")
	t.Setenv("NEAR_RPC_URL", "")
	t.Setenv("VAULT_BACKEND", "memory")
	t.Setenv("AUTO_UNLOCK_SECONDS", "300")
	t.Cleanup(func() { cfg = nil })

	require.NoError(t, Init())
	assert.Equal(t, "8080", GetPort())
	assert.Equal(t, "testnet", GetNetwork())
	assert.Equal(t, "https://rpc.testnet.near.org", GetRPCURL())
	assert.Equal(t, 5*time.Minute, GetAutoUnlockTTL())
	assert.Equal(t, 30*time.Second, Get().RPCTimeout)
	assert.Equal(t, 15*time.Minute, GetIdleLockTimeout())
}

func TestInitExplicitRPCURL(t *testing.T) {
	t.Setenv("NEAR_NETWORK", "custom")
	t.Setenv("NEAR_RPC_URL", "http://localhost:3030")
	t.Setenv("VAULT_BACKEND", "leveldb")
	t.Cleanup(func() { cfg = nil })

	require.NoError(t, Init())
	assert.Equal(t, "http://localhost:3030", GetRPCURL())
}

func TestValidate(t *testing.T) {
	c := &Config{Network: "mainnet", VaultBackend: "s3"}
	assert.Error(t, c.Validate())

	c = &Config{Network: "nowhere", VaultBackend: "file"}
	assert.Error(t, c.Validate())

	c = &Config{Network: "mainnet", VaultBackend: "file", RPCMaxRetries: -1}
	assert.Error(t, c.Validate())

	c = &Config{Network: "mainnet", VaultBackend: "file", IdleLockSeconds: -5}
	assert.Error(t, c.Validate())

	c = &Config{Network: "mainnet", VaultBackend: "file"}
	assert.NoError(t, c.Validate())
}

func TestInitWrapsParseError(t *testing.T) {
	t.Setenv("RPC_TIMEOUT", "soon")
	t.Cleanup(func() { cfg = nil })

	err := Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process config")
	var parseErr *envconfig.ParseError
	assert.ErrorAs(t, errors.Cause(err), &parseErr)
}

func TestValidateNamesBadValue(t *testing.T) {
	c := &Config{Network: "mainnet", VaultBackend: "s3"}
	assert.EqualError(t, c.Validate(), `unknown VAULT_BACKEND "s3"`)
}

func TestGetPanicsWithoutInit(t *testing.T) {
	cfg = nil
	assert.Panics(t, func() { Get() })
}
