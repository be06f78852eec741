package main

import (
	"context"
	"time"

	"github.com/AlexZinkM/narwallet/internal/client"
	"github.com/AlexZinkM/narwallet/internal/config"
	"github.com/AlexZinkM/narwallet/internal/storage"
	"github.com/AlexZinkM/narwallet/internal/vault"
	"github.com/AlexZinkM/narwallet/near"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// redisSideTTL bounds how long an unconsumed auto-unlock record survives in Redis
const redisSideTTL = 24 * time.Hour

// app wires the configured storage, vault and ledger client
type app struct {
	vault   *vault.Vault
	ledger  *client.NearClient
	wallet  *near.Wallet
	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Get()
	a := &app{}

	store, err := a.openStore(cfg)
	if err != nil {
		return nil, err
	}

	opts := []vault.Option{vault.WithNetwork(cfg.Network)}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, errors.Wrap(err, "failed to connect to redis")
		}
		a.closers = append(a.closers, rdb.Close)
		opts = append(opts, vault.WithSideStore(storage.NewRedisStore(rdb, redisSideTTL)))
		log.Info().Str("addr", cfg.RedisAddr).Msg("Auto-unlock records kept in Redis")
	}

	a.vault = vault.New(store, opts...)
	if _, err := a.vault.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.ledger, err = client.NewNearClient(client.Options{
		RPCURL:     config.GetRPCURL(),
		Timeout:    cfg.RPCTimeout,
		MaxRetries: cfg.RPCMaxRetries,
		RateLimit:  cfg.RPCRateLimit,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.wallet = near.NewWallet(a.ledger, client.NewCoinGeckoClient(), cfg.Network)

	log.Info().
		Str("network", cfg.Network).
		Str("rpc", a.ledger.RPCURL()).
		Str("backend", cfg.VaultBackend).
		Msg("Wallet ready")
	return a, nil
}

func (a *app) openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.VaultBackend {
	case "file":
		return storage.NewFileStore(cfg.VaultPath)
	case "leveldb":
		db, err := storage.OpenLevelDB(cfg.VaultPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	case "memory":
		log.Warn().Msg("Vault kept in memory, nothing survives a restart")
		return storage.NewMemoryStore(), nil
	default:
		return nil, errors.Errorf("unknown vault backend %q", cfg.VaultBackend)
	}
}

// Close wipes the open session, keeping its auto-unlock token, and releases storage
func (a *app) Close() {
	if a.vault != nil {
		if s := a.vault.Active(); s != nil {
			a.vault.Close(s)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("Failed to close resource")
		}
	}
	a.closers = nil
}
