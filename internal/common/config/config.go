package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Ledger struct {
		BaseURL string `env:"LEDGER_BASE_URL" envDefault:"http://localhost:4001"`
		Token   string `env:"LEDGER_TOKEN" envDefault:""`

		// Asset id of the reward token tracked alongside the primary balance.
		RewardAssetID uint64 `env:"LEDGER_REWARD_ASSET_ID" envDefault:"0"`
	}

	Wallet struct {
		SyncIntervalSec       int `env:"WALLET_SYNC_INTERVAL_SEC" envDefault:"30"`
		ConfirmTimeoutSec     int `env:"WALLET_CONFIRM_TIMEOUT_SEC" envDefault:"90"`
		ConfirmPollIntervalMS int `env:"WALLET_CONFIRM_POLL_INTERVAL_MS" envDefault:"2000"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// .env is optional; in production the variables are set directly.
		_ = err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
