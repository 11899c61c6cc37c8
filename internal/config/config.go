package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel    string      `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort    string      `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort  string      `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis       Redis       `yaml:"redis"`
	OIDC        OIDC        `yaml:"oidc"`
	Leaderboard Leaderboard `yaml:"leaderboard"`
	XandZero    XandZero    `yaml:"xandzero"`
	Arcade      Arcade      `yaml:"arcade"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// OIDC describes the external identity provider whose tokens are accepted.
type OIDC struct {
	JWKSURL  string        `yaml:"jwks-url" env:"OIDC_JWKS_URL" env-default:""`
	Issuer   string        `yaml:"issuer" env:"OIDC_ISSUER" env-default:""`
	Audience string        `yaml:"audience" env:"OIDC_AUDIENCE" env-default:""`
	CacheTTL time.Duration `yaml:"cache-ttl" env-default:"1h"`
	Timeout  time.Duration `yaml:"timeout" env-default:"5s"`
}

type Leaderboard struct {
	Backend      string        `yaml:"backend" env:"LEADERBOARD_BACKEND" env-default:"redis"`
	SQLitePath   string        `yaml:"sqlite-path" env:"LEADERBOARD_SQLITE_PATH" env-default:"leaderboard.db"`
	PostgresDSN  string        `yaml:"postgres-dsn" env:"LEADERBOARD_POSTGRES_DSN" env-default:""`
	Timeout      time.Duration `yaml:"timeout" env-default:"2s"`
	WriteRetries uint64        `yaml:"write-retries" env-default:"3"`
	DefaultGame  string        `yaml:"default-game" env-default:"dragonball"`
	DefaultLimit int64         `yaml:"default-limit" env-default:"10"`
	MaxLimit     int64         `yaml:"max-limit" env-default:"100"`
}

type XandZero struct {
	AIRandomness  float64       `yaml:"ai-randomness" env-default:"0.2"`
	AIEraseChance float64       `yaml:"ai-erase-chance" env-default:"0.2"`
	AIEraseBudget int           `yaml:"ai-erase-budget" env-default:"50"`
	MatchTTL      time.Duration `yaml:"match-ttl" env-default:"24h"`
}

type Arcade struct {
	TickInterval  time.Duration `yaml:"tick-interval" env-default:"16ms"`
	WriteTimeout  time.Duration `yaml:"write-timeout" env-default:"1s"`
	PingInterval  time.Duration `yaml:"ping-interval" env-default:"30s"`
	SpawnChance   float64       `yaml:"spawn-chance" env-default:"0.02"`
	BaseSpeed     float64       `yaml:"base-speed" env-default:"3"`
	SpeedPerPoint float64       `yaml:"speed-per-point" env-default:"0.1"`
	Reward        int64         `yaml:"reward" env-default:"10"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
