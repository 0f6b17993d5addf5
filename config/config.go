package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database      DatabaseConfigs      `toml:"database"`
	ApiServer     APIServerConfigs     `toml:"api_server"`
	Auth          AuthConfigs          `toml:"auth"`
	Redis         RedisConfigs         `toml:"redis"`
	Kafka         KafkaConfigs         `toml:"kafka"`
	Participation ParticipationConfigs `toml:"participation"`
	Leaderboard   LeaderboardConfigs   `toml:"leaderboard"`
	Comment       CommentConfigs       `toml:"comment"`
	Realtime      RealtimeConfigs      `toml:"realtime"`
	Search        SearchConfigs        `toml:"search"`
}

type DatabaseConfigs struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	LogLevel string `toml:"log_level"`
}

func (d DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.Database
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs
	MaxLimit       int      `toml:"max_limit"`
	DefaultLimit   int      `toml:"default_limit"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RateLimit      float64  `toml:"rate_limit"`
	RateBurst      int      `toml:"rate_burst"`
}

type AuthConfigs struct {
	TokenSecret     string        `toml:"token_secret"`
	AccessTokenName string        `toml:"access_token_name"`
	Expiration      time.Duration `toml:"expiration"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr    string `toml:"addr"`
	GroupID string `toml:"group_id"`
}

type ParticipationConfigs struct {
	// TimeZone is the IANA location used to decide calendar days of check-ins.
	TimeZone string `toml:"time_zone"`
}

func (c ParticipationConfigs) Location() *time.Location {
	if c.TimeZone == "" {
		return time.Local
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}

	return loc
}

type LeaderboardConfigs struct {
	SnapshotHour int `toml:"snapshot_hour"`
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

type CommentConfigs struct {
	MaxLength int   `toml:"max_length"`
	NodeID    int64 `toml:"node_id"`
}

type RealtimeConfigs struct {
	ServerConfigs
	BufferSize int `toml:"buffer_size"`
}

type SearchConfigs struct {
	// IndexDir keeps the index on disk, an empty directory keeps it in memory.
	IndexDir string `toml:"index_dir"`
}

// Default returns the configuration used when neither file nor environment set a value.
func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "INFO",
		Database: DatabaseConfigs{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     "3306",
			Database: "habit",
			User:     "habit",
		},
		ApiServer: APIServerConfigs{
			ServerConfigs: ServerConfigs{Port: "8080"},
			MaxLimit:      50,
			DefaultLimit:  10,
			RateLimit:     20,
			RateBurst:     40,
		},
		Auth: AuthConfigs{
			AccessTokenName: "access_token",
			Expiration:      24 * time.Hour,
		},
		Redis:       RedisConfigs{Addr: "localhost:6379"},
		Kafka:       KafkaConfigs{Addr: "localhost:9092", GroupID: "habit"},
		Leaderboard: LeaderboardConfigs{SnapshotHour: 0, DefaultLimit: 20, MaxLimit: 100},
		Comment:     CommentConfigs{MaxLength: 2000, NodeID: 1},
		Realtime:    RealtimeConfigs{ServerConfigs: ServerConfigs{Port: "8081"}, BufferSize: 32},
	}
}

// Load reads the TOML file at path (optional) and then applies environment overrides. A .env
// file in the working directory is loaded first if it exists.
func Load(path string) (Configs, error) {
	cfg := Default()

	_ = godotenv.Load()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("cannot decode config file %s: %w", path, err)
		}
	}

	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)

	cfg.ApiServer.Port = getEnv("API_PORT", cfg.ApiServer.Port)
	cfg.ApiServer.MaxLimit = getEnvInt("API_MAX_LIMIT", cfg.ApiServer.MaxLimit)
	cfg.ApiServer.DefaultLimit = getEnvInt("API_DEFAULT_LIMIT", cfg.ApiServer.DefaultLimit)

	cfg.Auth.TokenSecret = getEnv("TOKEN_SECRET", cfg.Auth.TokenSecret)
	cfg.Redis.Addr = getEnv("REDIS_ADDRESS", cfg.Redis.Addr)
	cfg.Kafka.Addr = getEnv("KAFKA_ADDRESS", cfg.Kafka.Addr)
	cfg.Participation.TimeZone = getEnv("CHECK_IN_TIME_ZONE", cfg.Participation.TimeZone)
	cfg.Realtime.Port = getEnv("REALTIME_PORT", cfg.Realtime.Port)
	cfg.Search.IndexDir = getEnv("SEARCH_INDEX_DIR", cfg.Search.IndexDir)

	if cfg.Auth.TokenSecret == "" {
		return cfg, fmt.Errorf("token secret must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return n
}
