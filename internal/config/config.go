package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory. JSON and
// YAML are both accepted.
const FileName = "tactics.cfg"

// EnvPrefix prefixes environment overrides, e.g. TACTICS_BATTLE_SEED.
const EnvPrefix = "TACTICS"

// BattleConfig holds simulation settings.
type BattleConfig struct {
	Seed      int64         `json:"seed" mapstructure:"seed"`
	HitChance float64       `json:"hitChance" mapstructure:"hitChance"`
	MaxTurns  int           `json:"maxTurns" mapstructure:"maxTurns"`
	TurnDelay time.Duration `json:"turnDelay" mapstructure:"turnDelay"`
	Attacker  string        `json:"attacker" mapstructure:"attacker"`
	Scenario  string        `json:"scenario" mapstructure:"scenario"`
}

// SQLiteConfig holds sqlite replay store settings.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PostgresConfig holds postgres replay store settings.
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StorageConfig selects the replay store backend: none, sqlite or postgres.
type StorageConfig struct {
	Type     string         `json:"type" mapstructure:"type"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"postgres" mapstructure:"postgres"`
}

// APIConfig holds spectator server settings.
type APIConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// SetDefaults registers default values and environment overrides without
// reading a file.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "")

	viper.SetDefault("battle.seed", 1)
	viper.SetDefault("battle.hitChance", 0.8)
	viper.SetDefault("battle.maxTurns", 500)
	viper.SetDefault("battle.turnDelay", "100ms")
	viper.SetDefault("battle.attacker", "red")
	viper.SetDefault("battle.scenario", "skirmish")

	viper.SetDefault("storage.type", "none")
	viper.SetDefault("storage.sqlite.path", "./tactics.db")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "tactics")

	viper.SetDefault("api.addr", ":8080")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load sets defaults, then reads tactics.cfg.{json,yaml} from configDir. An
// empty configDir skips the file.
func Load(configDir string) error {
	SetDefaults()
	if configDir == "" {
		return nil
	}

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// IsNotFound reports whether a Load error means the file was simply absent.
func IsNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetBattleConfig returns the simulation settings.
func GetBattleConfig() BattleConfig {
	return BattleConfig{
		Seed:      viper.GetInt64("battle.seed"),
		HitChance: viper.GetFloat64("battle.hitChance"),
		MaxTurns:  viper.GetInt("battle.maxTurns"),
		TurnDelay: viper.GetDuration("battle.turnDelay"),
		Attacker:  viper.GetString("battle.attacker"),
		Scenario:  viper.GetString("battle.scenario"),
	}
}

// GetStorageConfig returns the replay store settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("storage.postgres.host"),
			Port:     viper.GetString("storage.postgres.port"),
			Username: viper.GetString("storage.postgres.username"),
			Password: viper.GetString("storage.postgres.password"),
			Database: viper.GetString("storage.postgres.database"),
		},
	}
}

// GetAPIConfig returns the spectator server settings.
func GetAPIConfig() APIConfig {
	return APIConfig{Addr: viper.GetString("api.addr")}
}
