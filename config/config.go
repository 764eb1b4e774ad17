package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type GameConfig struct {
	// MinPlayers is the smallest alive set a target ring can be built over.
	MinPlayers int `mapstructure:"min_players"`
	// ProximityThresholdMeters marks a target as nearby at or under this distance.
	ProximityThresholdMeters float64 `mapstructure:"proximity_threshold_meters"`
	LocationTTLSeconds       int     `mapstructure:"location_ttl_seconds"`
	// LocationUpdatesPerSecond rate-limits location packets per session.
	LocationUpdatesPerSecond  float64 `mapstructure:"location_updates_per_second"`
	SessionIdleTimeoutSeconds int     `mapstructure:"session_idle_timeout_seconds"`
}

func (g GameConfig) LocationTTL() time.Duration {
	return time.Duration(g.LocationTTLSeconds) * time.Second
}

func (g GameConfig) SessionIdleTimeout() time.Duration {
	return time.Duration(g.SessionIdleTimeoutSeconds) * time.Second
}

// LoadDotEnv loads a .env file if present. Existing variables win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("game.min_players", 4)
	viper.SetDefault("game.proximity_threshold_meters", 50.0)
	viper.SetDefault("game.location_ttl_seconds", 3600)
	viper.SetDefault("game.location_updates_per_second", 2.0)
	viper.SetDefault("game.session_idle_timeout_seconds", 300)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
