package bootstrap

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort       string  `mapstructure:"SERVER_PORT"`
	RedisUrl         string  `mapstructure:"REDIS_URL"`
	MongoUri         string  `mapstructure:"MONGO_URI"`
	MongoDatabase    string  `mapstructure:"MONGO_DATABASE"`
	IsLocalCors      bool    `mapstructure:"LOCAL_CORS"`
	ShapesPath       string  `mapstructure:"SHAPES_PATH"`
	DefaultBoardSize int     `mapstructure:"DEFAULT_BOARD_SIZE"`
	DefaultKomi      float64 `mapstructure:"DEFAULT_KOMI"`
	GameTTLHours     int     `mapstructure:"GAME_TTL_HOURS"`
}

var defaults = map[string]any{
	"SERVER_PORT":        "8080",
	"REDIS_URL":          "",
	"MONGO_URI":          "",
	"MONGO_DATABASE":     "goshapes",
	"LOCAL_CORS":         false,
	"SHAPES_PATH":        "",
	"DEFAULT_BOARD_SIZE": 19,
	"DEFAULT_KOMI":       6.5,
	"GAME_TTL_HOURS":     24,
}

// Setup читает конфиг из файла (если он есть) и переменных окружения.
// Окружение важнее файла.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		err := v.ReadInConfig()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
