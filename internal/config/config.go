package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Room     RoomConfig     `mapstructure:"room"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // hours
}

type RoomConfig struct {
	MaxSeats        int `mapstructure:"maxSeats"`        // hard cap on players per room
	DefaultHandSize int `mapstructure:"defaultHandSize"` // used when a room doesn't set one
	PresenceTTLSec  int `mapstructure:"presenceTtlSec"`  // heartbeat expiry
	SweepIntervalS  int `mapstructure:"sweepIntervalS"`  // offline sweep cadence
}

var GlobalConfig *Config

func LoadConfig(path string) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	applyDefaults(&cfg)
	GlobalConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Room.MaxSeats <= 0 {
		cfg.Room.MaxSeats = 8
	}
	if cfg.Room.DefaultHandSize <= 0 {
		cfg.Room.DefaultHandSize = 7
	}
	if cfg.Room.PresenceTTLSec <= 0 {
		cfg.Room.PresenceTTLSec = 60
	}
	if cfg.Room.SweepIntervalS <= 0 {
		cfg.Room.SweepIntervalS = 30
	}
}
