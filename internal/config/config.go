package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GPXPACK_SERVER_ADDR.
const EnvPrefix = "GPXPACK"

type Config struct {
	ServerAddr   string        `mapstructure:"server_addr"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
	ProxyHeader  string        `mapstructure:"proxy_header"` // e.g. X-Forwarded-For behind a proxy
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("rate_limit", 2.0) // requests per second
	v.SetDefault("rate_burst", 10) // per client
	v.SetDefault("proxy_header", "")
	v.SetDefault("read_timeout", 30*time.Second)
	v.SetDefault("write_timeout", 30*time.Second)
}

// Load reads defaults, then the optional config file at path, then
// GPXPACK_* environment variables.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration with no file and no environment.
func Default() Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}
