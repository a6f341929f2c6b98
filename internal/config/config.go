package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix: ADZAN_ADDR, ADZAN_DB_PATH, ADZAN_MQTT_BROKER, ...
const EnvPrefix = "ADZAN"

type Config struct {
	Addr     string         `mapstructure:"addr"`
	DBPath   string         `mapstructure:"db_path"`
	LogLevel string         `mapstructure:"log_level"`
	Timezone string         `mapstructure:"timezone"`
	Poller   PollerConfig   `mapstructure:"poller"`
	Aladhan  AladhanConfig  `mapstructure:"aladhan"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Client   ClientConfig   `mapstructure:"client"`
}

type PollerConfig struct {
	// Interval de polling, 1s à 60s.
	Interval      time.Duration `mapstructure:"interval"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

type AladhanConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Method   int           `mapstructure:"method"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type GeocoderConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Language string `mapstructure:"language"`
}

type CacheConfig struct {
	// Backend: sqlite ou redis.
	Backend string `mapstructure:"backend"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

// ClientConfig sert au CLI adzan.
type ClientConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("db_path", "adzan.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("timezone", "")
	v.SetDefault("poller.interval", "1s")
	v.SetDefault("poller.check_interval", "15m")
	v.SetDefault("aladhan.endpoint", "https://api.aladhan.com/v1")
	v.SetDefault("aladhan.method", 11)
	v.SetDefault("aladhan.timeout", "5s")
	v.SetDefault("geocoder.endpoint", "https://api.bigdatacloud.net/data/reverse-geocode-client")
	v.SetDefault("geocoder.language", "id")
	v.SetDefault("cache.backend", "sqlite")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "adzan")
	v.SetDefault("redis.ttl", "48h")
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "adzan-server")
	v.SetDefault("mqtt.topic_prefix", "adzan")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("client.base_url", "http://127.0.0.1:8080")
}

// Default renvoie la configuration sans fichier ni environnement.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Load lit .env (s'il existe), puis configPath ou adzan.yaml, puis les variables ADZAN_*.
// Un fichier de config absent n'est pas une erreur ; configPath explicite et illisible l'est.
func Load(configPath string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("adzan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/adzan")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Poller.Interval < time.Second || c.Poller.Interval > time.Minute {
		return fmt.Errorf("poller.interval must be between 1s and 1m, got %s", c.Poller.Interval)
	}
	switch c.Cache.Backend {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("cache.backend must be sqlite or redis, got %q", c.Cache.Backend)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("mqtt.broker required when mqtt.enabled")
	}
	return nil
}
