package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "ROVER"

// Transport kinds.
const (
	TransportLog  = "log"
	TransportMQTT = "mqtt"
)

// Config is the fully resolved service configuration.
type Config struct {
	Port      string          `mapstructure:"port"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Transport TransportConfig `mapstructure:"transport"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	WS        WSConfig        `mapstructure:"ws"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// TelemetryConfig tunes the simulated sensor stream.
type TelemetryConfig struct {
	SensorTick  time.Duration `mapstructure:"sensor_tick"`
	BatteryTick time.Duration `mapstructure:"battery_tick"`
	LogTick     time.Duration `mapstructure:"log_tick"`
	LogCapacity int           `mapstructure:"log_capacity"`
	Seed        int64         `mapstructure:"seed"` // 0 seeds from the wall clock
}

// TransportConfig selects how commands leave the service.
type TransportConfig struct {
	Kind string `mapstructure:"kind"` // log | mqtt
}

// MQTTConfig holds broker settings.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Topic    string `mapstructure:"topic"`
	QoS      int    `mapstructure:"qos"`
}

// AnalysisConfig points at the image classification model.
type AnalysisConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// WSConfig bounds the websocket push interval.
type WSConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

var errUnknownTransport = errors.New("unknown transport kind")

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)

	v.SetDefault("telemetry.sensor_tick", "2s")
	v.SetDefault("telemetry.battery_tick", "60s")
	v.SetDefault("telemetry.log_tick", "3s")
	v.SetDefault("telemetry.log_capacity", 1000)
	v.SetDefault("telemetry.seed", 0)

	v.SetDefault("transport.kind", TransportLog)

	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic", "rover")
	v.SetDefault("mqtt.qos", 1)

	v.SetDefault("analysis.endpoint", "https://api-inference.huggingface.co/models/linkanjarad/mobilenet_v2_1.0_224-plant-disease")
	v.SetDefault("analysis.api_key", "")
	v.SetDefault("analysis.timeout", "30s")

	v.SetDefault("ws.interval", "1s")
}

// Load resolves configuration from defaults, an optional config.yml in
// configDir, a .env file and ROVER_* environment variables, in increasing
// precedence.
func Load(configDir string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Transport.Kind = strings.ToLower(strings.TrimSpace(c.Transport.Kind))
	switch c.Transport.Kind {
	case TransportLog, TransportMQTT:
	default:
		return fmt.Errorf("%w: %q", errUnknownTransport, c.Transport.Kind)
	}
	if c.Transport.Kind == TransportMQTT && c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required for the mqtt transport")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	return nil
}
