package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	defaultConfigFile = "configs/config.yaml"
)

var ErrMissingKey = errors.New("required configuration key is not set")

// Config is the whole bot configuration. Every key can be overridden by the
// upper-cased env variable with dots replaced by underscores (ma_short -> MA_SHORT,
// database.dsn -> DATABASE_DSN).
type Config struct {
	// Стратегия
	Strategy               string             `mapstructure:"strategy" yaml:"strategy"`
	MAShort                int                `mapstructure:"ma_short" yaml:"ma_short"`
	MALong                 int                `mapstructure:"ma_long" yaml:"ma_long"`
	MABorderThresholdRatio float64            `mapstructure:"ma_border_threshold_ratio" yaml:"ma_border_threshold_ratio"`
	MACrossRatio           float64            `mapstructure:"ma_cross_ratio" yaml:"ma_cross_ratio"`
	SpreadThreshold        float64            `mapstructure:"spread_threshold" yaml:"spread_threshold"`
	SellRatio              float64            `mapstructure:"sell_ratio" yaml:"sell_ratio"`
	MinSellAmount          float64            `mapstructure:"min_sell_amount" yaml:"min_sell_amount"`
	MinSellAmounts         map[string]float64 `mapstructure:"min_sell_amounts" yaml:"min_sell_amounts"`

	// Распределение капитала
	BuyThreshold1   float64 `mapstructure:"buy_threshold_1" yaml:"buy_threshold_1"`
	BuyThreshold2   float64 `mapstructure:"buy_threshold_2" yaml:"buy_threshold_2"`
	BuyThreshold3   float64 `mapstructure:"buy_threshold_3" yaml:"buy_threshold_3"`
	BuyRatio1       float64 `mapstructure:"buy_ratio_1" yaml:"buy_ratio_1"`
	BuyRatio2       float64 `mapstructure:"buy_ratio_2" yaml:"buy_ratio_2"`
	BuyRatio3       float64 `mapstructure:"buy_ratio_3" yaml:"buy_ratio_3"`
	BuyRatioDefault float64 `mapstructure:"buy_ratio_default" yaml:"buy_ratio_default"`

	APISleepMS int `mapstructure:"api_sleep_ms" yaml:"api_sleep_ms"`

	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Coincheck CoincheckConfig `mapstructure:"coincheck" yaml:"coincheck"`
	Slack     SlackConfig     `mapstructure:"slack" yaml:"slack"`
	Telegram  TelegramConfig  `mapstructure:"telegram" yaml:"telegram"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
	Schedule  ScheduleConfig  `mapstructure:"schedule" yaml:"schedule"`
	Health    HealthConfig    `mapstructure:"health" yaml:"health"`
	Retention RetentionConfig `mapstructure:"ticker_retention" yaml:"ticker_retention"`
	Optimizer OptimizerConfig `mapstructure:"optimizer" yaml:"optimizer"`
}

type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
	MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns"`
}

type CoincheckConfig struct {
	BaseURL         string `mapstructure:"base_url" yaml:"base_url"`
	AccessKey       string `mapstructure:"access_key" yaml:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
}

type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token" yaml:"token"`
	ChatID int64  `mapstructure:"chat_id" yaml:"chat_id"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

type TracingConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Host    string `mapstructure:"host" yaml:"host"`
	Port    int    `mapstructure:"port" yaml:"port"`
}

type ScheduleConfig struct {
	TickerCron   string `mapstructure:"ticker_cron" yaml:"ticker_cron"`
	OrderCron    string `mapstructure:"order_cron" yaml:"order_cron"`
	OptimizeCron string `mapstructure:"optimize_cron" yaml:"optimize_cron"`
}

type HealthConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type RetentionConfig struct {
	MaxRows    int     `mapstructure:"max_rows" yaml:"max_rows"`
	PurgeRatio float64 `mapstructure:"purge_ratio" yaml:"purge_ratio"`
}

type OptimizerConfig struct {
	OffsetMinutes int `mapstructure:"offset_minutes" yaml:"offset_minutes"`
	ShortMin      int `mapstructure:"short_min" yaml:"short_min"`
	ShortMax      int `mapstructure:"short_max" yaml:"short_max"`
	LongGap       int `mapstructure:"long_gap" yaml:"long_gap"`
	LongMax       int `mapstructure:"long_max" yaml:"long_max"`
}

// requiredKeys have no sane default: trading without them is a configuration error.
var requiredKeys = []string{
	"sell_ratio",
	"buy_threshold_1", "buy_threshold_2", "buy_threshold_3",
	"buy_ratio_1", "buy_ratio_2", "buy_ratio_3",
	"buy_ratio_default",
}

var defaults = map[string]any{
	"strategy":                  "optimizer",
	"ma_short":                  5,
	"ma_long":                   20,
	"ma_border_threshold_ratio": 60.0,
	"ma_cross_ratio":            1.0,
	"spread_threshold":          1.0,
	"min_sell_amount":           0.001,
	"min_sell_amounts":          map[string]float64{},
	"api_sleep_ms":              500,

	"database.dsn":                "",
	"database.max_conns":          4,
	"coincheck.base_url":          "https://coincheck.com",
	"coincheck.access_key":        "",
	"coincheck.secret_access_key": "",
	"slack.webhook_url":           "",
	"telegram.token":              "",
	"telegram.chat_id":            0,
	"log.level":                   "info",
	"log.development":             false,
	"tracing.enabled":             false,
	"tracing.host":                "localhost",
	"tracing.port":                6831,
	"schedule.ticker_cron":        "0 */2 * * * *",
	"schedule.order_cron":         "0 */15 * * * *",
	"schedule.optimize_cron":      "0 0 3 * * *",
	"health.addr":                 ":8080",

	"ticker_retention.max_rows":    1000,
	"ticker_retention.purge_ratio": 0.1,
	"optimizer.offset_minutes":     15,
	"optimizer.short_min":          5,
	"optimizer.short_max":          10,
	"optimizer.long_gap":           5,
	"optimizer.long_max":           30,
}

// Load reads .env (if any), the yaml config file (if any) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv(configFilePathENV)
	if path == "" {
		path = defaultConfigFile
	}
	return LoadFile(path)
}

// LoadFile is Load without .env handling. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	for _, k := range requiredKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", k, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(filepath.Clean(path))
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	var missing []string
	for _, k := range requiredKeys {
		if !v.IsSet(k) {
			missing = append(missing, envName(k))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("config: %w: %s", ErrMissingKey, strings.Join(missing, ", "))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants viper cannot express.
func (c *Config) Validate() error {
	switch c.Strategy {
	case "optimizer", "basic", "ratio":
	default:
		return fmt.Errorf("config: unknown STRATEGY %q", c.Strategy)
	}
	if c.Strategy != "optimizer" && c.MAShort >= c.MALong {
		return fmt.Errorf("config: MA_SHORT must be < MA_LONG")
	}
	if c.SellRatio <= 0 || c.SellRatio > 1 {
		return fmt.Errorf("config: SELL_RATIO must be in (0, 1], got %v", c.SellRatio)
	}
	for i, r := range []float64{c.BuyRatio1, c.BuyRatio2, c.BuyRatio3, c.BuyRatioDefault} {
		if r < 0 || r > 1 {
			return fmt.Errorf("config: buy ratio #%d must be in [0, 1], got %v", i+1, r)
		}
	}
	if c.APISleepMS < 0 {
		return fmt.Errorf("config: API_SLEEP_MS must not be negative")
	}
	return nil
}

// MinSellAmountFor returns the per-currency minimum or the global one.
func (c *Config) MinSellAmountFor(currency string) float64 {
	if v, ok := c.MinSellAmounts[strings.ToLower(currency)]; ok && v > 0 {
		return v
	}
	return c.MinSellAmount
}

func (c *Config) APISleep() time.Duration {
	return time.Duration(c.APISleepMS) * time.Millisecond
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
