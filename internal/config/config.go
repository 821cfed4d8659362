package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from yaml strings like "30m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all application configuration.
type Config struct {
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Market struct {
		Provider  string `yaml:"provider"` // "twelvedata" or "mock"
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		Benchmark string `yaml:"benchmark"` // default compare symbol
	} `yaml:"market"`
	Journal struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"journal"`
	Verify struct {
		Interval     Duration `yaml:"interval"`
		Dwell        Duration `yaml:"dwell"`
		FetchTimeout Duration `yaml:"fetch_timeout"`
	} `yaml:"verify"`
	Levels struct {
		BuyLadder  []float64 `yaml:"buy_ladder"`
		SellLadder []float64 `yaml:"sell_ladder"`
	} `yaml:"levels"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; env and defaults
// carry a bare deployment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("TWELVE_DATA_API_KEY"); v != "" {
		cfg.Market.APIKey = v
	}
	if v := os.Getenv("MARKET_PROVIDER"); v != "" {
		cfg.Market.Provider = v
	}
	if v := os.Getenv("MARKET_BENCHMARK"); v != "" {
		cfg.Market.Benchmark = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Journal.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	for env, dst := range map[string]*Duration{
		"VERIFY_INTERVAL":      &cfg.Verify.Interval,
		"VERIFY_DWELL":         &cfg.Verify.Dwell,
		"VERIFY_FETCH_TIMEOUT": &cfg.Verify.FetchTimeout,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", env, v, err)
		}
		*dst = Duration(d)
	}

	// Defaults
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Market.Provider == "" {
		if cfg.Market.APIKey != "" {
			cfg.Market.Provider = "twelvedata"
		} else {
			cfg.Market.Provider = "mock"
		}
	}
	if cfg.Market.Benchmark == "" {
		cfg.Market.Benchmark = "SPX"
	}
	if cfg.Journal.SQLitePath == "" {
		cfg.Journal.SQLitePath = "data/signalpilot.db"
	}
	if cfg.Verify.Interval == 0 {
		cfg.Verify.Interval = Duration(30 * time.Minute)
	}
	if cfg.Verify.Dwell == 0 {
		cfg.Verify.Dwell = Duration(15 * time.Minute)
	}
	if cfg.Verify.FetchTimeout == 0 {
		cfg.Verify.FetchTimeout = Duration(10 * time.Second)
	}
	if len(cfg.Levels.BuyLadder) == 0 {
		cfg.Levels.BuyLadder = []float64{1.0, 1.5, 2.0}
	}
	if len(cfg.Levels.SellLadder) == 0 {
		cfg.Levels.SellLadder = []float64{1.0, 1.5, 2.5}
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Market.Provider != "twelvedata" && c.Market.Provider != "mock" {
		return fmt.Errorf("market.provider must be twelvedata or mock, got %q", c.Market.Provider)
	}
	if c.Market.Provider == "twelvedata" && c.Market.APIKey == "" {
		return fmt.Errorf("market.api_key is required for the twelvedata provider")
	}
	for _, ladder := range [][]float64{c.Levels.BuyLadder, c.Levels.SellLadder} {
		if len(ladder) != 3 {
			return fmt.Errorf("levels ladders must have exactly 3 multipliers")
		}
		if !(ladder[0] > 0 && ladder[0] < ladder[1] && ladder[1] < ladder[2]) {
			return fmt.Errorf("levels ladder %v must be positive and ascending", ladder)
		}
	}
	return nil
}
