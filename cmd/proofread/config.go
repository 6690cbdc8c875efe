package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/proofread"
)

// Run modes.
const (
	modeTelegram = "telegram"
	modeServe    = "serve"
	modeConsole  = "console"
)

// duration decodes TOML strings such as "1s" or "750ms".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type telegramConfig struct {
	Token       string   `toml:"token"`
	RateLimit   float64  `toml:"rate_limit"`
	Burst       int      `toml:"burst"`
	PollTimeout duration `toml:"poll_timeout"`
}

type storeConfig struct {
	// Path of the SQLite database. Ignored when DatabaseURL is set.
	Path        string `toml:"path"`
	DatabaseURL string `toml:"database_url"`
}

// config is the resolved configuration. Precedence: flags, environment,
// config file, defaults.
type config struct {
	Mode           string         `toml:"mode"`
	Provider       string         `toml:"provider"`
	Model          string         `toml:"model"`
	Addr           string         `toml:"addr"`
	LogLevel       string         `toml:"log_level"`
	Language       string         `toml:"language"`
	LocalesDir     string         `toml:"locales_dir"`
	Interval       duration       `toml:"interval"`
	Deadline       duration       `toml:"deadline"`
	MaxWords       int            `toml:"max_words"`
	AllowAnyOrigin bool           `toml:"allow_any_origin"`
	Telegram       telegramConfig `toml:"telegram"`
	Store          storeConfig    `toml:"store"`
}

func defaultConfig() config {
	return config{
		Mode:     modeTelegram,
		Addr:     ":8080",
		LogLevel: "info",
		Language: string(proofread.DefaultLanguage),
		Interval: duration{proofread.DefaultInterval},
		Deadline: duration{proofread.DefaultDeadline},
		MaxWords: proofread.DefaultMaxWords,
		Telegram: telegramConfig{
			RateLimit:   25,
			Burst:       5,
			PollTimeout: duration{30 * time.Second},
		},
		Store: storeConfig{Path: "proofread.db"},
	}
}

// overrides are the command-line flags that take precedence over the file
// and the environment. Empty values are ignored.
type overrides struct {
	Mode     string
	Provider string
	Model    string
	Addr     string
	LogLevel string
}

// loadConfig layers the config file at path (when set), the environment
// read through getenv, and flags over the defaults, then validates.
func loadConfig(path string, getenv func(string) string, flags overrides) (config, error) {
	cfg := defaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return config{}, fmt.Errorf("config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return config{}, fmt.Errorf("config: unknown keys: %s", strings.Join(keys, ", "))
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return config{}, err
	}
	cfg.applyFlags(flags)
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c *config) applyFlags(f overrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Mode, f.Mode)
	set(&c.Provider, f.Provider)
	set(&c.Model, f.Model)
	set(&c.Addr, f.Addr)
	set(&c.LogLevel, f.LogLevel)
}

func (c *config) applyEnv(getenv func(string) string) error {
	if v := getenv("PROOFREAD_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: PROOFREAD_INTERVAL: %w", err)
		}
		c.Interval.Duration = d
	}
	if v := getenv("PROOFREAD_DEADLINE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: PROOFREAD_DEADLINE: %w", err)
		}
		c.Deadline.Duration = d
	}
	if v := getenv("PROOFREAD_MAX_WORDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PROOFREAD_MAX_WORDS: %w", err)
		}
		c.MaxWords = n
	}
	if v := getenv("PROOFREAD_DATABASE_URL"); v != "" {
		c.Store.DatabaseURL = v
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	return nil
}

func (c config) validate() error {
	var errs []error
	switch c.Mode {
	case modeTelegram, modeServe, modeConsole:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q: must be %q, %q or %q", c.Mode, modeTelegram, modeServe, modeConsole))
	}
	if c.Interval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval.Duration))
	}
	if c.Deadline.Duration < 0 {
		errs = append(errs, fmt.Errorf("deadline must not be negative, got %s", c.Deadline.Duration))
	}
	if c.MaxWords < 0 {
		errs = append(errs, fmt.Errorf("max_words must not be negative, got %d", c.MaxWords))
	}
	if c.Mode == modeTelegram && c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram mode needs a bot token (TELEGRAM_BOT_TOKEN or [telegram] token)"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
