package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. TEMPO_COUNTDOWN_TICK_MS.
const EnvPrefix = "TEMPO"

const (
	keyDB               = "db"
	keyCountdownTickMs  = "countdown_tick_ms"
	keyStopwatchTickMs  = "stopwatch_tick_ms"
	keyDefaultCountdown = "default_countdown"
	keyLogLevel         = "log_level"
	keyLogUseCases      = "log_use_cases"
	keyBell             = "bell"
	keyHistory          = "history"
)

// Config holds runtime settings for the tempo binary.
type Config struct {
	DBPath           string
	CountdownTick    time.Duration
	StopwatchTick    time.Duration
	DefaultCountdown time.Duration
	LogLevel         string
	LogUseCases      bool
	Bell             bool
	History          bool
}

// DefaultConfig returns a Config with sensible defaults.
// History is recorded to ~/.tempo/tempo.db.
func DefaultConfig() Config {
	return Config{
		DBPath:           filepath.Join(homeDir(), ".tempo", "tempo.db"),
		CountdownTick:    time.Second,
		StopwatchTick:    100 * time.Millisecond,
		DefaultCountdown: time.Minute,
		LogLevel:         "warn",
		LogUseCases:      false,
		Bell:             true,
		History:          true,
	}
}

// DefaultConfigPath is where LoadConfig looks when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".tempo", "config.yaml")
}

// LoadConfig reads configuration from an optional YAML file and TEMPO_*
// environment variables, with the environment taking precedence. An explicit
// path must exist; the default path is optional. Invalid values fall back to
// defaults.
func LoadConfig(path string) (Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(keyDB, def.DBPath)
	v.SetDefault(keyCountdownTickMs, def.CountdownTick.Milliseconds())
	v.SetDefault(keyStopwatchTickMs, def.StopwatchTick.Milliseconds())
	v.SetDefault(keyDefaultCountdown, def.DefaultCountdown.String())
	v.SetDefault(keyLogLevel, def.LogLevel)
	v.SetDefault(keyLogUseCases, def.LogUseCases)
	v.SetDefault(keyBell, def.Bell)
	v.SetDefault(keyHistory, def.History)

	if path == "" {
		if _, err := os.Stat(DefaultConfigPath()); err == nil {
			path = DefaultConfigPath()
		}
	}
	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return def, fmt.Errorf("expanding config path %q: %w", path, err)
		}
		v.SetConfigFile(expanded)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return def, fmt.Errorf("reading config %s: %w", expanded, err)
		}
	}

	cfg := def
	if p := strings.TrimSpace(v.GetString(keyDB)); p != "" {
		if expanded, err := homedir.Expand(p); err == nil {
			cfg.DBPath = expanded
		}
	}
	cfg.CountdownTick = positiveMillis(v.GetString(keyCountdownTickMs), def.CountdownTick)
	cfg.StopwatchTick = positiveMillis(v.GetString(keyStopwatchTickMs), def.StopwatchTick)
	if d, err := ParseDuration(v.GetString(keyDefaultCountdown)); err == nil {
		cfg.DefaultCountdown = d
	}
	if lvl := strings.ToLower(strings.TrimSpace(v.GetString(keyLogLevel))); validLevel(lvl) {
		cfg.LogLevel = lvl
	}
	cfg.LogUseCases = boolOr(v.GetString(keyLogUseCases), def.LogUseCases)
	cfg.Bell = boolOr(v.GetString(keyBell), def.Bell)
	cfg.History = boolOr(v.GetString(keyHistory), def.History)

	return cfg, nil
}

// ErrBadDuration is returned by ParseDuration for input it cannot read or
// for non-positive durations.
var ErrBadDuration = errors.New("invalid duration")

// maxSeconds is the longest whole-second duration time.Duration can hold.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// ParseDuration accepts plain seconds ("90"), Go durations ("90s", "1m30s")
// and clock notation ("01:30", "1:02:03"). The result must be positive.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty input: %w", ErrBadDuration)
	}

	var d time.Duration
	switch {
	case strings.Contains(s, ":"):
		parsed, err := parseClock(s)
		if err != nil {
			return 0, err
		}
		d = parsed
	default:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			if n > maxSeconds {
				return 0, fmt.Errorf("%q is too long: %w", s, ErrBadDuration)
			}
			d = time.Duration(n) * time.Second
			break
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", s, ErrBadDuration)
		}
		d = parsed
	}

	if d <= 0 {
		return 0, fmt.Errorf("%q must be positive: %w", s, ErrBadDuration)
	}
	return d, nil
}

func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%q has too many fields: %w", s, ErrBadDuration)
	}
	var secs int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%q: %w", s, ErrBadDuration)
		}
		if i > 0 && n > 59 {
			return 0, fmt.Errorf("%q: field %d exceeds 59: %w", s, i+1, ErrBadDuration)
		}
		if secs > (maxSeconds-n)/60 {
			return 0, fmt.Errorf("%q is too long: %w", s, ErrBadDuration)
		}
		secs = secs*60 + n
	}
	return time.Duration(secs) * time.Second, nil
}

func positiveMillis(s string, fallback time.Duration) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Millisecond
}

func boolOr(s string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return b
}

func validLevel(lvl string) bool {
	switch lvl {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func homeDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return "."
	}
	return home
}
