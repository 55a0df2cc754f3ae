package config

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabasePath    = "database.path"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyLogFile         = "logging.file"
	KeyDefaultAccount  = "defaults.account"
	KeyDefaultCurrency = "defaults.currency"
)

// DefaultDatabasePath is used when database.path is not configured.
const DefaultDatabasePath = "$HOME/.local/share/pennywise/pennywise.db"

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Settings is the resolved application configuration.
type Settings struct {
	DatabasePath    string
	LogFormat       string
	LogFile         string
	DefaultAccount  string
	DefaultCurrency string
	LogLevel        slog.Level
}

// SetDefaults registers default values for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyDefaultAccount, "acc_cash")
	v.SetDefault(KeyDefaultCurrency, "USD")
}

// Load reads and validates settings from v. Paths are expanded and the
// currency code is upper-cased.
func Load(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)

	level, err := common.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}

	s := &Settings{
		DatabasePath:    ExpandPath(strings.TrimSpace(v.GetString(KeyDatabasePath))),
		LogLevel:        level,
		LogFormat:       strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		LogFile:         ExpandPath(strings.TrimSpace(v.GetString(KeyLogFile))),
		DefaultAccount:  strings.TrimSpace(v.GetString(KeyDefaultAccount)),
		DefaultCurrency: strings.ToUpper(strings.TrimSpace(v.GetString(KeyDefaultCurrency))),
	}

	if s.DatabasePath == "" {
		return nil, fmt.Errorf("%w: %s is empty", common.ErrInvalidConfig, KeyDatabasePath)
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", common.ErrInvalidConfig, s.LogFormat)
	}
	if s.DefaultAccount == "" {
		return nil, fmt.Errorf("%w: %s is empty", common.ErrInvalidConfig, KeyDefaultAccount)
	}
	if !currencyCode.MatchString(s.DefaultCurrency) {
		return nil, fmt.Errorf("%w: %s must be a three-letter code, got %q",
			common.ErrInvalidConfig, KeyDefaultCurrency, s.DefaultCurrency)
	}
	return s, nil
}
