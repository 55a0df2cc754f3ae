package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("PENNYWISE_TEST_DIR", "/tmp/pw")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/data/p.db", filepath.Join(home, "data", "p.db")},
		{"$PENNYWISE_TEST_DIR/p.db", "/tmp/pw/p.db"},
		{"/abs/path.db", "/abs/path.db"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	s, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".local/share/pennywise/pennywise.db"), s.DatabasePath)
	assert.Equal(t, slog.LevelInfo, s.LogLevel)
	assert.Equal(t, "console", s.LogFormat)
	assert.Empty(t, s.LogFile)
	assert.Equal(t, "acc_cash", s.DefaultAccount)
	assert.Equal(t, "USD", s.DefaultCurrency)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set(KeyDatabasePath, "/data/money.db")
	v.Set(KeyLogLevel, "debug")
	v.Set(KeyLogFormat, "JSON")
	v.Set(KeyDefaultAccount, "acc_visa")
	v.Set(KeyDefaultCurrency, "eur")

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/data/money.db", s.DatabasePath)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, "acc_visa", s.DefaultAccount)
	assert.Equal(t, "EUR", s.DefaultCurrency)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"empty database path", KeyDatabasePath, "  "},
		{"unknown level", KeyLogLevel, "chatty"},
		{"unknown format", KeyLogFormat, "xml"},
		{"empty account", KeyDefaultAccount, ""},
		{"long currency", KeyDefaultCurrency, "EURO"},
		{"numeric currency", KeyDefaultCurrency, "978"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}
