package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=3005"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	AuthJwtSecret             string `env:"AUTH_JWT_SECRET,required=true"`
	AuthJwtTokenExpiresIn     string `env:"AUTH_JWT_TOKEN_EXPIRES_IN,default=24hr"`
	AuthRefreshSecret         string `env:"AUTH_REFRESH_SECRET,required=true"`
	AuthRefreshTokenExpiresIn string `env:"AUTH_REFRESH_TOKEN_EXPIRES_IN,default=365d"`

	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/badger"`

	RoomCapacity    int           `env:"ROOM_CAPACITY,default=100"`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE,default=65536"`
	PingInterval    time.Duration `env:"PING_INTERVAL,default=30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	StatsInterval   time.Duration `env:"STATS_INTERVAL,default=1m"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	CensoredWords   string `env:"CENSORED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
	AllowedOrigins  string `env:"ALLOWED_ORIGINS"`
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Words returns the censored dictionary, empty when moderation is off.
func (c Config) Words() []string {
	return SplitList(c.CensoredWords)
}

func (c Config) Origins() []string {
	return SplitList(c.AllowedOrigins)
}

// SplitList turns "a, b,,c" into [a b c].
func SplitList(raw string) []string {
	return lo.Compact(lo.Map(strings.Split(raw, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
