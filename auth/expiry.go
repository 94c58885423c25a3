package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseExpiry reads token lifetimes such as "24hr", "365d", "3600" (seconds) or any time.ParseDuration value.
func ParseExpiry(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return 0, fmt.Errorf("empty token lifetime")
	case strings.HasSuffix(value, "hr"):
		return scaled(strings.TrimSuffix(value, "hr"), time.Hour, value)
	case strings.HasSuffix(value, "d"):
		return scaled(strings.TrimSuffix(value, "d"), 24*time.Hour, value)
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return positive(time.Duration(seconds)*time.Second, value)
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid token lifetime %q: %w", value, err)
	}
	return positive(d, value)
}

func scaled(amount string, unit time.Duration, raw string) (time.Duration, error) {
	n, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token lifetime %q: %w", raw, err)
	}
	return positive(time.Duration(n)*unit, raw)
}

func positive(d time.Duration, raw string) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("token lifetime %q must be positive", raw)
	}
	return d, nil
}
