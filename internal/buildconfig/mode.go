package buildconfig

import (
	"errors"
	"fmt"
)

// ModeEnvVar is the environment variable consulted by ModeFromEnv.
const ModeEnvVar = "NODE_ENV"

// ErrUnknownMode is returned by ParseMode for anything other than development or production.
var ErrUnknownMode = errors.New("unknown build mode")

// Mode selects between development and production builds. Exactly one mode is
// active for the lifetime of a Config.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

func (m Mode) IsDev() bool {
	return m == ModeDevelopment
}

func (m Mode) IsProd() bool {
	return !m.IsDev()
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode is the strict form used for explicit flags.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDevelopment, ModeProduction:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// ModeFromEnv resolves the mode from NODE_ENV using lookup (typically os.LookupEnv).
// Only the exact value "development" selects development; any other value,
// including an unset variable, selects production.
func ModeFromEnv(lookup func(string) (string, bool)) Mode {
	mode, _ := ModeFromEnvStrict(lookup)
	return mode
}

// ModeFromEnvStrict behaves like ModeFromEnv and also reports whether the value
// was one of the recognised modes. An unset variable counts as recognised.
func ModeFromEnvStrict(lookup func(string) (string, bool)) (Mode, bool) {
	v, ok := lookup(ModeEnvVar)
	if !ok || v == "" {
		return ModeProduction, true
	}
	if Mode(v) == ModeDevelopment {
		return ModeDevelopment, true
	}
	return ModeProduction, Mode(v) == ModeProduction
}
