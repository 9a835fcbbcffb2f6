package buildconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestModeFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		expected   Mode
		recognised bool
	}{
		{
			name:       "development marker",
			env:        map[string]string{"NODE_ENV": "development"},
			expected:   ModeDevelopment,
			recognised: true,
		},
		{
			name:       "production",
			env:        map[string]string{"NODE_ENV": "production"},
			expected:   ModeProduction,
			recognised: true,
		},
		{
			name:       "unset falls back to production",
			env:        map[string]string{},
			expected:   ModeProduction,
			recognised: true,
		},
		{
			name:       "unrecognised value falls back to production",
			env:        map[string]string{"NODE_ENV": "staging"},
			expected:   ModeProduction,
			recognised: false,
		},
		{
			name:       "marker is case sensitive",
			env:        map[string]string{"NODE_ENV": "Development"},
			expected:   ModeProduction,
			recognised: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, ok := ModeFromEnvStrict(envLookup(tt.env))
			require.Equal(t, tt.expected, mode)
			require.Equal(t, tt.recognised, ok)
			require.Equal(t, tt.expected, ModeFromEnv(envLookup(tt.env)))
		})
	}
}

func TestModeFromEnv_Idempotent(t *testing.T) {
	lookup := envLookup(map[string]string{"NODE_ENV": "development"})

	first := ModeFromEnv(lookup)
	for range 10 {
		require.Equal(t, first, ModeFromEnv(lookup))
	}
}

func TestMode_IsProdIsNegation(t *testing.T) {
	for _, m := range []Mode{ModeDevelopment, ModeProduction, Mode("other")} {
		require.Equal(t, !m.IsDev(), m.IsProd(), m)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("development")
	require.NoError(t, err)
	require.Equal(t, ModeDevelopment, m)

	m, err = ParseMode("production")
	require.NoError(t, err)
	require.Equal(t, ModeProduction, m)

	_, err = ParseMode("test")
	require.ErrorIs(t, err, ErrUnknownMode)
}
