package logger

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"message":"shown"`)
}

func TestNew_Dev(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true)

	log.Debug().Msg("details")
	require.Contains(t, buf.String(), "details")
	require.NotContains(t, buf.String(), `"message"`)
}

func TestWithBuild(t *testing.T) {
	var buf bytes.Buffer
	log, id := WithBuild(New(&buf, false))

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	log.Info().Msg("building")
	require.Contains(t, buf.String(), `"build_id":"`+id+`"`)
}
