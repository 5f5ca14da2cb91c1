// Test Type: Unit Test
// Description: Tests for the logging package - logger setup and component loggers

package logging_test

import (
	"testing"

	"github.com/confshare/confshare/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLoggerLevels(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	tests := []struct {
		name      string
		verbosity int
		expected  zerolog.Level
	}{
		{name: "default_warn", verbosity: 0, expected: zerolog.WarnLevel},
		{name: "v_info", verbosity: 1, expected: zerolog.InfoLevel},
		{name: "vv_debug", verbosity: 2, expected: zerolog.DebugLevel},
		{name: "vvv_trace", verbosity: 3, expected: zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logging.SetupLogger(tt.verbosity)
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func TestGetLogger(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	logging.SetupLogger(0)

	logger := logging.GetLogger("sanitize")
	// Logging through the component logger must not panic.
	logger.Debug().Msg("component logger works")
}
