package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zerolog.Level
	}{
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{9, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFor(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	defer func() { log.Logger = orig }()

	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)

	logger := GetLogger("matcher")
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"matcher"`)
	assert.Contains(t, buf.String(), "hello")
}

func TestSetupLoggerWritesFile(t *testing.T) {
	orig := log.Logger
	origLevel := zerolog.GlobalLevel()
	defer func() {
		log.Logger = orig
		zerolog.SetGlobalLevel(origLevel)
	}()

	path := filepath.Join(t.TempDir(), "test.log")
	SetupLogger(1, path)

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	log.Info().Msg("written")

	assert.FileExists(t, path)
}

func TestDefaultLogFile(t *testing.T) {
	assert.Equal(t, "chat-notify.log", filepath.Base(DefaultLogFile()))
}
