package logging_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/Jembe/jembe-sub000/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, slog.LevelInfo, true)

	logger.Debug("hidden")
	logger.Warn("orphan reference", "exec_name", "/page/x", "error", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"exec_name":"/page/x"`)
	assert.Contains(t, out, `"err":"boom"`)
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() { logging.NewNop().Error("dropped") })
}
