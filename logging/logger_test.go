package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(msg string) *logrus.Entry {
	logger := logrus.New()
	entry := logger.WithField("component", "threadstore")
	entry.Time = time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	entry.Level = logrus.WarnLevel
	entry.Message = msg
	return entry
}

func TestTextFormatter(t *testing.T) {
	f := &TextFormatter{NoColor: true}
	out, err := f.Format(newTestEntry("flush failed"))
	require.NoError(t, err)

	line := string(out)
	assert.Contains(t, line, "2026-03-01 10:30:00")
	assert.Contains(t, line, "[WARN]")
	assert.Contains(t, line, "[threadstore]")
	assert.Contains(t, line, "flush failed")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestTextFormatterSimplePreset(t *testing.T) {
	f := &TextFormatter{
		Config:  FormatConfig{DisableTimestamp: true, DisableComponent: true},
		NoColor: true,
	}
	out, err := f.Format(newTestEntry("flush failed"))
	require.NoError(t, err)

	line := string(out)
	assert.NotContains(t, line, "2026-03-01")
	assert.NotContains(t, line, "threadstore")
	assert.Equal(t, "[WARN] flush failed\n", line)
}

func TestTextFormatterExtraFields(t *testing.T) {
	f := &TextFormatter{NoColor: true}
	entry := newTestEntry("write failed")
	entry.Data["target"] = "a.py"

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "target=a.py")
}

func TestNewLoggerIsSingletonPerComponent(t *testing.T) {
	a := NewLogger("test-component")
	b := NewLogger("test-component")
	assert.Same(t, a, b)

	var buf bytes.Buffer
	a.Logger.SetOutput(&buf)
	a.Info("hello")
	assert.Contains(t, buf.String(), "hello")
}
