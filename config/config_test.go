package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Swind/service-watcher/watcher"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.Sampler.Interval)
	assert.Equal(t, 5*time.Second, cfg.Watcher.Interval)
	assert.Equal(t, 9248, cfg.Watcher.IndicatorID)
	assert.Equal(t, "lifo", cfg.Watcher.QueueOrder)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "watcher.yaml", `
sampler:
  interval: 250ms
watcher:
  interval: 2s
  queue_order: fifo
  waiting_title: "Bitte warten"
logger:
  level: debug
  encoding: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Sampler.Interval)
	assert.Equal(t, 2*time.Second, cfg.Watcher.Interval)
	assert.Equal(t, "fifo", cfg.Watcher.QueueOrder)
	assert.Equal(t, "Bitte warten", cfg.Watcher.WaitingTitle)
	assert.Equal(t, watcher.DefaultWaitingText, cfg.Watcher.WaitingText)
	assert.Equal(t, watcher.DefaultIndicatorID, cfg.Watcher.IndicatorID)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Encoding)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "watcher.toml", `
[watcher]
interval = "750ms"
indicator_id = 42
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.Watcher.Interval)
	assert.Equal(t, 42, cfg.Watcher.IndicatorID)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeFile(t, "watcher.yaml", "sampler:\n  interval: 1s\n")
	t.Setenv("SERVICEWATCHER_SAMPLER_INTERVAL", "100ms")
	t.Setenv("SERVICEWATCHER_WATCHER_QUEUE_ORDER", "fifo")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.Sampler.Interval)
	assert.Equal(t, "fifo", cfg.Watcher.QueueOrder)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Watcher, cfg.Watcher)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidQueueOrder(t *testing.T) {
	path := writeFile(t, "watcher.yaml", "watcher:\n  queue_order: random\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue_order")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Sampler.Interval = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidSampleInterval)

	cfg = Default()
	cfg.Watcher.Interval = -time.Second
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidWaitInterval)
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Sampler.Interval = 10 * time.Millisecond
	cfg.Watcher.QueueOrder = "FIFO"
	cfg.Watcher.IndicatorID = 7
	cfg.Watcher.WaitingTitle = "Title"
	cfg.Watcher.WaitingText = "Text"

	opts, err := cfg.Options()
	require.NoError(t, err)

	o := watcher.DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	assert.Equal(t, 10*time.Millisecond, o.SampleInterval)
	assert.Equal(t, 5*time.Second, o.WaitInterval)
	assert.Equal(t, watcher.FIFO, o.QueueOrder)
	assert.Equal(t, 7, o.IndicatorID)
	assert.Equal(t, "Title", o.WaitingTitle)
	assert.Equal(t, "Text", o.WaitingText)
}

func TestOptions_Invalid(t *testing.T) {
	cfg := Default()
	cfg.Watcher.QueueOrder = "sideways"
	_, err := cfg.Options()
	require.Error(t, err)
}
