package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bezmoradi/gestured/internal/gesture"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.True(t, cfg.HapticFeedback)
	assert.False(t, cfg.SetupComplete)
}

func TestDefaultMappingCoversSupportedCodes(t *testing.T) {
	cfg := DefaultConfig()
	assert.ElementsMatch(t, gesture.SupportedScanCodes(), cfg.ScanCodes)
	require.Len(t, cfg.Actions, len(cfg.ScanCodes))
	for _, a := range cfg.Actions {
		assert.True(t, gesture.ActionID(a).Valid())
	}
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"config.json": `{"setup_complete": true, "haptic_feedback": false, "scan_codes": [46], "actions": [14],
			"launch": {"camera": "cheese"}}`,
		"config.toml": "setup_complete = true\nhaptic_feedback = false\nscan_codes = [46]\nactions = [14]\n" +
			"[launch]\ncamera = \"cheese\"\n",
		"config.yaml": "setup_complete: true\nhaptic_feedback: false\nscan_codes: [46]\nactions: [14]\n" +
			"launch:\n  camera: cheese\n",
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			writeFile(t, path, content)

			cfg, err := LoadConfig(path)
			require.NoError(t, err)
			assert.True(t, cfg.SetupComplete)
			assert.False(t, cfg.HapticFeedback)
			assert.Equal(t, []int{46}, cfg.ScanCodes)
			assert.Equal(t, []int{14}, cfg.Actions)

			launch, err := cfg.LaunchTargets()
			require.NoError(t, err)
			assert.Equal(t, map[gesture.ActionID]string{gesture.ActionCamera: "cheese"}, launch)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.toml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := DefaultConfig()
			cfg.SetupComplete = true
			cfg.BridgeURL = "ws://localhost:9000/bridge"
			cfg.Launch = map[string]string{"camera": "cheese"}
			require.NoError(t, SaveConfig(cfg, path))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFile(t, path, "{")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BridgeURL = "http://localhost"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Launch = map[string]string{"teleport": "x"}
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ScanCodes = []int{1, 2}
	cfg.Actions = []int{3}
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"bridge_url": "ws://file", "touch_device": "/dev/input/event3"}`)
	t.Setenv("GESTURED_BRIDGE_URL", "ws://env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://env", cfg.BridgeURL)
	assert.Equal(t, "/dev/input/event3", cfg.TouchDevice)
}

func TestLoaderAnswersSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"setup_complete": true, "handwave_enabled": true}`)

	l := NewLoader(path)
	assert.False(t, l.SetupComplete())
	assert.True(t, l.HapticFeedbackEnabled())

	_, err := l.Load()
	require.NoError(t, err)
	assert.True(t, l.SetupComplete())
	assert.True(t, l.HandwaveEnabled())
}

func TestLoaderHotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"setup_complete": false}`)

	l := NewLoader(path)
	_, err := l.Load()
	require.NoError(t, err)
	changed := make(chan *Config, 4)
	l.OnChange(func(c *Config) { changed <- c })
	require.NoError(t, l.Watch())
	defer l.Close()

	writeFile(t, path, `{"setup_complete": true, "scan_codes": [17], "actions": [13]}`)

	select {
	case cfg := <-changed:
		assert.True(t, cfg.SetupComplete)
		assert.Equal(t, []int{17}, cfg.ScanCodes)
	case <-time.After(3 * time.Second):
		t.Fatal("config not reloaded")
	}
	assert.True(t, l.SetupComplete())
}

func TestLoaderKeepsConfigOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"setup_complete": true}`)

	l := NewLoader(path)
	_, err := l.Load()
	require.NoError(t, err)
	require.NoError(t, l.Watch())
	defer l.Close()

	writeFile(t, path, `{"setup_complete": `)

	select {
	case err := <-l.Errors():
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload error reported")
	}
	assert.True(t, l.SetupComplete())
}
