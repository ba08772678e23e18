package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bezmoradi/gestured/internal/gesture"
)

const (
	configDirName = "gestured"
	metricsSubDir = "metrics"
)

// configFileNames are tried in order when no path is given.
var configFileNames = []string{"config.json", "config.toml", "config.yaml", "config.yml"}

// Config represents the application configuration
type Config struct {
	SetupComplete   bool   `json:"setup_complete" toml:"setup_complete" yaml:"setup_complete"`
	HapticFeedback  bool   `json:"haptic_feedback" toml:"haptic_feedback" yaml:"haptic_feedback"`
	HandwaveEnabled bool   `json:"handwave_enabled" toml:"handwave_enabled" yaml:"handwave_enabled"`
	TouchDevice     string `json:"touch_device,omitempty" toml:"touch_device" yaml:"touch_device,omitempty"`
	ProximityDevice string `json:"proximity_device,omitempty" toml:"proximity_device" yaml:"proximity_device,omitempty"`
	BridgeURL       string `json:"bridge_url,omitempty" toml:"bridge_url" yaml:"bridge_url,omitempty"`
	ListenAddr      string `json:"listen_addr,omitempty" toml:"listen_addr" yaml:"listen_addr,omitempty"`
	TorchPath       string `json:"torch_path,omitempty" toml:"torch_path" yaml:"torch_path,omitempty"`

	// ScanCodes and Actions are the two halves of the mapping-update command.
	ScanCodes []int `json:"scan_codes" toml:"scan_codes" yaml:"scan_codes"`
	Actions   []int `json:"actions" toml:"actions" yaml:"actions"`

	// Launch maps an app action name (e.g. "camera") to a command or URI.
	Launch map[string]string `json:"launch,omitempty" toml:"launch" yaml:"launch,omitempty"`
}

// DefaultConfig maps every supported scan code to an action.
func DefaultConfig() *Config {
	return &Config{
		HapticFeedback: true,
		ListenAddr:     "127.0.0.1:7787",
		ScanCodes: []int{
			gesture.ScanDoubleClick,
			gesture.ScanSwipeUp,
			gesture.ScanW,
			gesture.ScanS,
			gesture.ScanE,
			gesture.ScanC,
			gesture.ScanZ,
			gesture.ScanV,
		},
		Actions: []int{
			int(gesture.ActionWakeUp),
			int(gesture.ActionHome),
			int(gesture.ActionBrowser),
			int(gesture.ActionScreenshot),
			int(gesture.ActionEmail),
			int(gesture.ActionCamera),
			int(gesture.ActionFlashlight),
			int(gesture.ActionPlayPause),
		},
	}
}

// getConfigDir returns the user's config directory for gestured
func getConfigDir() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(usr.HomeDir, ".config", configDirName), nil
}

// GetConfigPath returns the first config file that exists, or config.json
// when there is none yet.
func GetConfigPath() (string, error) {
	dir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range configFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return filepath.Join(dir, configFileNames[0]), nil
}

// GetMetricsDir returns the metrics directory path
func GetMetricsDir() (string, error) {
	dir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, metricsSubDir), nil
}

// LoadConfig reads path (defaults if it does not exist), then applies
// environment overrides and validates.
func LoadConfig(path string) (*Config, error) {
	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg in the format implied by the path's extension.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	switch filepath.Ext(path) {
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func loadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	}
	return cfg, nil
}

// envOverrides lists the variables that take priority over the file.
var envOverrides = []struct {
	key   string
	field func(*Config) *string
}{
	{"GESTURED_BRIDGE_URL", func(c *Config) *string { return &c.BridgeURL }},
	{"GESTURED_TOUCH_DEVICE", func(c *Config) *string { return &c.TouchDevice }},
	{"GESTURED_PROXIMITY_DEVICE", func(c *Config) *string { return &c.ProximityDevice }},
	{"GESTURED_LISTEN_ADDR", func(c *Config) *string { return &c.ListenAddr }},
}

// ApplyEnvOverrides uses the fallback priority: environment, then .env in the
// working directory, then whatever the file said.
func (c *Config) ApplyEnvOverrides() {
	dotenv, _ := godotenv.Read()
	for _, o := range envOverrides {
		// Priority 1: Environment variable
		if v := os.Getenv(o.key); v != "" {
			*o.field(c) = v
			continue
		}
		// Priority 2: .env file
		if v := dotenv[o.key]; v != "" {
			*o.field(c) = v
		}
	}
}

// Validate rejects settings the daemon cannot start with. A mismatched
// mapping is not an error here; the dispatcher clears it.
func (c *Config) Validate() error {
	if c.BridgeURL != "" {
		u, err := url.Parse(c.BridgeURL)
		if err != nil {
			return fmt.Errorf("bridge_url: %w", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("bridge_url: scheme must be ws or wss, got %q", u.Scheme)
		}
	}
	if _, err := c.LaunchTargets(); err != nil {
		return err
	}
	return nil
}

// LaunchTargets resolves the launch table's action names.
func (c *Config) LaunchTargets() (map[gesture.ActionID]string, error) {
	out := make(map[gesture.ActionID]string, len(c.Launch))
	for name, target := range c.Launch {
		id, err := gesture.ParseActionID(name)
		if err != nil {
			return nil, fmt.Errorf("launch: %w", err)
		}
		out[id] = target
	}
	return out, nil
}
