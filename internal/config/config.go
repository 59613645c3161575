// Package config handles player configuration file management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the player configuration
type Config struct {
	// MusicDir is the directory holding the library's audio files
	MusicDir string `json:"musicDir"`

	// ControlURL is the websocket endpoint of the external remote control
	ControlURL string `json:"controlUrl"`

	// ReconnectDelayMs is the fixed pause between control reconnection
	// attempts (default: 5000)
	ReconnectDelayMs int `json:"reconnectDelayMs"`

	// Audio settings
	Audio AudioConfig `json:"audio"`

	// Visualization settings
	Visualization VisualizationConfig `json:"visualization"`
}

// AudioConfig contains audio-related settings
type AudioConfig struct {
	// DefaultVolume is the local monitoring gain 0.0 - 1.0 (default: 1.0)
	DefaultVolume float64 `json:"defaultVolume"`
}

// VisualizationConfig contains frequency analysis settings
type VisualizationConfig struct {
	// Enabled turns on the pull-based frequency band analysis
	Enabled bool `json:"enabled"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		MusicDir:         filepath.Join(home, "Music"),
		ControlURL:       "ws://localhost:8792",
		ReconnectDelayMs: 5000,
		Audio: AudioConfig{
			DefaultVolume: 1.0,
		},
		Visualization: VisualizationConfig{
			Enabled: true,
		},
	}
}

// Manager handles loading and saving configuration
type Manager struct {
	configDir  string
	configPath string
	config     *Config
}

// NewManager creates a new configuration manager
func NewManager(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configPath: filepath.Join(configDir, "config.json"),
		config:     DefaultConfig(),
	}
}

// Load reads the configuration from disk, creating a default file on first
// run.
func (m *Manager) Load() error {
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		m.config = DefaultConfig()
		return m.Save()
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	// Start with defaults so missing keys keep their default values
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	m.config = config
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	return m.config
}

// GetPath returns the config file path
func (m *Manager) GetPath() string {
	return m.configPath
}

// Update updates the configuration and saves it
func (m *Manager) Update(config *Config) error {
	m.config = config
	return m.Save()
}

// SetMusicDir updates the library directory
func (m *Manager) SetMusicDir(dir string) error {
	m.config.MusicDir = dir
	return m.Save()
}

// SetControlURL updates the remote control endpoint
func (m *Manager) SetControlURL(url string) error {
	m.config.ControlURL = url
	return m.Save()
}
