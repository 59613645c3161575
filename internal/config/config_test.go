package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "playerd")
	m := NewManager(dir)

	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := os.Stat(m.GetPath()); err != nil {
		t.Errorf("Expected config file to be created: %v", err)
	}

	cfg := m.Get()
	if cfg.ReconnectDelayMs != 5000 {
		t.Errorf("Expected default reconnect delay 5000, got %d", cfg.ReconnectDelayMs)
	}
	if cfg.Audio.DefaultVolume != 1.0 {
		t.Errorf("Expected default volume 1.0, got %f", cfg.Audio.DefaultVolume)
	}
	if cfg.ControlURL == "" {
		t.Error("Expected a default control URL")
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"musicDir":"/srv/music"}`), 0600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir)
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := m.Get()
	if cfg.MusicDir != "/srv/music" {
		t.Errorf("Expected musicDir /srv/music, got %s", cfg.MusicDir)
	}
	if cfg.ReconnectDelayMs != 5000 {
		t.Errorf("Expected missing key to keep default 5000, got %d", cfg.ReconnectDelayMs)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir)
	if err := m.Load(); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := m.SetControlURL("ws://10.0.0.5:9000"); err != nil {
		t.Fatalf("SetControlURL failed: %v", err)
	}
	if err := m.SetMusicDir("/srv/music"); err != nil {
		t.Fatalf("SetMusicDir failed: %v", err)
	}

	fresh := NewManager(dir)
	if err := fresh.Load(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := fresh.Get().ControlURL; got != "ws://10.0.0.5:9000" {
		t.Errorf("Expected saved control URL, got %s", got)
	}
	if got := fresh.Get().MusicDir; got != "/srv/music" {
		t.Errorf("Expected saved music dir, got %s", got)
	}
}
