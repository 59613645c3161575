package library

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SupportedExtensions are the audio file extensions we recognize
var SupportedExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".wav":  true,
	".opus": true,
}

// IsAudioFile reports whether the path has a recognized audio extension.
func IsAudioFile(path string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Store is the file-backed library: a directory of imported audio files
// plus a JSON file holding the saved playlists.
type Store struct {
	musicDir      string
	playlistsPath string
}

// NewStore creates a store rooted at musicDir. Playlists are persisted
// next to the music files in playlists.json.
func NewStore(musicDir string) *Store {
	return &Store{
		musicDir:      musicDir,
		playlistsPath: filepath.Join(musicDir, "playlists.json"),
	}
}

// MusicDir returns the directory holding the imported audio files.
func (s *Store) MusicDir() string {
	return s.musicDir
}

// ListLibraryTracks scans the music directory and returns one track per
// audio file, sorted by name.
func (s *Store) ListLibraryTracks() ([]Track, error) {
	entries, err := os.ReadDir(s.musicDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read music directory: %w", err)
	}

	var tracks []Track
	for _, entry := range entries {
		if entry.IsDir() || !IsAudioFile(entry.Name()) {
			continue
		}
		tracks = append(tracks, Track{
			Name:      entry.Name(),
			SourceRef: filepath.Join(s.musicDir, entry.Name()),
		})
	}

	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Name < tracks[j].Name })
	return tracks, nil
}

// ImportAndCopy copies the given files into the music directory and
// returns the resulting tracks. Files that are not recognized audio, or
// that already exist in the store, are skipped (the existing copy wins).
func (s *Store) ImportAndCopy(sourcePaths []string) ([]Track, error) {
	if err := os.MkdirAll(s.musicDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create music directory: %w", err)
	}

	var imported []Track
	for _, src := range sourcePaths {
		name := filepath.Base(src)
		if !IsAudioFile(name) {
			log.Printf("[LIBRARY] Skipping non-audio file: %s", name)
			continue
		}

		dst := filepath.Join(s.musicDir, name)
		if _, err := os.Stat(dst); err == nil {
			log.Printf("[LIBRARY] Already in library: %s", name)
			imported = append(imported, Track{Name: name, SourceRef: dst})
			continue
		}

		if err := copyFile(src, dst); err != nil {
			log.Printf("[LIBRARY] Failed to import %s: %v", src, err)
			continue
		}

		log.Printf("[LIBRARY] Imported %s", name)
		imported = append(imported, Track{Name: name, SourceRef: dst})
	}

	return imported, nil
}

// RemoveTrack deletes the stored file behind a track. Only files inside
// the music directory are removed; anything else is left alone.
func (s *Store) RemoveTrack(t Track) error {
	dir := filepath.Dir(t.SourceRef)
	if dir != s.musicDir {
		return fmt.Errorf("track %q is not stored in the library", t.Name)
	}
	if err := os.Remove(t.SourceRef); err != nil {
		return fmt.Errorf("failed to remove track file: %w", err)
	}
	return nil
}

// LoadPlaylists reads the saved playlists. A missing file is not an
// error; it just means no playlists have been saved yet.
func (s *Store) LoadPlaylists() ([]Playlist, error) {
	data, err := os.ReadFile(s.playlistsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read playlists file: %w", err)
	}

	var playlists []Playlist
	if err := json.Unmarshal(data, &playlists); err != nil {
		return nil, fmt.Errorf("failed to parse playlists file: %w", err)
	}

	return playlists, nil
}

// SavePlaylists writes the full playlist set, replacing whatever was
// saved before.
func (s *Store) SavePlaylists(playlists []Playlist) error {
	if err := os.MkdirAll(s.musicDir, 0700); err != nil {
		return fmt.Errorf("failed to create music directory: %w", err)
	}

	data, err := json.MarshalIndent(playlists, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal playlists: %w", err)
	}

	if err := os.WriteFile(s.playlistsPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write playlists file: %w", err)
	}

	return nil
}

// PlaylistsPath returns the path of the playlists file.
func (s *Store) PlaylistsPath() string {
	return s.playlistsPath
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}

	return out.Close()
}
