package library

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("data"), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestIsAudioFile(t *testing.T) {
	audio := []string{"a.mp3", "b.FLAC", "c.ogg", "/x/y/d.wav", "e.m4a"}
	for _, name := range audio {
		if !IsAudioFile(name) {
			t.Errorf("Expected %s to be recognized as audio", name)
		}
	}
	other := []string{"a.txt", "playlists.json", "noext", "b.mp3.bak"}
	for _, name := range other {
		if IsAudioFile(name) {
			t.Errorf("Expected %s to be rejected", name)
		}
	}
}

func TestListLibraryTracks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.mp3"))
	writeFile(t, filepath.Join(dir, "a.mp3"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	if err := os.Mkdir(filepath.Join(dir, "sub.mp3"), 0700); err != nil {
		t.Fatal(err)
	}

	s := NewStore(dir)
	tracks, err := s.ListLibraryTracks()
	if err != nil {
		t.Fatalf("ListLibraryTracks failed: %v", err)
	}

	if len(tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].Name != "a.mp3" || tracks[1].Name != "b.mp3" {
		t.Errorf("Expected sorted [a.mp3 b.mp3], got %v", tracks)
	}
	if tracks[0].SourceRef != filepath.Join(dir, "a.mp3") {
		t.Errorf("Expected sourceRef inside music dir, got %s", tracks[0].SourceRef)
	}
}

func TestListLibraryTracksMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"))

	tracks, err := s.ListLibraryTracks()
	if err != nil {
		t.Errorf("Expected no error for missing directory, got %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("Expected no tracks, got %d", len(tracks))
	}
}

func TestImportAndCopy(t *testing.T) {
	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "song.mp3"))
	writeFile(t, filepath.Join(srcDir, "readme.txt"))

	musicDir := filepath.Join(t.TempDir(), "music")
	s := NewStore(musicDir)

	imported, err := s.ImportAndCopy([]string{
		filepath.Join(srcDir, "song.mp3"),
		filepath.Join(srcDir, "readme.txt"),
	})
	if err != nil {
		t.Fatalf("ImportAndCopy failed: %v", err)
	}

	if len(imported) != 1 {
		t.Fatalf("Expected 1 imported track, got %d", len(imported))
	}
	if imported[0].Name != "song.mp3" {
		t.Errorf("Expected song.mp3, got %s", imported[0].Name)
	}
	if _, err := os.Stat(filepath.Join(musicDir, "song.mp3")); err != nil {
		t.Errorf("Expected copied file to exist: %v", err)
	}

	// Re-importing keeps the existing copy
	again, err := s.ImportAndCopy([]string{filepath.Join(srcDir, "song.mp3")})
	if err != nil {
		t.Fatalf("Second import failed: %v", err)
	}
	if len(again) != 1 || again[0].SourceRef != filepath.Join(musicDir, "song.mp3") {
		t.Errorf("Expected existing copy returned, got %v", again)
	}
}

func TestRemoveTrack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.mp3")
	writeFile(t, path)

	s := NewStore(dir)
	if err := s.RemoveTrack(Track{Name: "gone.mp3", SourceRef: path}); err != nil {
		t.Fatalf("RemoveTrack failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file to be deleted")
	}
}

func TestRemoveTrackOutsideLibrary(t *testing.T) {
	s := NewStore(t.TempDir())
	outside := filepath.Join(t.TempDir(), "other.mp3")
	writeFile(t, outside)

	if err := s.RemoveTrack(Track{Name: "other.mp3", SourceRef: outside}); err == nil {
		t.Error("Expected refusal to delete a file outside the music directory")
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("Expected outside file to survive")
	}
}

func TestPlaylistsRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	saved := []Playlist{
		{ID: "1", Name: "Chill", Tracks: []Track{{Name: "a.mp3", SourceRef: "/music/a.mp3"}}},
		{ID: "2", Name: "Workout"},
	}
	if err := s.SavePlaylists(saved); err != nil {
		t.Fatalf("SavePlaylists failed: %v", err)
	}

	loaded, err := s.LoadPlaylists()
	if err != nil {
		t.Fatalf("LoadPlaylists failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 playlists, got %d", len(loaded))
	}
	if loaded[0].Name != "Chill" || len(loaded[0].Tracks) != 1 {
		t.Errorf("Expected Chill with 1 track, got %+v", loaded[0])
	}
}

func TestLoadPlaylistsMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "empty"))

	playlists, err := s.LoadPlaylists()
	if err != nil {
		t.Errorf("Expected no error for missing file, got %v", err)
	}
	if playlists != nil {
		t.Errorf("Expected nil playlists, got %v", playlists)
	}
}

func TestPlaylistClone(t *testing.T) {
	p := Playlist{ID: "1", Name: "Chill", Tracks: []Track{{Name: "a.mp3", SourceRef: "/a"}}}

	c := p.Clone()
	c.Tracks[0].Name = "mutated"

	if p.Tracks[0].Name != "a.mp3" {
		t.Errorf("Expected original untouched, got %s", p.Tracks[0].Name)
	}
}

func TestPlaylistMatchesName(t *testing.T) {
	p := Playlist{Name: "Workout"}
	if !p.MatchesName("WORKOUT") || !p.MatchesName("workout") {
		t.Error("Expected case-insensitive name match")
	}
	if p.MatchesName("Chill") {
		t.Error("Expected mismatch for different name")
	}
}

func TestPlaylistContainsSource(t *testing.T) {
	p := Playlist{Tracks: []Track{{Name: "a.mp3", SourceRef: "/music/a.mp3"}}}
	if !p.ContainsSource("/music/a.mp3") {
		t.Error("Expected source to be found")
	}
	if p.ContainsSource("/music/b.mp3") {
		t.Error("Expected unknown source to be absent")
	}
}
