// Package catalog manages the user's playlists.
//
// The in-memory catalog is the source of truth: it is seeded once from
// storage at startup and every mutation triggers an asynchronous,
// best-effort save. Save failures are logged and never retried.
package catalog

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/dyoburon/electron-music-player/internal/library"
)

// Persister saves the full playlist set. Implemented by library.Store.
type Persister interface {
	SavePlaylists([]library.Playlist) error
}

// Catalog is the in-memory playlist collection.
type Catalog struct {
	mu        sync.RWMutex
	persister Persister
	playlists []library.Playlist
}

// New creates an empty catalog backed by the given persister.
func New(persister Persister) *Catalog {
	return &Catalog{persister: persister}
}

// Seed replaces the catalog contents without persisting. Used once at
// startup with the playlists loaded from storage.
func (c *Catalog) Seed(playlists []library.Playlist) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.playlists = make([]library.Playlist, len(playlists))
	for i, p := range playlists {
		c.playlists[i] = p.Clone()
	}
}

// Create adds a new empty playlist with a freshly minted id.
func (c *Catalog) Create(name string) library.Playlist {
	c.mu.Lock()
	p := library.Playlist{
		ID:   uuid.NewString(),
		Name: name,
	}
	c.playlists = append(c.playlists, p)
	c.mu.Unlock()

	log.Printf("[CATALOG] Created playlist %q (%s)", name, p.ID)
	c.persistAsync()
	return p
}

// Delete removes a playlist. Returns false if the id is unknown.
func (c *Catalog) Delete(id string) bool {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	name := c.playlists[idx].Name
	c.playlists = append(c.playlists[:idx], c.playlists[idx+1:]...)
	c.mu.Unlock()

	log.Printf("[CATALOG] Deleted playlist %q (%s)", name, id)
	c.persistAsync()
	return true
}

// Rename changes a playlist's display name.
func (c *Catalog) Rename(id, newName string) bool {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	c.playlists[idx].Name = newName
	c.mu.Unlock()

	c.persistAsync()
	return true
}

// AddTrack appends a copy of the track to the playlist. Adding a track
// whose source is already present is a no-op.
func (c *Catalog) AddTrack(playlistID string, t library.Track) bool {
	c.mu.Lock()
	idx := c.indexOf(playlistID)
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	if c.playlists[idx].ContainsSource(t.SourceRef) {
		c.mu.Unlock()
		return true
	}
	c.playlists[idx].Tracks = append(c.playlists[idx].Tracks, t)
	c.mu.Unlock()

	c.persistAsync()
	return true
}

// RemoveTrack removes the track at the given position. Returns false if
// the playlist is unknown or the index is out of range.
func (c *Catalog) RemoveTrack(playlistID string, index int) bool {
	c.mu.Lock()
	idx := c.indexOf(playlistID)
	if idx < 0 || index < 0 || index >= len(c.playlists[idx].Tracks) {
		c.mu.Unlock()
		return false
	}
	tracks := c.playlists[idx].Tracks
	c.playlists[idx].Tracks = append(tracks[:index], tracks[index+1:]...)
	c.mu.Unlock()

	c.persistAsync()
	return true
}

// Get returns a copy of the playlist with the given id.
func (c *Catalog) Get(id string) (library.Playlist, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return library.Playlist{}, false
	}
	return c.playlists[idx].Clone(), true
}

// FindByName returns a copy of the first playlist whose name matches,
// ignoring case. Remote control commands address playlists by name.
func (c *Catalog) FindByName(name string) (library.Playlist, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.playlists {
		if p.MatchesName(name) {
			return p.Clone(), true
		}
	}
	return library.Playlist{}, false
}

// Tracks returns a copy of the playlist's track sequence, or nil if the
// id is unknown.
func (c *Catalog) Tracks(id string) []library.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return nil
	}
	tracks := make([]library.Track, len(c.playlists[idx].Tracks))
	copy(tracks, c.playlists[idx].Tracks)
	return tracks
}

// All returns a copy of every playlist in creation order.
func (c *Catalog) All() []library.Playlist {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]library.Playlist, len(c.playlists))
	for i, p := range c.playlists {
		out[i] = p.Clone()
	}
	return out
}

// indexOf must be called with the lock held.
func (c *Catalog) indexOf(id string) int {
	for i, p := range c.playlists {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// persistAsync snapshots the catalog and saves it in the background.
// Overlapping saves from rapid mutations may race at the storage layer;
// last write wins, which is acceptable for a single-user player.
func (c *Catalog) persistAsync() {
	if c.persister == nil {
		return
	}
	snapshot := c.All()
	go func() {
		if err := c.persister.SavePlaylists(snapshot); err != nil {
			log.Printf("[CATALOG] Failed to save playlists: %v", err)
		}
	}()
}
