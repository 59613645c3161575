package catalog

import (
	"sync"
	"testing"

	"github.com/dyoburon/electron-music-player/internal/library"
)

// memPersister records saves for inspection.
type memPersister struct {
	mu    sync.Mutex
	saves int
	last  []library.Playlist
	done  chan struct{}
}

func newMemPersister() *memPersister {
	return &memPersister{done: make(chan struct{}, 16)}
}

func (m *memPersister) SavePlaylists(playlists []library.Playlist) error {
	m.mu.Lock()
	m.saves++
	m.last = playlists
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func TestCreate(t *testing.T) {
	c := New(nil)

	p := c.Create("Chill")

	if p.ID == "" {
		t.Error("Expected a minted id")
	}
	if p.Name != "Chill" {
		t.Errorf("Expected name Chill, got %s", p.Name)
	}
	if len(p.Tracks) != 0 {
		t.Errorf("Expected empty track list, got %d", len(p.Tracks))
	}

	q := c.Create("Chill")
	if q.ID == p.ID {
		t.Error("Expected distinct ids for playlists with the same name")
	}
}

func TestDelete(t *testing.T) {
	c := New(nil)
	p := c.Create("Chill")

	if !c.Delete(p.ID) {
		t.Error("Expected delete to succeed")
	}
	if c.Delete(p.ID) {
		t.Error("Expected second delete to fail")
	}
	if _, ok := c.Get(p.ID); ok {
		t.Error("Expected playlist gone")
	}
}

func TestRename(t *testing.T) {
	c := New(nil)
	p := c.Create("Chill")

	if !c.Rename(p.ID, "Evening") {
		t.Error("Expected rename to succeed")
	}
	got, ok := c.Get(p.ID)
	if !ok || got.Name != "Evening" {
		t.Errorf("Expected name Evening, got %+v", got)
	}
	if c.Rename("no-such-id", "X") {
		t.Error("Expected rename of unknown id to fail")
	}
}

func TestAddTrackIdempotent(t *testing.T) {
	c := New(nil)
	p := c.Create("Chill")
	track := library.Track{Name: "a.mp3", SourceRef: "/music/a.mp3"}

	c.AddTrack(p.ID, track)
	c.AddTrack(p.ID, track)

	got := c.Tracks(p.ID)
	if len(got) != 1 {
		t.Errorf("Expected 1 track after duplicate add, got %d", len(got))
	}
}

func TestRemoveTrack(t *testing.T) {
	c := New(nil)
	p := c.Create("Chill")
	c.AddTrack(p.ID, library.Track{Name: "a.mp3", SourceRef: "/music/a.mp3"})
	c.AddTrack(p.ID, library.Track{Name: "b.mp3", SourceRef: "/music/b.mp3"})

	if !c.RemoveTrack(p.ID, 0) {
		t.Error("Expected remove to succeed")
	}
	got := c.Tracks(p.ID)
	if len(got) != 1 || got[0].Name != "b.mp3" {
		t.Errorf("Expected [b.mp3], got %v", got)
	}

	if c.RemoveTrack(p.ID, 5) {
		t.Error("Expected out-of-range remove to fail")
	}
	if c.RemoveTrack("no-such-id", 0) {
		t.Error("Expected remove on unknown playlist to fail")
	}
}

func TestFindByNameCaseInsensitive(t *testing.T) {
	c := New(nil)
	c.Create("Workout")

	for _, name := range []string{"Workout", "WORKOUT", "workout"} {
		if _, ok := c.FindByName(name); !ok {
			t.Errorf("Expected to find playlist by name %q", name)
		}
	}
	if _, ok := c.FindByName("nope"); ok {
		t.Error("Expected lookup of unknown name to fail")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := New(nil)
	p := c.Create("Chill")
	c.AddTrack(p.ID, library.Track{Name: "a.mp3", SourceRef: "/music/a.mp3"})

	got, _ := c.Get(p.ID)
	got.Tracks[0].Name = "mutated"

	fresh, _ := c.Get(p.ID)
	if fresh.Tracks[0].Name != "a.mp3" {
		t.Errorf("Expected internal state untouched, got %s", fresh.Tracks[0].Name)
	}
}

func TestSeedDoesNotPersist(t *testing.T) {
	persister := newMemPersister()
	c := New(persister)

	c.Seed([]library.Playlist{{ID: "1", Name: "Chill"}})

	persister.mu.Lock()
	saves := persister.saves
	persister.mu.Unlock()
	if saves != 0 {
		t.Errorf("Expected seed not to persist, got %d saves", saves)
	}
}

func TestMutationsPersistAsync(t *testing.T) {
	persister := newMemPersister()
	c := New(persister)

	p := c.Create("Chill")
	<-persister.done

	c.AddTrack(p.ID, library.Track{Name: "a.mp3", SourceRef: "/music/a.mp3"})
	<-persister.done

	persister.mu.Lock()
	defer persister.mu.Unlock()
	if persister.saves != 2 {
		t.Errorf("Expected 2 saves, got %d", persister.saves)
	}
	if len(persister.last) != 1 || len(persister.last[0].Tracks) != 1 {
		t.Errorf("Expected snapshot with one playlist and one track, got %+v", persister.last)
	}
}
