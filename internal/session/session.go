package session

import (
	"log"
	"sync"

	"github.com/dyoburon/electron-music-player/internal/catalog"
	"github.com/dyoburon/electron-music-player/internal/library"
)

// AudioEngine is the playback surface the session drives. Implementations
// must not invoke session handlers synchronously from these methods.
type AudioEngine interface {
	// Load prepares the referenced source for playback, replacing any
	// previously loaded track.
	Load(sourceRef string) error
	// Play starts or resumes playback. It returns an error when playback
	// cannot start, for example when nothing is loaded.
	Play() error
	// Pause suspends playback, keeping the current position.
	Pause()
	// SetCurrentTime moves the playback position, in seconds.
	SetCurrentTime(seconds float64)
	// SetLocalVolume sets the local output gain in [0.0, 1.0]. It must not
	// affect any capture or broadcast path.
	SetLocalVolume(v float64)
}

// LibraryStore persists library mutations. Methods are called off the
// session's critical path; failures are logged and do not roll back state.
type LibraryStore interface {
	ImportAndCopy(sourcePaths []string) ([]library.Track, error)
	RemoveTrack(t library.Track) error
}

// Status is a point-in-time snapshot of the session.
type Status struct {
	State          State
	Collection     Collection
	Index          int
	Track          *library.Track
	IsPlaying      bool
	Volume         float64
	CurrentTime    float64
	Duration       float64
	CollectionSize int
}

// Session is the single authority over playback state: which collection is
// active, which track within it is current, and whether audio is playing.
// Every entry point, whether from the UI, the remote channel, or the engine,
// serializes on one mutex, so observers always see a consistent snapshot.
type Session struct {
	mu      sync.Mutex
	engine  AudioEngine
	catalog *catalog.Catalog
	store   LibraryStore

	libraryTracks []library.Track
	active        Collection
	index         int
	playing       bool
	volume        float64
	currentTime   float64
	duration      float64

	listeners  map[int]func(Event)
	listenerID int
}

// New creates a session over the given engine and catalog. The store may be
// nil, in which case library mutations are in-memory only.
func New(engine AudioEngine, cat *catalog.Catalog, store LibraryStore) *Session {
	return &Session{
		engine:    engine,
		catalog:   cat,
		store:     store,
		active:    LibraryCollection,
		volume:    1.0,
		listeners: make(map[int]func(Event)),
	}
}

// SeedLibrary replaces the in-memory library track list. Intended for
// startup, before any playback begins.
func (s *Session) SeedLibrary(tracks []library.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.libraryTracks = append([]library.Track(nil), tracks...)
}

// LibraryTracks returns a copy of the library track list.
func (s *Session) LibraryTracks() []library.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]library.Track(nil), s.libraryTracks...)
}

// AppendLibraryTrack adds a track discovered outside the import flow, such
// as a file dropped into the music directory. Duplicate sources are ignored.
func (s *Session) AppendLibraryTrack(t library.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.libraryTracks {
		if existing.SourceRef == t.SourceRef {
			return
		}
	}
	s.libraryTracks = append(s.libraryTracks, t)
	log.Printf("[SESSION] Library gained track: %s", t.Name)
}

// ImportTracks copies the given files into the library and appends the
// resulting tracks.
func (s *Session) ImportTracks(sourcePaths []string) []library.Track {
	if s.store == nil {
		return nil
	}
	imported, err := s.store.ImportAndCopy(sourcePaths)
	if err != nil {
		log.Printf("[SESSION] Import failed: %v", err)
	}
	for _, t := range imported {
		s.AppendLibraryTrack(t)
	}
	return imported
}

// Subscribe registers a listener for session events. The returned function
// cancels the subscription. Listeners are invoked outside the session lock.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.listenerID
	s.listenerID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify(events ...Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

// Status returns a consistent snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks, _ := s.resolveLocked(s.active)
	st := Status{
		Collection:     s.active,
		Index:          s.index,
		IsPlaying:      s.playing,
		Volume:         s.volume,
		CurrentTime:    s.currentTime,
		Duration:       s.duration,
		CollectionSize: len(tracks),
		State:          NoTrack,
	}
	if s.index >= 0 && s.index < len(tracks) {
		t := tracks[s.index]
		st.Track = &t
		if s.playing {
			st.State = LoadedPlaying
		} else {
			st.State = LoadedPaused
		}
	}
	return st
}

// resolveLocked returns the active track slice for a collection and whether
// the collection exists. Caller must hold s.mu.
func (s *Session) resolveLocked(col Collection) ([]library.Track, bool) {
	if col.Kind == KindLibrary {
		return s.libraryTracks, true
	}
	if _, ok := s.catalog.Get(col.PlaylistID); !ok {
		return nil, false
	}
	return s.catalog.Tracks(col.PlaylistID), true
}

// SelectTrack makes the given collection active and starts playback of the
// track at index. Out-of-range indices and unknown collections are ignored.
func (s *Session) SelectTrack(col Collection, index int) {
	s.mu.Lock()
	tracks, ok := s.resolveLocked(col)
	if !ok || index < 0 || index >= len(tracks) {
		s.mu.Unlock()
		return
	}
	ev := s.startTrackLocked(col, index, tracks[index])
	s.mu.Unlock()
	s.notify(ev)
}

// startTrackLocked commits a track change and asks the engine to play it.
// Load or play failures are logged; the session still considers the track
// current and playing, and a later engine error report corrects the state.
func (s *Session) startTrackLocked(col Collection, index int, t library.Track) Event {
	s.active = col
	s.index = index
	s.playing = true
	s.currentTime = 0
	s.duration = 0
	if err := s.engine.Load(t.SourceRef); err != nil {
		log.Printf("[SESSION] Failed to load %s: %v", t.Name, err)
	} else if err := s.engine.Play(); err != nil {
		log.Printf("[SESSION] Failed to start %s: %v", t.Name, err)
	}
	return Event{
		Type:      EventTrackChanged,
		SourceRef: t.SourceRef,
		TrackName: t.Name,
		IsPlaying: true,
	}
}

// TogglePlay flips between playing and paused. It is a no-op when the
// active collection is empty. If the engine rejects resuming, the session
// stays paused.
func (s *Session) TogglePlay() {
	s.mu.Lock()
	tracks, _ := s.resolveLocked(s.active)
	if len(tracks) == 0 {
		s.mu.Unlock()
		return
	}
	var ev Event
	if s.playing {
		s.engine.Pause()
		s.playing = false
		ev = s.playStateEventLocked()
	} else {
		if err := s.engine.Play(); err != nil {
			log.Printf("[SESSION] Resume rejected: %v", err)
			s.mu.Unlock()
			return
		}
		s.playing = true
		ev = s.playStateEventLocked()
	}
	s.mu.Unlock()
	s.notify(ev)
}

func (s *Session) playStateEventLocked() Event {
	ev := Event{Type: EventPlayStateChanged, IsPlaying: s.playing}
	if tracks, _ := s.resolveLocked(s.active); s.index >= 0 && s.index < len(tracks) {
		ev.SourceRef = tracks[s.index].SourceRef
		ev.TrackName = tracks[s.index].Name
	}
	return ev
}

// Next advances to the following track, wrapping to the start of the
// collection. No-op when the collection is empty.
func (s *Session) Next() { s.step(1) }

// Previous steps back one track, wrapping to the end of the collection.
// No-op when the collection is empty.
func (s *Session) Previous() { s.step(-1) }

func (s *Session) step(delta int) {
	s.mu.Lock()
	tracks, _ := s.resolveLocked(s.active)
	n := len(tracks)
	if n == 0 {
		s.mu.Unlock()
		return
	}
	index := ((s.index+delta)%n + n) % n
	ev := s.startTrackLocked(s.active, index, tracks[index])
	s.mu.Unlock()
	s.notify(ev)
}

// Seek moves the playback position, clamped to [0, duration]. Without a
// current track there is nothing to position, so the call is ignored.
func (s *Session) Seek(seconds float64) {
	s.mu.Lock()
	tracks, _ := s.resolveLocked(s.active)
	if s.index < 0 || s.index >= len(tracks) {
		s.mu.Unlock()
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	if s.duration > 0 && seconds > s.duration {
		seconds = s.duration
	}
	s.currentTime = seconds
	s.engine.SetCurrentTime(seconds)
	ev := Event{
		Type:        EventTimeChanged,
		SourceRef:   tracks[s.index].SourceRef,
		TrackName:   tracks[s.index].Name,
		CurrentTime: seconds,
		IsPlaying:   s.playing,
	}
	s.mu.Unlock()
	s.notify(ev)
}

// SetVolume sets the local output gain, clamped to [0.0, 1.0]. The change
// never reaches the capture path and is not broadcast.
func (s *Session) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.mu.Lock()
	s.volume = v
	s.engine.SetLocalVolume(v)
	s.mu.Unlock()
}

// Volume returns the current local gain.
func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// SwitchToLibrary makes the library the active collection and starts its
// first track.
func (s *Session) SwitchToLibrary() {
	s.switchTo(LibraryCollection)
}

// SwitchToPlaylist makes the identified playlist active and starts its
// first track. Unknown ids are silently ignored.
func (s *Session) SwitchToPlaylist(id string) {
	s.switchTo(PlaylistCollection(id))
}

// SwitchToPlaylistByName resolves a playlist by case-insensitive name and
// switches to it. Resolution failure is silently ignored.
func (s *Session) SwitchToPlaylistByName(name string) {
	p, ok := s.catalog.FindByName(name)
	if !ok {
		log.Printf("[SESSION] No playlist named %q", name)
		return
	}
	s.switchTo(PlaylistCollection(p.ID))
}

func (s *Session) switchTo(col Collection) {
	s.mu.Lock()
	tracks, ok := s.resolveLocked(col)
	if !ok {
		s.mu.Unlock()
		return
	}
	var evs []Event
	if len(tracks) == 0 {
		// Empty collection: becomes active with nothing to play. The
		// engine keeps whatever it had; no stop command is issued.
		wasPlaying := s.playing
		s.active = col
		s.index = 0
		s.playing = false
		s.currentTime = 0
		if wasPlaying {
			evs = append(evs, Event{Type: EventPlayStateChanged, IsPlaying: false})
		}
	} else {
		evs = append(evs, s.startTrackLocked(col, 0, tracks[0]))
	}
	s.mu.Unlock()
	s.notify(evs...)
}

// CreatePlaylist creates a playlist and makes it the active collection.
func (s *Session) CreatePlaylist(name string) library.Playlist {
	p := s.catalog.Create(name)
	s.switchTo(PlaylistCollection(p.ID))
	return p
}

// DeletePlaylist removes a playlist. If it was the active collection,
// playback stops and the library becomes active at index 0.
func (s *Session) DeletePlaylist(id string) {
	if !s.catalog.Delete(id) {
		return
	}
	s.mu.Lock()
	var evs []Event
	if s.active == PlaylistCollection(id) {
		s.active = LibraryCollection
		s.index = 0
		if s.playing {
			s.engine.Pause()
			s.playing = false
			evs = append(evs, Event{Type: EventPlayStateChanged, IsPlaying: false})
		}
	}
	s.mu.Unlock()
	s.notify(evs...)
}

// RemovePlaylistTrack removes the track at index from a playlist and
// adjusts the session if that playlist is active.
func (s *Session) RemovePlaylistTrack(playlistID string, index int) {
	if !s.catalog.RemoveTrack(playlistID, index) {
		return
	}
	s.mu.Lock()
	evs := s.trackRemovedLocked(PlaylistCollection(playlistID), index)
	s.mu.Unlock()
	s.notify(evs...)
}

// RemoveLibraryTrack removes the track at index from the library, adjusts
// the session, and deletes the backing file asynchronously.
func (s *Session) RemoveLibraryTrack(index int) {
	s.mu.Lock()
	if index < 0 || index >= len(s.libraryTracks) {
		s.mu.Unlock()
		return
	}
	removed := s.libraryTracks[index]
	s.libraryTracks = append(s.libraryTracks[:index], s.libraryTracks[index+1:]...)
	evs := s.trackRemovedLocked(LibraryCollection, index)
	s.mu.Unlock()
	s.notify(evs...)
	if s.store != nil {
		go func() {
			if err := s.store.RemoveTrack(removed); err != nil {
				log.Printf("[SESSION] Failed to delete %s: %v", removed.Name, err)
			}
		}()
	}
}

// trackRemovedLocked applies the index-adjustment rules after position p
// was removed from col. Caller must hold s.mu; the removal itself has
// already happened.
//
// Removing below the current index slides the index down by one. Removing
// the current track stops playback; the index then points at the track
// that slid into its place, or resets to 0 when it would fall past the
// end. Removals in a non-active collection never touch the session.
func (s *Session) trackRemovedLocked(col Collection, p int) []Event {
	if col != s.active {
		return nil
	}
	tracks, _ := s.resolveLocked(s.active)
	n := len(tracks)
	var evs []Event
	switch {
	case p < s.index:
		s.index--
	case p == s.index:
		if s.playing {
			s.engine.Pause()
			s.playing = false
			evs = append(evs, Event{Type: EventPlayStateChanged, IsPlaying: false})
		}
		if s.index >= n {
			s.index = 0
		}
		s.currentTime = 0
	}
	return evs
}

// HandleTrackEnded is called by the engine when the current track finishes.
// Playback advances to the next track, wrapping like Next.
func (s *Session) HandleTrackEnded() {
	s.Next()
}

// HandleMetadataLoaded records the duration reported by the engine for the
// current track.
func (s *Session) HandleMetadataLoaded(duration float64) {
	s.mu.Lock()
	s.duration = duration
	s.mu.Unlock()
}

// HandleTimeUpdate records playback progress. Progress is observable via
// Status but deliberately never broadcast.
func (s *Session) HandleTimeUpdate(seconds float64) {
	s.mu.Lock()
	s.currentTime = seconds
	s.mu.Unlock()
}

// HandlePlayError reverts to paused after the engine reports a failure to
// play the current track.
func (s *Session) HandlePlayError(err error) {
	log.Printf("[SESSION] Playback error: %v", err)
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	ev := s.playStateEventLocked()
	s.mu.Unlock()
	s.notify(ev)
}
