package session

// CollectionKind distinguishes the flat library from a named playlist.
type CollectionKind int

const (
	KindLibrary CollectionKind = iota
	KindPlaylist
)

// Collection identifies the track sequence playback draws from.
// Exactly one collection is active at a time.
type Collection struct {
	Kind       CollectionKind
	PlaylistID string
}

// LibraryCollection is the whole-library collection.
var LibraryCollection = Collection{Kind: KindLibrary}

// PlaylistCollection identifies a playlist by id.
func PlaylistCollection(id string) Collection {
	return Collection{Kind: KindPlaylist, PlaylistID: id}
}

// String returns a short description for logging.
func (c Collection) String() string {
	if c.Kind == KindLibrary {
		return "library"
	}
	return "playlist:" + c.PlaylistID
}

// State is the playback state of the session.
type State int

const (
	NoTrack State = iota
	LoadedPaused
	LoadedPlaying
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case LoadedPaused:
		return "paused"
	case LoadedPlaying:
		return "playing"
	default:
		return "noTrack"
	}
}
