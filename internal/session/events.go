package session

// EventType identifies the kind of state change an Event describes.
type EventType int

const (
	// EventTrackChanged fires when a new track is loaded for playback.
	EventTrackChanged EventType = iota
	// EventPlayStateChanged fires when playback starts or stops without
	// the track changing.
	EventPlayStateChanged
	// EventTimeChanged fires when the playback position is moved by an
	// explicit seek. Ordinary playback progress does not emit events.
	EventTimeChanged
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventTrackChanged:
		return "trackChanged"
	case EventPlayStateChanged:
		return "playStateChanged"
	case EventTimeChanged:
		return "timeChanged"
	default:
		return "unknown"
	}
}

// Event is a snapshot of the fields relevant to a state change. It is
// delivered to subscribers after the mutation completes.
type Event struct {
	Type        EventType
	SourceRef   string
	TrackName   string
	IsPlaying   bool
	CurrentTime float64
}
