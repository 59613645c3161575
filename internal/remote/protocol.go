package remote

// Command is an inbound control message. Unrecognized commands are
// discarded without closing the connection.
type Command struct {
	Command string `json:"command"`
	Name    string `json:"name,omitempty"`
}

// Recognized inbound command verbs.
const (
	CmdSkip     = "skip"
	CmdPlaylist = "playlist"
	CmdLibrary  = "library"
)

// Status is an outbound telemetry message. Each field is optional; which
// subset is present depends on the session event that produced it. Track
// changes carry all four, play state flips carry only IsPlaying, seeks
// carry only CurrentTime.
type Status struct {
	SourceRef   *string  `json:"src,omitempty"`
	TrackName   *string  `json:"trackName,omitempty"`
	IsPlaying   *bool    `json:"isPlaying,omitempty"`
	CurrentTime *float64 `json:"currentTime,omitempty"`
}
