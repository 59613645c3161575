// Package library provides the track and playlist data model and the
// file-backed store that owns the music directory.
package library

import "strings"

// Track is a named reference to a playable audio resource.
// SourceRef is an opaque locator resolved by the audio engine;
// nothing else in the player interprets it.
type Track struct {
	Name      string `json:"name"`
	SourceRef string `json:"src"`
}

// Playlist is an ordered, named sequence of tracks.
// Tracks are copies of library tracks, never shared references,
// so deleting a library track does not cascade into playlists.
type Playlist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

// Clone returns a deep copy of the playlist.
func (p Playlist) Clone() Playlist {
	tracks := make([]Track, len(p.Tracks))
	copy(tracks, p.Tracks)
	return Playlist{ID: p.ID, Name: p.Name, Tracks: tracks}
}

// ContainsSource reports whether the playlist already holds a track
// with the given source reference.
func (p Playlist) ContainsSource(sourceRef string) bool {
	for _, t := range p.Tracks {
		if t.SourceRef == sourceRef {
			return true
		}
	}
	return false
}

// MatchesName reports whether the playlist name matches, ignoring case.
// Remote control commands address playlists by name.
func (p Playlist) MatchesName(name string) bool {
	return strings.EqualFold(p.Name, name)
}
