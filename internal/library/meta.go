package library

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// TrackMeta contains display metadata extracted from a track's tags.
type TrackMeta struct {
	Title  string
	Artist string
	Album  string
}

// ReadMeta extracts tag metadata from the file behind a track.
// When the file has no readable tags the title falls back to the track
// name without its extension; the caller never has to care.
func ReadMeta(t Track) TrackMeta {
	meta := TrackMeta{
		Title: strings.TrimSuffix(t.Name, filepath.Ext(t.Name)),
	}

	f, err := os.Open(t.SourceRef)
	if err != nil {
		return meta
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return meta
	}

	if title := m.Title(); title != "" {
		meta.Title = title
	}
	meta.Artist = m.Artist()
	meta.Album = m.Album()
	return meta
}
