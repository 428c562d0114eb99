// Package plex talks to the plex.tv account API and to a Plex Media Server,
// and selects the playback session to broadcast.
package plex

import "strings"

// MediaKind is the playback session content kind as reported by Plex.
type MediaKind string

const (
	KindMovie   MediaKind = "movie"
	KindEpisode MediaKind = "episode"
	KindTrack   MediaKind = "track"
)

// Valid reports whether the kind is one we know how to broadcast.
func (k MediaKind) Valid() bool {
	switch k {
	case KindMovie, KindEpisode, KindTrack:
		return true
	}
	return false
}

// Session is a read-only view of an active playback session.
//
// DurationMS >= ViewOffsetMS >= 0 always holds for sessions returned by the
// server; remaining time is derived, never stored.
type Session struct {
	Kind      MediaKind
	Title     string
	TitleSort string

	// ShowTitle is the grandparent title: the show for episodes, the artist
	// for tracks. ParentTitle is the season or album.
	ShowTitle   string
	ParentTitle string

	Year     int
	ShowYear int

	DurationMS   int64
	ViewOffsetMS int64

	Genres    []string
	Directors []string

	// Usernames are the account aliases that own the session.
	Usernames []string

	Season  int
	Episode int

	// GUIDs are external catalog ids embedded in the server's own metadata,
	// e.g. "tmdb://603" or "imdb://tt0133093".
	GUIDs []string
}

// RemainingSeconds returns the playback time left, floored to whole seconds.
// It must be recomputed every poll since the view offset advances.
func (s Session) RemainingSeconds() int64 {
	remaining := (s.DurationMS - s.ViewOffsetMS) / 1000
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DisplayTitle returns the sortable title when the server provides one,
// falling back to the plain title.
func (s Session) DisplayTitle() string {
	if s.TitleSort != "" {
		return s.TitleSort
	}
	return s.Title
}

// OwnedBy reports whether any of the session's owning aliases matches the
// given username, compared case-insensitively.
func (s Session) OwnedBy(username string) bool {
	for _, alias := range s.Usernames {
		if strings.EqualFold(alias, username) {
			return true
		}
	}
	return false
}
