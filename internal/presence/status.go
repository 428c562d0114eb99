// Package presence builds "now playing" statuses from playback sessions and
// publishes them to Discord Rich Presence.
package presence

import (
	"fmt"
	"strings"

	"github.com/plexistence/plexistence/internal/metadata"
	"github.com/plexistence/plexistence/internal/plex"
)

const (
	posterBaseURL = "https://image.tmdb.org/t/p/original"

	// Named assets uploaded to the Discord application, used when no poster
	// is available.
	fallbackImageMovie = "movie"
	fallbackImageTV    = "tv"
	fallbackImageMusic = "music"
)

// Button is an action link shown under the presence status.
type Button struct {
	Label string
	URL   string
}

// Status is a normalized presence record ready for publishing. Image is
// either a named asset key or a fully qualified image URL.
type Status struct {
	Primary          string
	Secondary        string
	Image            string
	ImageText        string
	RemainingSeconds int64
	Buttons          []Button
}

// BuildMovie builds the status for a movie session. In minimal mode the
// primary line is the bare title; otherwise the year is appended and a
// secondary line is assembled from the first genre and director tags. The
// secondary line is only set when at least two detail fragments exist.
func BuildMovie(session plex.Session, record *metadata.Record, minimal bool) Status {
	status := Status{
		RemainingSeconds: session.RemainingSeconds(),
		ImageText:        session.Title,
	}

	if minimal {
		status.Primary = session.Title
	} else {
		status.Primary = fmt.Sprintf("%s (%d)", session.Title, session.Year)

		var details []string
		if len(session.Genres) > 0 {
			details = append(details, session.Genres[0])
		}
		if len(session.Directors) > 0 {
			details = append(details, "Dir. "+session.Directors[0])
		}
		if len(details) > 1 {
			status.Secondary = strings.Join(details, ", ")
		}
	}

	applyRecord(&status, record, fallbackImageMovie)
	return status
}

// BuildEpisode builds the status for an episode session. The primary line is
// the show title; the secondary line is the episode title with the season and
// episode numbers appended when both are known.
func BuildEpisode(session plex.Session, record *metadata.Record) Status {
	status := Status{
		Primary:          session.ShowTitle,
		Secondary:        session.Title,
		RemainingSeconds: session.RemainingSeconds(),
		ImageText:        session.ShowTitle,
	}

	if session.Season > 0 && session.Episode > 0 {
		status.Secondary += fmt.Sprintf(" (S%d:E%d)", session.Season, session.Episode)
	}

	applyRecord(&status, record, fallbackImageTV)
	return status
}

// BuildTrack builds the status for a music session. Music has no catalog
// integration: the image is always the music asset and there are no buttons
// beyond the promotional one appended at publish time.
func BuildTrack(session plex.Session) Status {
	return Status{
		Primary:          session.DisplayTitle(),
		Secondary:        "by " + session.ShowTitle,
		Image:            fallbackImageMusic,
		ImageText:        session.ParentTitle,
		RemainingSeconds: session.RemainingSeconds(),
	}
}

// applyRecord fills the image and detail-page button from a catalog match,
// falling back to a named asset when there is no match or no poster.
func applyRecord(status *Status, record *metadata.Record, fallback string) {
	if record == nil {
		status.Image = fallback
		return
	}

	if record.PosterPath != "" {
		status.Image = posterBaseURL + record.PosterPath
	} else if record.FromTrakt {
		status.Image = fallbackImageTV
	} else {
		status.Image = fallback
	}

	if record.FromTrakt {
		status.Buttons = []Button{{
			Label: "Trakt.tv",
			URL:   fmt.Sprintf("https://trakt.tv/%ss/%d", record.Kind, record.ID),
		}}
	} else {
		status.Buttons = []Button{{
			Label: "TMDB",
			URL:   fmt.Sprintf("https://themoviedb.org/%s/%d", record.Kind, record.ID),
		}}
	}
}
