package metadata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/plexistence/plexistence/internal/httpclient"
	"github.com/plexistence/plexistence/internal/plex"
)

const tmdbAPIBaseURL = "https://api.themoviedb.org/3"

type tmdbSearchResponse struct {
	Results []tmdbResult `json:"results"`
}

type tmdbResult struct {
	ID           int64  `json:"id"`
	MediaType    string `json:"media_type"`
	Title        string `json:"title"` // movies
	Name         string `json:"name"`  // tv
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
}

// tmdbKind maps a session kind to the media_type TMDB reports for it.
func tmdbKind(kind plex.MediaKind) string {
	if kind == plex.KindEpisode {
		return "tv"
	}
	return "movie"
}

// searchTMDB runs a fuzzy multi-kind search and returns the first candidate
// passing all active filters: kind must match, displayed name must equal the
// title case-insensitively, and when a year is known the release date must
// start with it.
func (r *Resolver) searchTMDB(ctx context.Context, title string, year int, kind plex.MediaKind) *Record {
	searchURL := fmt.Sprintf("%s/search/multi?api_key=%s&query=%s",
		r.tmdbBaseURL, r.tmdb.APIKey, url.QueryEscape(title))

	var payload tmdbSearchResponse
	if err := httpclient.GetJSON(ctx, r.client, searchURL, nil, &payload); err != nil {
		log.Error().Err(err).Str("title", title).Int("year", year).
			Msg("Failed to fetch metadata")
		return nil
	}

	wantKind := tmdbKind(kind)

	for _, entry := range payload.Results {
		if entry.MediaType != wantKind {
			continue
		}
		if !strings.EqualFold(title, entry.DisplayName()) {
			continue
		}
		if year > 0 && !strings.HasPrefix(entry.Date(), strconv.Itoa(year)) {
			continue
		}

		return &Record{
			ID:         entry.ID,
			Kind:       entry.MediaType,
			PosterPath: entry.PosterPath,
		}
	}

	log.Warn().Str("title", title).Int("year", year).Msg("Could not locate metadata")
	return nil
}

// lookupPosterPath is a best-effort kind-specific search used to decorate a
// Trakt match with a TMDB poster. Failures yield an empty path.
func (r *Resolver) lookupPosterPath(ctx context.Context, title string, year int, kind plex.MediaKind) string {
	if !r.tmdb.Enabled {
		return ""
	}

	searchURL := fmt.Sprintf("%s/search/%s?api_key=%s&query=%s&first_air_date_year=%d&include_adult=true&page=1",
		r.tmdbBaseURL, tmdbKind(kind), r.tmdb.APIKey, url.QueryEscape(title), year)

	var payload tmdbSearchResponse
	if err := httpclient.GetJSON(ctx, r.client, searchURL, nil, &payload); err != nil {
		log.Debug().Err(err).Str("title", title).Msg("Poster lookup failed")
		return ""
	}

	if len(payload.Results) == 0 {
		return ""
	}
	return payload.Results[0].PosterPath
}

// DisplayName returns the candidate's displayed name; TMDB uses "title" for
// movies and "name" for tv.
func (e tmdbResult) DisplayName() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Name
}

// Date returns the candidate's release or first-air date.
func (e tmdbResult) Date() string {
	if e.ReleaseDate != "" {
		return e.ReleaseDate
	}
	return e.FirstAirDate
}
