package metadata

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/plexistence/plexistence/internal/httpclient"
	"github.com/plexistence/plexistence/internal/plex"
)

const traktAPIBaseURL = "https://api.trakt.tv"

type traktSearchResult struct {
	Type    string     `json:"type"`
	Movie   *traktItem `json:"movie"`
	Episode *traktItem `json:"episode"`
}

type traktItem struct {
	Title string   `json:"title"`
	IDs   traktIDs `json:"ids"`
}

type traktIDs struct {
	Trakt int64 `json:"trakt"`
	TMDB  int64 `json:"tmdb"`
}

// traktKind maps a session kind to the type parameter Trakt expects.
func traktKind(kind plex.MediaKind) string {
	if kind == plex.KindEpisode {
		return "episode"
	}
	return "movie"
}

// resolveTrakt looks the session's first embedded guid up on Trakt's id
// cross-reference. It returns nil when the provider is disabled, the session
// carries no guid, the lookup misses, or the lookup fails; the caller then
// falls through to the TMDB search.
func (r *Resolver) resolveTrakt(ctx context.Context, title string, year int, kind plex.MediaKind, guids []string) *Record {
	if !r.trakt.Enabled || r.trakt.APIKey == "" || len(guids) == 0 {
		return nil
	}

	// Guids look like "imdb://tt0133093": provider before the scheme
	// separator, the provider's id after it.
	database, _, found := strings.Cut(guids[0], "://")
	if !found {
		return nil
	}
	guid := guids[0][strings.LastIndex(guids[0], "/")+1:]

	mediaType := traktKind(kind)
	searchURL := fmt.Sprintf("%s/search/%s/%s?type=%s", r.traktBaseURL, database, guid, mediaType)

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("trakt-api-version", "2")
	header.Set("trakt-api-key", r.trakt.APIKey)

	var results []traktSearchResult
	if err := httpclient.GetJSON(ctx, r.client, searchURL, header, &results); err != nil {
		log.Error().Err(err).Str("title", title).Int("year", year).
			Msg("Failed to fetch metadata from Trakt")
		return nil
	}

	if len(results) == 0 {
		return nil
	}

	var item *traktItem
	switch mediaType {
	case "episode":
		item = results[0].Episode
	case "movie":
		item = results[0].Movie
	}
	if item == nil || item.IDs.Trakt == 0 {
		return nil
	}

	record := &Record{
		ID:        item.IDs.Trakt,
		Kind:      mediaType,
		FromTrakt: true,
	}

	// A TMDB id on the Trakt side means a poster is probably findable.
	if item.IDs.TMDB != 0 {
		record.PosterPath = r.lookupPosterPath(ctx, title, year, kind)
	}

	return record
}
