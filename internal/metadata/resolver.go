// Package metadata resolves a playing title against the TMDB catalog, with an
// optional Trakt cross-reference keyed by the Plex item's embedded guid.
package metadata

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/plexistence/plexistence/internal/config"
	"github.com/plexistence/plexistence/internal/httpclient"
	"github.com/plexistence/plexistence/internal/plex"
)

// Record is the best catalog match for a playing title. Absence of a match is
// common and is not an error; records are rebuilt per lookup, never persisted.
type Record struct {
	ID   int64
	Kind string // "movie" or "tv" for TMDB matches, "movie" or "episode" for Trakt

	// PosterPath is the TMDB poster path ("/abc.jpg"), empty when unknown.
	PosterPath string

	// FromTrakt marks records resolved through the Trakt cross-reference.
	FromTrakt bool
}

// Resolver performs catalog lookups. It is safe to reuse across polls; no
// lookup state is retained beyond the one-time disabled warning.
type Resolver struct {
	tmdb  config.TMDBConfig
	trakt config.TraktConfig

	client       *http.Client
	tmdbBaseURL  string
	traktBaseURL string

	warnedDisabled bool
}

// NewResolver builds a resolver from the catalog configuration.
func NewResolver(tmdb config.TMDBConfig, trakt config.TraktConfig) *Resolver {
	return &Resolver{
		tmdb:         tmdb,
		trakt:        trakt,
		client:       httpclient.NewTraceClient("metadata", 30*time.Second),
		tmdbBaseURL:  tmdbAPIBaseURL,
		traktBaseURL: traktAPIBaseURL,
	}
}

// Resolve returns the best catalog match for a title, or nil when no match is
// found or the catalog integration is disabled. Lookup failures are logged
// and reported as "no match"; they never abort the caller's pipeline.
//
// When the Trakt cross-reference is enabled and the session carries a guid,
// it is consulted first; a miss falls through to the TMDB search.
func (r *Resolver) Resolve(ctx context.Context, title string, year int, kind plex.MediaKind, guids []string) *Record {
	if record := r.resolveTrakt(ctx, title, year, kind, guids); record != nil {
		return record
	}

	if !r.tmdb.Enabled {
		if !r.warnedDisabled {
			log.Warn().Msg("TMDB disabled, some features will not be available")
			r.warnedDisabled = true
		}
		return nil
	}

	return r.searchTMDB(ctx, title, year, kind)
}
