// Package watcher runs the poll loop that ties session selection, status
// building and presence publishing together on a fixed cadence.
package watcher

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/plexistence/plexistence/internal/plex"
	"github.com/plexistence/plexistence/internal/presence"
)

// Discord rate-limits presence updates to one per 15 seconds, so polling
// faster buys nothing. The interval is a fixed sleep between iterations,
// not adjusted for how long the body took.
const defaultInterval = 15 * time.Second

// SessionSource lists the playback sessions currently active on the media
// server.
type SessionSource interface {
	Sessions(ctx context.Context) ([]plex.Session, error)
}

// StatusBuilder converts a selected session into a presence status.
type StatusBuilder interface {
	Build(ctx context.Context, session plex.Session) (presence.Status, error)
}

// StatusPublisher owns the presence connection lifecycle.
type StatusPublisher interface {
	Connect(ctx context.Context) error
	Publish(status presence.Status) bool
	Clear()
}

// Watcher is the poll loop orchestrator. The held presence connection inside
// the publisher is the only state carried across iterations.
type Watcher struct {
	source    SessionSource
	builder   StatusBuilder
	publisher StatusPublisher
	watched   []string
	interval  time.Duration
}

// New returns a Watcher broadcasting sessions owned by the watched usernames.
func New(source SessionSource, builder StatusBuilder, publisher StatusPublisher, watched []string) *Watcher {
	return &Watcher{
		source:    source,
		builder:   builder,
		publisher: publisher,
		watched:   watched,
		interval:  defaultInterval,
	}
}

// Run connects the publisher and polls until ctx is done. It returns the
// context's error; there is no other way out.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.publisher.Connect(ctx); err != nil {
		return err
	}

	for {
		w.poll(ctx)

		log.Debug().Dur("interval", w.interval).Msg("Sleeping until next poll")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// poll runs one loop body: fetch sessions, select, build, publish. Failures
// are logged and left for the next iteration; a failed publish triggers a
// reconnect so the next poll starts with a usable connection.
func (w *Watcher) poll(ctx context.Context) {
	sessions, err := w.source.Sessions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch sessions from Plex Media Server")
		return
	}

	session, ok := plex.SelectActive(sessions, w.watched)
	if !ok {
		log.Info().Msg("No active media sessions found for configured users")
		w.publisher.Clear()
		return
	}

	log.Info().
		Str("kind", string(session.Kind)).
		Str("title", session.Title).
		Msg("Fetched active media session")

	status, err := w.builder.Build(ctx, session)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build presence status")
		return
	}

	if !w.publisher.Publish(status) {
		log.Warn().Msg("Rich Presence connection lost, reconnecting")
		if err := w.publisher.Connect(ctx); err != nil {
			log.Debug().Err(err).Msg("Reconnect aborted")
		}
	}
}
