package presence

import (
	"context"
	"fmt"

	"github.com/plexistence/plexistence/internal/metadata"
	"github.com/plexistence/plexistence/internal/plex"
)

// Builder turns a selected playback session into a presence status,
// consulting the metadata resolver for movies and episodes.
type Builder struct {
	resolver *metadata.Resolver
	minimal  bool
}

// NewBuilder returns a Builder. minimal suppresses the year suffix and the
// detail line on movie statuses.
func NewBuilder(resolver *metadata.Resolver, minimal bool) *Builder {
	return &Builder{resolver: resolver, minimal: minimal}
}

// Build dispatches on the session kind. The selector only hands over known
// kinds; anything else here is a programming error.
func (b *Builder) Build(ctx context.Context, session plex.Session) (Status, error) {
	switch session.Kind {
	case plex.KindMovie:
		record := b.resolver.Resolve(ctx, session.Title, session.Year, plex.KindMovie, session.GUIDs)
		return BuildMovie(session, record, b.minimal), nil
	case plex.KindEpisode:
		record := b.resolver.Resolve(ctx, session.ShowTitle, session.ShowYear, plex.KindEpisode, session.GUIDs)
		return BuildEpisode(session, record), nil
	case plex.KindTrack:
		return BuildTrack(session), nil
	default:
		return Status{}, fmt.Errorf("unsupported session kind %q", session.Kind)
	}
}
