package plex

import "github.com/rs/zerolog/log"

// SelectActive picks at most one session to broadcast. Watched usernames are
// scanned in configured order and, for each, sessions in server-returned
// order; the first session owned by a watched username wins. The tie-break is
// deterministic: earliest watched username first, then earliest session.
//
// A matched session of an unknown kind is logged and treated as no match.
func SelectActive(sessions []Session, watched []string) (Session, bool) {
	if len(sessions) == 0 {
		return Session{}, false
	}

	for _, username := range watched {
		for _, session := range sessions {
			if !session.OwnedBy(username) {
				continue
			}

			if !session.Kind.Valid() {
				log.Error().
					Str("kind", string(session.Kind)).
					Str("title", session.Title).
					Msg("Fetched active media session of unknown type")
				return Session{}, false
			}

			return session, true
		}
	}

	return Session{}, false
}
