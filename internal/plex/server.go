package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/plexistence/plexistence/internal/httpclient"
)

// Server is a live handle to a Plex Media Server.
type Server struct {
	name    string
	baseURL string
	token   string
	client  *http.Client
}

// resource is a plex.tv resource entry: a server (or player) reachable by
// the account, with its candidate connection URIs.
type resource struct {
	Name        string `json:"name"`
	Provides    string `json:"provides"`
	AccessToken string `json:"accessToken"`
	Connections []struct {
		URI   string `json:"uri"`
		Relay bool   `json:"relay"`
	} `json:"connections"`
}

type sessionsResponse struct {
	MediaContainer struct {
		Metadata []sessionItem `json:"Metadata"`
	} `json:"MediaContainer"`
}

type sessionItem struct {
	Type             string    `json:"type"`
	Title            string    `json:"title"`
	TitleSort        string    `json:"titleSort"`
	GrandparentTitle string    `json:"grandparentTitle"`
	ParentTitle      string    `json:"parentTitle"`
	Year             int       `json:"year"`
	Duration         int64     `json:"duration"`
	ViewOffset       int64     `json:"viewOffset"`
	ParentIndex      int       `json:"parentIndex"`
	Index            int       `json:"index"`
	User             plexUser  `json:"User"`
	Genre            []plexTag `json:"Genre"`
	Director         []plexTag `json:"Director"`
	Guid             []plexRef `json:"Guid"`
}

type plexUser struct {
	Title string `json:"title"`
}

type plexTag struct {
	Tag string `json:"tag"`
}

type plexRef struct {
	ID string `json:"id"`
}

// FindServer resolves the first configured server name that the account can
// reach and connects to it. Server names are compared case-insensitively in
// the configured order.
func (a *Account) FindServer(ctx context.Context, names []string) (*Server, error) {
	var resources []resource
	url := a.baseURL + "/api/v2/resources?includeHttps=1&includeRelay=1"
	if err := httpclient.GetJSON(ctx, a.client, url, a.headers(), &resources); err != nil {
		return nil, fmt.Errorf("failed to list plex.tv resources: %w", err)
	}

	var match *resource
	for _, name := range names {
		for i := range resources {
			if !strings.Contains(resources[i].Provides, "server") {
				continue
			}
			if strings.EqualFold(name, resources[i].Name) {
				match = &resources[i]
				break
			}
		}
		if match != nil {
			break
		}
	}

	if match == nil {
		return nil, fmt.Errorf("failed to locate configured Plex Media Server")
	}

	server, err := a.connect(ctx, match)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to configured Plex Media Server (%s): %w", match.Name, err)
	}

	log.Info().Str("server", server.name).Msg("Connected to Plex Media Server")
	return server, nil
}

// connect tries the resource's connection URIs in order, preferring direct
// connections over relays, and returns a handle for the first that answers.
func (a *Account) connect(ctx context.Context, res *resource) (*Server, error) {
	token := res.AccessToken
	if token == "" {
		token = a.token
	}

	candidates := make([]string, 0, len(res.Connections))
	for _, conn := range res.Connections {
		if !conn.Relay {
			candidates = append(candidates, conn.URI)
		}
	}
	for _, conn := range res.Connections {
		if conn.Relay {
			candidates = append(candidates, conn.URI)
		}
	}

	var lastErr error
	for _, uri := range candidates {
		server := &Server{
			name:    res.Name,
			baseURL: strings.TrimRight(uri, "/"),
			token:   token,
			client:  a.client,
		}
		if err := server.check(ctx); err != nil {
			log.Debug().Err(err).Str("uri", uri).Msg("Plex connection candidate unreachable")
			lastErr = err
			continue
		}
		return server, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("resource has no connections")
	}
	return nil, lastErr
}

func (s *Server) check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/identity", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("connection to %s failed: %w", s.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", s.baseURL, resp.StatusCode)
	}
	return nil
}

// Name returns the server's plex.tv resource name.
func (s *Server) Name() string {
	return s.name
}

// Sessions returns all playback sessions currently active on the server, in
// server-returned order.
func (s *Server) Sessions(ctx context.Context) ([]Session, error) {
	header := http.Header{}
	header.Set("X-Plex-Token", s.token)
	header.Set("Accept", "application/json")

	var payload sessionsResponse
	if err := httpclient.GetJSON(ctx, s.client, s.baseURL+"/status/sessions", header, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	sessions := make([]Session, 0, len(payload.MediaContainer.Metadata))
	for _, item := range payload.MediaContainer.Metadata {
		sessions = append(sessions, item.toSession())
	}
	return sessions, nil
}

func (item sessionItem) toSession() Session {
	session := Session{
		Kind:         MediaKind(item.Type),
		Title:        item.Title,
		TitleSort:    item.TitleSort,
		ShowTitle:    item.GrandparentTitle,
		ParentTitle:  item.ParentTitle,
		Year:         item.Year,
		DurationMS:   item.Duration,
		ViewOffsetMS: item.ViewOffset,
		Season:       item.ParentIndex,
		Episode:      item.Index,
	}

	if item.User.Title != "" {
		session.Usernames = append(session.Usernames, item.User.Title)
	}
	for _, genre := range item.Genre {
		session.Genres = append(session.Genres, genre.Tag)
	}
	for _, director := range item.Director {
		session.Directors = append(session.Directors, director.Tag)
	}
	for _, guid := range item.Guid {
		session.GUIDs = append(session.GUIDs, guid.ID)
	}

	return session
}

func decodeJSONBody(resp *http.Response, v any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
