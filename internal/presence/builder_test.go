package presence

import (
	"testing"

	"github.com/plexistence/plexistence/internal/metadata"
	"github.com/plexistence/plexistence/internal/plex"
)

func movieSession() plex.Session {
	return plex.Session{
		Kind:         plex.KindMovie,
		Title:        "Arrival",
		Year:         2016,
		DurationMS:   6_960_000,
		ViewOffsetMS: 1_200_000,
		Genres:       []string{"Drama"},
		Directors:    []string{"Denis Villeneuve"},
		Usernames:    []string{"alice"},
	}
}

func TestBuildMoviePrimaryLine(t *testing.T) {
	tests := []struct {
		name    string
		minimal bool
		want    string
	}{
		{"default mode includes year", false, "Arrival (2016)"},
		{"minimal mode is title alone", true, "Arrival"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := BuildMovie(movieSession(), nil, tt.minimal)
			if status.Primary != tt.want {
				t.Errorf("primary = %q, want %q", status.Primary, tt.want)
			}
		})
	}
}

func TestBuildMovieSecondaryLine(t *testing.T) {
	tests := []struct {
		name      string
		genres    []string
		directors []string
		want      string
	}{
		{"genre and director", []string{"Drama", "Sci-Fi"}, []string{"Denis Villeneuve"}, "Drama, Dir. Denis Villeneuve"},
		// A lone fragment is dropped: the line needs at least two.
		{"genre alone is dropped", []string{"Drama"}, nil, ""},
		{"director alone is dropped", nil, []string{"Denis Villeneuve"}, ""},
		{"no fragments", nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := movieSession()
			session.Genres = tt.genres
			session.Directors = tt.directors

			status := BuildMovie(session, nil, false)
			if status.Secondary != tt.want {
				t.Errorf("secondary = %q, want %q", status.Secondary, tt.want)
			}
		})
	}
}

func TestBuildMovieSecondarySuppressedInMinimalMode(t *testing.T) {
	session := movieSession()
	session.Genres = []string{"Drama", "Sci-Fi"}

	status := BuildMovie(session, nil, true)
	if status.Secondary != "" {
		t.Errorf("secondary = %q, want empty in minimal mode", status.Secondary)
	}
}

func TestBuildMovieWithoutMetadata(t *testing.T) {
	status := BuildMovie(movieSession(), nil, false)

	if status.Image != "movie" {
		t.Errorf("image = %q, want fallback key %q", status.Image, "movie")
	}
	if len(status.Buttons) != 0 {
		t.Errorf("buttons = %v, want none before publish", status.Buttons)
	}
	if status.ImageText != "Arrival" {
		t.Errorf("image text = %q, want %q", status.ImageText, "Arrival")
	}
	if status.RemainingSeconds != 5760 {
		t.Errorf("remaining = %d, want 5760", status.RemainingSeconds)
	}
}

func TestBuildMovieWithMetadata(t *testing.T) {
	record := &metadata.Record{ID: 329865, Kind: "movie", PosterPath: "/arrival.jpg"}

	status := BuildMovie(movieSession(), record, false)

	if want := "https://image.tmdb.org/t/p/original/arrival.jpg"; status.Image != want {
		t.Errorf("image = %q, want %q", status.Image, want)
	}
	if len(status.Buttons) != 1 {
		t.Fatalf("buttons = %v, want one detail-page button", status.Buttons)
	}
	if status.Buttons[0].Label != "TMDB" || status.Buttons[0].URL != "https://themoviedb.org/movie/329865" {
		t.Errorf("button = %+v", status.Buttons[0])
	}
}

func TestBuildMovieWithTraktMetadata(t *testing.T) {
	tests := []struct {
		name       string
		record     *metadata.Record
		wantImage  string
		wantButton string
	}{
		{
			name:       "trakt match with poster",
			record:     &metadata.Record{ID: 443, Kind: "movie", PosterPath: "/p.jpg", FromTrakt: true},
			wantImage:  "https://image.tmdb.org/t/p/original/p.jpg",
			wantButton: "https://trakt.tv/movies/443",
		},
		{
			name:       "trakt match without poster",
			record:     &metadata.Record{ID: 443, Kind: "episode", FromTrakt: true},
			wantImage:  "tv",
			wantButton: "https://trakt.tv/episodes/443",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := BuildMovie(movieSession(), tt.record, false)
			if status.Image != tt.wantImage {
				t.Errorf("image = %q, want %q", status.Image, tt.wantImage)
			}
			if len(status.Buttons) != 1 || status.Buttons[0].Label != "Trakt.tv" {
				t.Fatalf("buttons = %v, want one Trakt.tv button", status.Buttons)
			}
			if status.Buttons[0].URL != tt.wantButton {
				t.Errorf("button url = %q, want %q", status.Buttons[0].URL, tt.wantButton)
			}
		})
	}
}

func TestBuildEpisode(t *testing.T) {
	session := plex.Session{
		Kind:         plex.KindEpisode,
		Title:        "The Constant",
		ShowTitle:    "Lost",
		Season:       2,
		Episode:      5,
		DurationMS:   2_580_000,
		ViewOffsetMS: 60_000,
	}

	status := BuildEpisode(session, nil)

	if status.Primary != "Lost" {
		t.Errorf("primary = %q, want %q", status.Primary, "Lost")
	}
	if want := "The Constant (S2:E5)"; status.Secondary != want {
		t.Errorf("secondary = %q, want %q", status.Secondary, want)
	}
	if status.Image != "tv" {
		t.Errorf("image = %q, want fallback key %q", status.Image, "tv")
	}
	if status.ImageText != "Lost" {
		t.Errorf("image text = %q, want %q", status.ImageText, "Lost")
	}
}

func TestBuildEpisodeWithoutNumbering(t *testing.T) {
	session := plex.Session{
		Kind:      plex.KindEpisode,
		Title:     "Pilot",
		ShowTitle: "Lost",
	}

	status := BuildEpisode(session, nil)
	if status.Secondary != "Pilot" {
		t.Errorf("secondary = %q, want bare episode title", status.Secondary)
	}
}

func TestBuildTrack(t *testing.T) {
	session := plex.Session{
		Kind:         plex.KindTrack,
		Title:        "Everlong",
		TitleSort:    "Everlong",
		ShowTitle:    "Foo Fighters",
		ParentTitle:  "The Colour and the Shape",
		DurationMS:   250_000,
		ViewOffsetMS: 30_000,
	}

	status := BuildTrack(session)

	if status.Primary != "Everlong" {
		t.Errorf("primary = %q, want %q", status.Primary, "Everlong")
	}
	if want := "by Foo Fighters"; status.Secondary != want {
		t.Errorf("secondary = %q, want %q", status.Secondary, want)
	}
	if status.Image != "music" {
		t.Errorf("image = %q, want %q", status.Image, "music")
	}
	if status.ImageText != "The Colour and the Shape" {
		t.Errorf("image text = %q, want album title", status.ImageText)
	}
	if len(status.Buttons) != 0 {
		t.Errorf("buttons = %v, want none", status.Buttons)
	}
}
