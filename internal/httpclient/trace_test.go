package httpclient

import (
	"net/url"
	"strings"
	"testing"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "api key redacted",
			url:  "https://api.themoviedb.org/3/search/multi?api_key=secret&query=Arrival",
			want: "api_key=redacted",
		},
		{
			name: "plex token redacted",
			url:  "https://plex.tv/api/v2/resources?X-Plex-Token=secret",
			want: "x-plex-token=redacted",
		},
		{
			name: "plain query untouched",
			url:  "https://api.trakt.tv/search/imdb/tt2543164?type=movie",
			want: "type=movie",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			if err != nil {
				t.Fatalf("failed to parse url: %v", err)
			}

			got := redactURL(u)
			if !strings.Contains(strings.ToLower(got), tt.want) {
				t.Errorf("redactURL() = %q, want it to contain %q", got, tt.want)
			}
			if strings.Contains(got, "secret") {
				t.Errorf("redactURL() = %q, secret leaked", got)
			}
		})
	}
}
