package plex

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog/log"

	"github.com/plexistence/plexistence/internal/config"
	"github.com/plexistence/plexistence/internal/httpclient"
)

const (
	plexTVBaseURL = "https://plex.tv"

	productName      = "Plexistence"
	clientIdentifier = "plexistence"
)

// Account is an authenticated plex.tv account handle.
type Account struct {
	client  *http.Client
	baseURL string
	token   string
}

type signinResponse struct {
	AuthToken string `json:"authToken"`
}

type userResponse struct {
	Username string `json:"username"`
}

// Login authenticates with plex.tv. A cached token from cfg.TokenFile is
// tried first; when absent or stale, a credential sign-in is performed and
// the fresh token is cached for the next start.
func Login(ctx context.Context, cfg config.PlexConfig) (*Account, error) {
	account := &Account{
		client:  httpclient.NewTraceClient("plex.tv", cfg.Timeout),
		baseURL: plexTVBaseURL,
	}

	if token, err := os.ReadFile(cfg.TokenFile); err == nil {
		account.token = strings.TrimSpace(string(token))
		if err := account.verifyToken(ctx); err == nil {
			log.Info().Msg("Authenticated with Plex using cached token")
			return account, nil
		} else {
			log.Error().Err(err).Msg("Failed to authenticate with Plex using cached token")
			account.token = ""
		}
	}

	password := cfg.Password
	if cfg.TwoFactor {
		code := promptVerificationCode()
		if code == "" {
			log.Warn().Msg("Two-Factor Authentication is enabled but code was not supplied")
		} else {
			password += code
		}
	}

	if err := account.signIn(ctx, cfg.Username, password); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Plex: %w", err)
	}

	log.Info().Msg("Authenticated with Plex")

	if err := atomic.WriteFile(cfg.TokenFile, strings.NewReader(account.token)); err != nil {
		log.Error().Err(err).Str("path", cfg.TokenFile).
			Msg("Failed to save Plex authentication token for future logins")
	}

	return account, nil
}

// promptVerificationCode reads a two-factor verification code from the
// terminal. An empty read means the user declined to supply one.
func promptVerificationCode() string {
	fmt.Print("Enter Verification Code: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}

	return strings.TrimSpace(code)
}

func (a *Account) signIn(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("login", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/api/v2/users/signin", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	a.setPlexHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("sign-in request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("plex.tv returned status %d", resp.StatusCode)
	}

	var signin signinResponse
	if err := decodeJSONBody(resp, &signin); err != nil {
		return err
	}
	if signin.AuthToken == "" {
		return fmt.Errorf("plex.tv sign-in response carried no auth token")
	}

	a.token = signin.AuthToken
	return nil
}

func (a *Account) verifyToken(ctx context.Context) error {
	var user userResponse
	return httpclient.GetJSON(ctx, a.client, a.baseURL+"/api/v2/user", a.headers(), &user)
}

func (a *Account) headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("X-Plex-Product", productName)
	h.Set("X-Plex-Client-Identifier", clientIdentifier)
	if a.token != "" {
		h.Set("X-Plex-Token", a.token)
	}
	return h
}

func (a *Account) setPlexHeaders(req *http.Request) {
	for key, values := range a.headers() {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}
}
