// Package oauth wraps the Google OAuth2 login dance. The protocol itself is
// delegated to golang.org/x/oauth2; this package only assembles the config,
// runs the code exchange, and fetches the user profile.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// CallbackPath is where the provider redirects back to.
	CallbackPath = "/google_oauth/"

	profileURL = "https://www.googleapis.com/userinfo/v2/me"

	exchangeTimeout = 10 * time.Second
)

// Profile is the subset of the Google userinfo response we read.
type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Authenticator issues authorization URLs and completes code exchanges.
type Authenticator struct {
	cfg        *oauth2.Config
	profileURL string
	httpClient *http.Client
}

// New builds an authenticator for the given client credentials. rootURL is
// the public base URL with a trailing slash; the redirect URI is derived
// from it.
func New(clientID, clientSecret, rootURL string) *Authenticator {
	return &Authenticator{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  rootURL + "google_oauth/",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
		},
		profileURL: profileURL,
		httpClient: http.DefaultClient,
	}
}

// GenerateVerifier returns a fresh PKCE code verifier.
func (a *Authenticator) GenerateVerifier() string {
	return oauth2.GenerateVerifier()
}

// AuthCodeURL builds the provider authorization URL carrying the CSRF state
// and the PKCE challenge for the given verifier.
func (a *Authenticator) AuthCodeURL(state, verifier string) string {
	return a.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)
}

// Exchange trades the authorization code for a token.
func (a *Authenticator) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	token, err := a.cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return token, nil
}

// FetchProfile loads the user profile with the exchanged token.
func (a *Authenticator) FetchProfile(ctx context.Context, token *oauth2.Token) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.profileURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("build profile request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Profile{}, fmt.Errorf("profile endpoint returned %d: %s", resp.StatusCode, body)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if profile.Email == "" {
		return Profile{}, fmt.Errorf("profile has no email")
	}
	return profile, nil
}
