package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestAuthCodeURLCarriesStateAndChallenge(t *testing.T) {
	a := New("client-id", "client-secret", "http://localhost:8180/")
	verifier := a.GenerateVerifier()

	raw := a.AuthCodeURL("state-123", verifier)
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}

	q := parsed.Query()
	if q.Get("state") != "state-123" {
		t.Errorf("expected state state-123, got %q", q.Get("state"))
	}
	if q.Get("client_id") != "client-id" {
		t.Errorf("expected client_id, got %q", q.Get("client_id"))
	}
	if q.Get("code_challenge") == "" || q.Get("code_challenge_method") != "S256" {
		t.Errorf("expected S256 PKCE challenge, got method %q", q.Get("code_challenge_method"))
	}
	if q.Get("access_type") != "offline" {
		t.Errorf("expected access_type offline, got %q", q.Get("access_type"))
	}
	if q.Get("redirect_uri") != "http://localhost:8180/google_oauth/" {
		t.Errorf("unexpected redirect_uri %q", q.Get("redirect_uri"))
	}
}

func TestExchangeAndFetchProfile(t *testing.T) {
	var gotVerifier string
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse token form: %v", err)
		}
		gotVerifier = r.Form.Get("code_verifier")
		if r.Form.Get("code") != "auth-code" {
			t.Errorf("expected code auth-code, got %q", r.Form.Get("code"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-abc",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	profileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), "token-abc") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Profile{ID: "g-1", Email: "avery@example.com", Name: "Avery"})
	}))
	defer profileServer.Close()

	a := New("client-id", "client-secret", "http://localhost:8180/")
	a.cfg.Endpoint = oauth2.Endpoint{AuthURL: tokenServer.URL + "/auth", TokenURL: tokenServer.URL + "/token"}
	a.profileURL = profileServer.URL

	ctx := context.Background()
	verifier := a.GenerateVerifier()
	token, err := a.Exchange(ctx, "auth-code", verifier)
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if gotVerifier != verifier {
		t.Errorf("token request carried verifier %q, want %q", gotVerifier, verifier)
	}

	profile, err := a.FetchProfile(ctx, token)
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if profile.Email != "avery@example.com" {
		t.Errorf("expected email avery@example.com, got %q", profile.Email)
	}
}

func TestFetchProfileRejectsMissingEmail(t *testing.T) {
	profileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "g-2"})
	}))
	defer profileServer.Close()

	a := New("client-id", "client-secret", "http://localhost:8180/")
	a.profileURL = profileServer.URL

	_, err := a.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "t"})
	if err == nil {
		t.Fatal("expected error for profile without email")
	}
}
