package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubUser is the slice of GitHub's /user response we care about.
// GitHub returns a much larger object — we only unmarshal what we need.
type GitHubUser struct {
	ID    int64  `json:"id"`    // GitHub's numeric user ID — stable, never changes
	Login string `json:"login"` // GitHub username
	Email string `json:"email"` // primary public email (empty if hidden)
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub authorization-code
// flow, the alternate sign-in path next to email/password.
//
// The code-for-token exchange happens server-to-server using the client
// secret; the access token never reaches the browser. We use it once, to
// fetch the user's profile, and then discard it — our own signed token is
// what clients hold afterwards.
type GitHubProvider struct {
	config *oauth2.Config
}

// NewGitHubProvider creates a provider from OAuth App credentials.
// callbackURL must exactly match the "Authorization callback URL" registered
// with GitHub, e.g. "http://localhost:8080/auth/github/callback".
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

// AuthURL returns the GitHub authorization URL to redirect the user to.
// state is a random single-use value verified on callback (CSRF protection).
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the GitHub user's profile.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that attaches the
	// Authorization header to every request automatically.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var ghUser GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}

	if ghUser.ID == 0 {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	return &ghUser, nil
}
