package canvas

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	httpclient "github.com/appleboy/go-httpclient"
)

// ClientConfig contains everything needed to talk to the platform's
// OAuth2 service and REST API.
type ClientConfig struct {
	BaseURL            string // e.g. https://canvas.example.edu
	APIURL             string // e.g. https://canvas.example.edu/api/v1
	ClientID           string
	ClientSecret       string
	RedirectURL        string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Client drives the platform's OAuth2 token endpoint and the bearer
// profile probe. Token calls are single-shot: a failed exchange is
// terminal for the request that triggered it.
type Client struct {
	oauth  *oauth2.Config
	apiURL string
	http   *http.Client
}

func New(cfg ClientConfig) (*Client, error) {
	if cfg.InsecureSkipVerify {
		log.Printf("WARNING: OAuth TLS verification is disabled (OAUTH_INSECURE_SKIP_VERIFY=true)")
	}

	hc, err := httpclient.NewClient(
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth HTTP client: %w", err)
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  fmt.Sprintf("%s/login/oauth2/auth", cfg.BaseURL),
				TokenURL: fmt.Sprintf("%s/login/oauth2/token", cfg.BaseURL),
			},
		},
		apiURL: cfg.APIURL,
		http:   hc,
	}, nil
}

// AuthCodeURL returns the platform authorization URL users are sent to
// when no usable token exists for them.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades a one-time authorization code for a token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.oauth.Exchange(c.withHTTPClient(ctx), code)
}

// RefreshToken obtains a fresh access token with the refresh_token grant.
// The returned token may omit a rotated refresh token; callers keep the
// old one in that case.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ts := c.oauth.TokenSource(c.withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	return ts.Token()
}

// ProbeProfile tests an access token against the platform's profile API.
// The token is considered rejected when the response is HTTP 401 or
// carries a WWW-Authenticate header; any other response accepts it.
func (c *Client) ProbeProfile(ctx context.Context, userID int64, accessToken string) (bool, error) {
	url := fmt.Sprintf("%s/users/%d/profile", c.apiURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("profile probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("WWW-Authenticate") == "" && resp.StatusCode != http.StatusUnauthorized {
		return true, nil
	}
	return false, nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}
