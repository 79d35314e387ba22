package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hvariant/shreddit2/internal/config"
	"github.com/hvariant/shreddit2/internal/errors"
)

const (
	// DefaultAuthURL is the OAuth2 token endpoint.
	DefaultAuthURL = "https://www.reddit.com/api/v1/access_token"

	// DefaultBaseURL serves every authenticated API call.
	DefaultBaseURL = "https://oauth.reddit.com"
)

// Client is an authenticated Reddit API client for a single script-app account.
type Client struct {
	authURL    string
	baseURL    string
	creds      config.Credentials
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithAuthURL overrides the token endpoint.
func WithAuthURL(u string) Option {
	return func(c *Client) { c.authURL = strings.TrimRight(u, "/") }
}

// WithBaseURL overrides the API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client. Call Login before any other method.
func NewClient(creds config.Credentials, opts ...Option) *Client {
	c := &Client{
		authURL: DefaultAuthURL,
		baseURL: DefaultBaseURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tokenResponse is the body of the access_token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
}

// Login exchanges the account password for a bearer token.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.creds.Username},
		"password":   {c.creds.Password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.NewAuthFailed("client id or secret rejected")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewRedditAPI(http.MethodPost, req.URL.Path, resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("unmarshal token response: %w", err)
	}
	if tok.Error != "" {
		return errors.NewAuthFailed(tok.Error)
	}
	if tok.AccessToken == "" {
		return errors.NewAuthFailed("no access token in response")
	}

	c.token = tok.AccessToken
	return nil
}

// Me returns the name of the authenticated account.
func (c *Client) Me(ctx context.Context) (string, error) {
	var me struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/api/v1/me", nil, &me); err != nil {
		return "", fmt.Errorf("get identity: %w", err)
	}
	if me.Name == "" {
		return "", errors.NewAuthFailed("identity has no name")
	}
	return me.Name, nil
}

// postResponse is the api_type=json envelope of write endpoints.
type postResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
	} `json:"json"`
}

// EditComment replaces the body of the comment with the given fullname.
func (c *Client) EditComment(ctx context.Context, fullname, text string) error {
	form := url.Values{
		"thing_id": {fullname},
		"text":     {text},
		"api_type": {"json"},
	}

	var out postResponse
	if err := c.post(ctx, "/api/editusertext", form, &out); err != nil {
		return fmt.Errorf("edit %s: %w", fullname, err)
	}
	if len(out.JSON.Errors) > 0 {
		return errors.NewRedditAPI(http.MethodPost, "/api/editusertext", http.StatusOK, fmt.Sprint(out.JSON.Errors))
	}
	return nil
}

// Delete removes the comment or submission with the given fullname.
func (c *Client) Delete(ctx context.Context, fullname string) error {
	if err := c.post(ctx, "/api/del", url.Values{"id": {fullname}}, nil); err != nil {
		return fmt.Errorf("delete %s: %w", fullname, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, path, result)
}

func (c *Client) post(ctx context.Context, path string, form url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, path, result)
}

// do sends an authenticated request and decodes a JSON body into result (if non-nil).
func (c *Client) do(req *http.Request, path string, result any) error {
	if c.token == "" {
		return errors.NewAuthFailed("not logged in")
	}
	req.Header.Set("Authorization", "bearer "+c.token)
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return errors.NewCancelled(req.Method + " " + path)
		}
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewRedditAPI(req.Method, path, resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
