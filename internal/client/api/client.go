// Package api is a client for the vault REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type CredentialInput struct {
	Label  string `json:"label"`
	Site   string `json:"site"`
	Secret string `json:"secret"`
}

// Credential carries Secret only when fetched by id.
type Credential struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Site      string    `json:"site"`
	Secret    string    `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the API at baseURL, e.g. http://127.0.0.1:8000.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type errorBody struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors"`
}

func sentinelFor(status int, detail string) error {
	switch status {
	case http.StatusUnauthorized:
		if detail == "token expired" {
			return common.ErrTokenExpired
		}
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusUnprocessableEntity:
		return common.ErrorValidation
	case http.StatusBadRequest:
		if detail == common.ErrDuplicateEmail.Error() {
			return common.ErrDuplicateEmail
		}
	case http.StatusInternalServerError:
		if detail == common.ErrCredentialCorrupted.Error() {
			return common.ErrCredentialCorrupted
		}
		return common.ErrorInternal
	}
	return nil
}

// do sends in as JSON (when not nil) and decodes a 2xx body into out (when
// not nil).
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&eb)
		if eb.Detail == "" {
			eb.Detail = http.StatusText(resp.StatusCode)
		}
		return &Error{
			StatusCode: resp.StatusCode,
			Detail:     eb.Detail,
			Fields:     eb.Errors,
			sentinel:   sentinelFor(resp.StatusCode, eb.Detail),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/users/register", "", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	var t Token
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/users/login", "", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) AddCredential(ctx context.Context, token string, in CredentialInput) (*Credential, error) {
	var cr Credential
	if err := c.do(ctx, http.MethodPost, "/credentials", token, in, &cr); err != nil {
		return nil, err
	}
	return &cr, nil
}

func (c *Client) ListCredentials(ctx context.Context, token string) ([]Credential, error) {
	var out []Credential
	if err := c.do(ctx, http.MethodGet, "/credentials", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCredential(ctx context.Context, token, id string) (*Credential, error) {
	var cr Credential
	if err := c.do(ctx, http.MethodGet, "/credentials/"+url.PathEscape(id), token, nil, &cr); err != nil {
		return nil, err
	}
	return &cr, nil
}

func (c *Client) UpdateCredential(ctx context.Context, token, id string, in CredentialInput) (*Credential, error) {
	var cr Credential
	if err := c.do(ctx, http.MethodPut, "/credentials/"+url.PathEscape(id), token, in, &cr); err != nil {
		return nil, err
	}
	return &cr, nil
}

func (c *Client) DeleteCredential(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/credentials/"+url.PathEscape(id), token, nil, nil)
}

// Health reports whether the server answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}
