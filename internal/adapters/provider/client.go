package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Session is the credential pair minted by the identity provider. It is
// returned to the caller and never persisted here.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Client talks to a GoTrue-compatible identity provider using the
// service-role key.
type Client interface {
	CreateUser(ctx context.Context, email, password string, metadata map[string]interface{}) (string, error)
	SetPassword(ctx context.Context, userID, password string) error
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
}

type httpClient struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewHTTPClient(baseURL, serviceKey string, timeout time.Duration) Client {
	return &httpClient{baseURL: baseURL, serviceKey: serviceKey, client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) CreateUser(ctx context.Context, email, password string, metadata map[string]interface{}) (string, error) {
	payload := map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": metadata,
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/admin/users", payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("provider returned no user id")
	}
	return resp.ID, nil
}

func (c *httpClient) SetPassword(ctx context.Context, userID, password string) error {
	payload := map[string]interface{}{"password": password}
	return c.do(ctx, http.MethodPut, "/auth/v1/admin/users/"+userID, payload, nil)
}

func (c *httpClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]interface{}{"email": email, "password": password}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", payload, &session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		return nil, fmt.Errorf("provider returned incomplete session")
	}
	return &session, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	op := func() error {
		body, err := json.Marshal(payload)
		if err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("apikey", c.serviceKey)
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
		res, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode >= 500 {
			return fmt.Errorf("provider error: %d", res.StatusCode)
		}
		if res.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("provider rejected request: %d", res.StatusCode))
		}
		if out != nil {
			if err := json.NewDecoder(res.Body).Decode(out); err != nil {
				return backoff.Permanent(err)
			}
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 3 * time.Second
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}
