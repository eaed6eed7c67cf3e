package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/iudanet/sessionkeeper/pkg/api"
)

const (
	// DefaultProfilePath - путь профиля текущего клиента
	DefaultProfilePath = "/clients/mypage"
	// DefaultTimeout - таймаут HTTP запроса
	DefaultTimeout = 30 * time.Second
	// RequestIDHeader несёт идентификатор запроса для корреляции логов сервера
	RequestIDHeader = "X-Request-ID"
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Client представляет HTTP клиент профильного сервиса
type Client struct {
	transport   http.RoundTripper
	baseURL     string
	profilePath string
	timeout     time.Duration
}

// Option настраивает Client
type Option func(*Client)

// WithTimeout задает таймаут запроса
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithProfilePath переопределяет путь профиля
func WithProfilePath(path string) Option { return func(c *Client) { c.profilePath = path } }

// WithHTTPTransport подменяет базовый транспорт (под bearer-транспортом)
func WithHTTPTransport(rt http.RoundTripper) Option { return func(c *Client) { c.transport = rt } }

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		profilePath: DefaultProfilePath,
		timeout:     DefaultTimeout,
		transport:   http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetProfile запрашивает профиль владельца accessToken
func (c *Client) GetProfile(ctx context.Context, accessToken string) (*api.ProfileResponse, error) {
	var resp api.ProfileResponse
	if err := c.doRequest(ctx, accessToken, http.MethodGet, c.profilePath, &resp); err != nil {
		return nil, fmt.Errorf("get profile request failed: %w", err)
	}
	return &resp, nil
}

// httpClient собирает клиент, который подставляет bearer токен в каждый запрос
func (c *Client) httpClient(accessToken string) *http.Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return &http.Client{
		Timeout:   c.timeout,
		Transport: &oauth2.Transport{Source: source, Base: c.transport},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Ограничиваем количество редиректов
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, accessToken, method, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.httpClient(accessToken).Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			statusErr.Message = errResp.Message
			if statusErr.Message == "" {
				statusErr.Message = errResp.Error
			}
		}
		return statusErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
