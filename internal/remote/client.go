// Package remote is the HTTP client for the Remote Post Store: list, create, update and delete
// on a JSON `posts` collection.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-feed/internal/config"
	"github.com/debemdeboas/the-feed/internal/model"
)

var remoteLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	remoteLogger = l
}

const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Client talks to the store at a fixed base URL. It never retries and sets no timeout of its
// own.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a client from the remote section of the config.
func NewClientFromConfig(cfg config.RemoteConfig) *Client {
	return NewClient(cfg.BaseURL, WithUserAgent(cfg.UserAgent))
}

func (c *Client) collectionURL() string {
	return c.baseURL + config.PostsPath
}

func (c *Client) postURL(id model.PostID) string {
	return c.collectionURL() + "/" + url.PathEscape(string(id))
}

// List returns the collection in store order (oldest first).
func (c *Client) List(ctx context.Context) ([]model.Post, error) {
	posts := make([]model.Post, 0)
	if err := c.do(ctx, OpList, http.MethodGet, c.collectionURL(), nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) Create(ctx context.Context, in model.PostInput) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, OpCreate, http.MethodPost, c.collectionURL(), in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Update replaces the post identified by id with in.
func (c *Client) Update(ctx context.Context, id model.PostID, in model.PostInput) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, OpUpdate, http.MethodPut, c.postURL(id), in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) Delete(ctx context.Context, id model.PostID) error {
	return c.do(ctx, OpDelete, http.MethodDelete, c.postURL(id), nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, target string, body any, out any) error {
	fail := func(status int, err error) error {
		return &RequestError{Op: op, Method: method, URL: target, StatusCode: status, Err: err}
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("error encoding request: %w", err))
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set(config.HAccept, config.CTypeJSON)
	if body != nil {
		req.Header.Set(config.HCType, config.CTypeJSON)
	}
	if c.userAgent != "" {
		req.Header.Set(config.HUserAgent, c.userAgent)
	}

	remoteLogger.Debug().Str("op", op).Str("method", method).Str("url", target).Msg("Sending request")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fail(res.StatusCode, fmt.Errorf("error reading response: %w", err))
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fail(res.StatusCode, fmt.Errorf("%w: %s", ErrUnexpectedStatus, strings.TrimSpace(string(data))))
	}

	remoteLogger.Debug().Str("op", op).Int("status", res.StatusCode).Int("bytes", len(data)).Msg("Received response")

	if out == nil || (len(bytes.TrimSpace(data)) == 0 && method != http.MethodGet) {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fail(res.StatusCode, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	return nil
}
