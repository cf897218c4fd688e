// Package client is a Go client of Photon API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/photon/internal/entities"
	"github.com/Decentr-net/photon/internal/imaging"
	"github.com/Decentr-net/photon/internal/server"
)

var log = logrus.WithField("layer", "client").WithField("package", "client")

// ErrUnauthenticated is returned when operation requires signed in user.
var ErrUnauthenticated = errors.New("unauthenticated")

// Error is an error returned by API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Is makes 401 responses match ErrUnauthenticated.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthenticated && e.StatusCode == http.StatusUnauthorized
}

// Option configures Client.
type Option func(c *Client)

// WithHTTPClient sets http client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// WithToken restores previously saved session.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// Client is a client of Photon API. It holds the session of signed in user.
type Client struct {
	baseURL string
	hc      *http.Client

	mu    sync.Mutex
	token string
	user  *entities.User
}

// New creates new instance of Client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		hc:      http.DefaultClient,
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// Token returns session token or empty string when user is not signed in.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.token
}

func (c *Client) setSession(token string, u *entities.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token, c.user = token, u
}

func (c *Client) clearSession() {
	c.setSession("", nil)
}

// SignUp creates account and starts session.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*entities.User, error) {
	var resp server.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/signup", server.SignUpRequest{
		Email:    email,
		Password: password,
		Name:     name,
	}, &resp); err != nil {
		return nil, err
	}

	c.setSession(resp.Token, resp.User)

	return resp.User, nil
}

// Login starts session.
func (c *Client) Login(ctx context.Context, email, password string) (*entities.User, error) {
	var resp server.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", server.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp); err != nil {
		return nil, err
	}

	c.setSession(resp.Token, resp.User)

	return resp.User, nil
}

// Logout revokes session. Local session is cleared even when the remote call fails.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}

	defer c.clearSession()

	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/logout", nil, nil); err != nil && !errors.Is(err, ErrUnauthenticated) {
		return err
	}

	return nil
}

// CurrentUser returns signed in user; it is fetched once and cached.
// It returns nil when there is no session.
func (c *Client) CurrentUser(ctx context.Context) (*entities.User, error) {
	c.mu.Lock()
	token, u := c.token, c.user
	c.mu.Unlock()

	if token == "" {
		return nil, nil
	}
	if u != nil {
		return u, nil
	}

	u = &entities.User{}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/me", nil, u); err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			c.clearSession()
			return nil, nil
		}
		return nil, err
	}

	c.mu.Lock()
	if c.token == token {
		c.user = u
	}
	c.mu.Unlock()

	return u, nil
}

// RequireUser returns signed in user or ErrUnauthenticated.
func (c *Client) RequireUser(ctx context.Context) (*entities.User, error) {
	u, err := c.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	if u == nil {
		return nil, ErrUnauthenticated
	}

	return u, nil
}

// ListPostsParams ...
type ListPostsParams struct {
	Limit  uint16
	Offset uint16
	Owner  string
	// Feed returns posts of followed users.
	Feed  bool
	Query string
}

// ListPosts returns posts with stats and flags of signed in user.
func (c *Client) ListPosts(ctx context.Context, p ListPostsParams) (*server.ListPostsResponse, error) {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(int(p.Limit)))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(int(p.Offset)))
	}
	if p.Owner != "" {
		q.Set("owner", p.Owner)
	}
	if p.Feed {
		q.Set("feed", "true")
	}
	if p.Query != "" {
		q.Set("q", p.Query)
	}

	var resp server.ListPostsResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/posts", q), nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// GetPost ...
func (c *Client) GetPost(ctx context.Context, id string) (*server.GetPostResponse, error) {
	var resp server.GetPostResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/posts/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// GetProfile ...
func (c *Client) GetProfile(ctx context.Context, id string) (*server.ProfileResponse, error) {
	var resp server.ProfileResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// CreatePostParams ...
type CreatePostParams struct {
	Caption    string
	ImageName  string
	Image      io.Reader
	Adjustment imaging.Adjustment
}

// CreatePost uploads image and creates post. The server renders the adjustment.
func (c *Client) CreatePost(ctx context.Context, p CreatePostParams) (*server.Post, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	for k, v := range map[string]string{
		"caption":    p.Caption,
		"filter":     p.Adjustment.Preset,
		"brightness": strconv.Itoa(p.Adjustment.Brightness),
		"contrast":   strconv.Itoa(p.Adjustment.Contrast),
	} {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", k, err)
		}
	}

	fw, err := w.CreateFormFile("image", p.ImageName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, p.Image); err != nil {
		return nil, fmt.Errorf("failed to copy image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	var post server.Post
	if err := c.do(ctx, http.MethodPost, "/v1/posts", &b, w.FormDataContentType(), &post); err != nil {
		return nil, err
	}

	return &post, nil
}

// AddComment ...
func (c *Client) AddComment(ctx context.Context, postID, content string) (*entities.Comment, error) {
	var comment entities.Comment
	if err := c.doJSON(ctx, http.MethodPost, "/v1/posts/"+url.PathEscape(postID)+"/comments", server.CommentRequest{
		Content: content,
	}, &comment); err != nil {
		return nil, err
	}

	return &comment, nil
}

func (c *Client) setToggle(ctx context.Context, path string, on bool) (*server.ToggleResponse, error) {
	method := http.MethodDelete
	if on {
		method = http.MethodPut
	}

	var resp server.ToggleResponse
	if err := c.doJSON(ctx, method, path, nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	contentType := ""

	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return readError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func readError(resp *http.Response) error {
	e := &Error{StatusCode: resp.StatusCode}

	var body server.Error
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		e.Message = http.StatusText(resp.StatusCode)
	} else {
		e.Message = body.Error
	}

	return e
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
