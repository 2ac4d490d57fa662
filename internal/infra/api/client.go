package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is used when no API URL is configured.
	DefaultBaseURL = "http://127.0.0.1:8080/api"

	// DefaultUserAgent identifies the Go client to the server.
	DefaultUserAgent = "suipic-client-go/0.3"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second
)

// TokenSource supplies the current bearer token. An empty string means the
// request is sent unauthenticated.
type TokenSource func() string

// Error is the typed failure returned by every API call. Message always
// carries a human-readable text extracted from the response body, never a
// bare status code.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Client performs typed HTTP requests against the suipic REST API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	tokens     TokenSource
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTokenSource injects the bearer token provider, typically the session
// store's Token method.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// NewClient creates a new API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		tokens: func() string { return "" },
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Login authenticates by username or email and returns the user and token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	var out AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &out, "Login failed")
	return out, err
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &out, "Registration failed")
	return out, err
}

// RefreshToken exchanges a still-valid token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context, token string) (AuthResponse, error) {
	var out AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", RefreshRequest{Token: token}, &out, "Token refresh failed")
	return out, err
}

// Logout revokes the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, "Logout failed")
}

// CurrentUser fetches the account behind the current token.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var out User
	err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &out, "Failed to fetch user")
	return out, err
}

// ListPhotographers fetches every photographer account (admin only).
func (c *Client) ListPhotographers(ctx context.Context) ([]User, error) {
	var out struct {
		Photographers []User `json:"photographers"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/admin/photographers", nil, &out, "Failed to fetch photographers")
	return out.Photographers, err
}

// CreatePhotographer provisions a photographer account (admin only). The
// response carries the generated password, shown once.
func (c *Client) CreatePhotographer(ctx context.Context, req CreatePhotographerRequest) (CreatePhotographerResponse, error) {
	if err := req.Validate(); err != nil {
		return CreatePhotographerResponse{}, &Error{Op: "CreatePhotographer", Message: err.Error()}
	}
	var out CreatePhotographerResponse
	err := c.doJSON(ctx, http.MethodPost, "/admin/photographers", req, &out, "Failed to create photographer")
	return out, err
}

// ListClients fetches the calling photographer's clients.
func (c *Client) ListClients(ctx context.Context) ([]ClientAccount, error) {
	var out []ClientAccount
	err := c.doJSON(ctx, http.MethodGet, "/photographer/clients", nil, &out, "Failed to fetch clients")
	return out, err
}

// SearchClients finds clients by name fragment.
func (c *Client) SearchClients(ctx context.Context, query string) ([]ClientAccount, error) {
	var out []ClientAccount
	path := "/photographer/clients/search?q=" + url.QueryEscape(query)
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out, "Failed to search clients")
	return out, err
}

// CreateOrLinkClient creates a client account or links an existing one to
// the calling photographer.
func (c *Client) CreateOrLinkClient(ctx context.Context, req CreateClientRequest) (ClientAccount, error) {
	if err := req.Validate(); err != nil {
		return ClientAccount{}, &Error{Op: "CreateOrLinkClient", Message: err.Error()}
	}
	var out ClientAccount
	err := c.doJSON(ctx, http.MethodPost, "/photographer/clients", req, &out, "Failed to create or link client")
	return out, err
}

// ListAlbums fetches every album visible to the current user.
func (c *Client) ListAlbums(ctx context.Context) ([]Album, error) {
	var out []Album
	err := c.doJSON(ctx, http.MethodGet, "/albums", nil, &out, "Failed to fetch albums")
	return out, err
}

// GetAlbum fetches a single album.
func (c *Client) GetAlbum(ctx context.Context, id int) (Album, error) {
	var out Album
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/albums/%d", id), nil, &out, "Failed to fetch album")
	return out, err
}

// CreateAlbum creates a new album.
func (c *Client) CreateAlbum(ctx context.Context, req CreateAlbumRequest) (Album, error) {
	var out Album
	if err := req.Validate(); err != nil {
		return out, &Error{Op: "CreateAlbum", Message: err.Error()}
	}
	err := c.doJSON(ctx, http.MethodPost, "/albums", req, &out, "Failed to create album")
	return out, err
}

// UpdateAlbum applies a partial update and returns the server's album.
func (c *Client) UpdateAlbum(ctx context.Context, id int, patch AlbumPatch) (Album, error) {
	var out Album
	if err := patch.Validate(); err != nil {
		return out, &Error{Op: "UpdateAlbum", Message: err.Error()}
	}
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/albums/%d", id), patch, &out, "Failed to update album")
	return out, err
}

// DeleteAlbum removes an album and everything scoped under it.
func (c *Client) DeleteAlbum(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/albums/%d", id), nil, nil, "Failed to delete album")
}

// ListAlbumUsers fetches the client users assigned to an album.
func (c *Client) ListAlbumUsers(ctx context.Context, albumID int) ([]User, error) {
	var out []User
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/albums/%d/users", albumID), nil, &out, "Failed to fetch album users")
	return out, err
}

// AssignAlbumUsers replaces the set of client users assigned to an album.
func (c *Client) AssignAlbumUsers(ctx context.Context, albumID int, userIDs []int) error {
	body := map[string]any{"userIds": userIDs}
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/albums/%d/users", albumID), body, nil, "Failed to assign users")
}

// ListPhotos fetches the photos of an album.
func (c *Client) ListPhotos(ctx context.Context, albumID int) ([]Photo, error) {
	var out []Photo
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/albums/%d/photos", albumID), nil, &out, "Failed to fetch photos")
	return out, err
}

// GetPhoto fetches a single photo.
func (c *Client) GetPhoto(ctx context.Context, id int) (Photo, error) {
	var out Photo
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/photos/%d", id), nil, &out, "Failed to fetch photo")
	return out, err
}

// UploadPhoto uploads the image payload as multipart field "photo".
func (c *Client) UploadPhoto(ctx context.Context, albumID int, filename string, payload io.Reader) (Photo, error) {
	var out Photo

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", filename)
	if err != nil {
		return out, &Error{Op: "UploadPhoto", Message: fmt.Sprintf("prepare upload: %v", err)}
	}
	if _, err := io.Copy(part, payload); err != nil {
		return out, &Error{Op: "UploadPhoto", Message: fmt.Sprintf("read photo data: %v", err)}
	}
	if err := writer.Close(); err != nil {
		return out, &Error{Op: "UploadPhoto", Message: fmt.Sprintf("prepare upload: %v", err)}
	}

	path := fmt.Sprintf("/albums/%d/photos", albumID)
	err = c.do(ctx, http.MethodPost, path, &body, writer.FormDataContentType(), &out, "Failed to upload photo")
	return out, err
}

// UpdatePhoto applies a partial update and returns the server's photo.
func (c *Client) UpdatePhoto(ctx context.Context, id int, patch PhotoPatch) (Photo, error) {
	var out Photo
	if err := patch.Validate(); err != nil {
		return out, &Error{Op: "UpdatePhoto", Message: err.Error()}
	}
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/photos/%d", id), patch, &out, "Failed to update photo")
	return out, err
}

// ListComments fetches the comment thread of a photo.
func (c *Client) ListComments(ctx context.Context, photoID int) ([]Comment, error) {
	var out []Comment
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/photos/%d/comments", photoID), nil, &out, "Failed to fetch comments")
	return out, err
}

// CreateComment posts a comment, optionally as a reply. parentID of zero
// means a top-level comment.
func (c *Client) CreateComment(ctx context.Context, photoID int, text string, parentID int) (Comment, error) {
	var out Comment
	body := map[string]any{"text": text}
	if parentID != 0 {
		body["parentCommentId"] = parentID
	}
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/photos/%d/comments", photoID), body, &out, "Failed to create comment")
	return out, err
}

// Search runs a faceted photo search.
func (c *Client) Search(ctx context.Context, params SearchParams) (SearchResult, error) {
	var out SearchResult
	path := "/search"
	if encoded := params.Encode().Encode(); encoded != "" {
		path += "?" + encoded
	}
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out, "Search failed")
	return out, err
}

// ListSettings fetches every admin setting.
func (c *Client) ListSettings(ctx context.Context) ([]SystemSettings, error) {
	var out []SystemSettings
	err := c.doJSON(ctx, http.MethodGet, "/admin/settings", nil, &out, "Failed to fetch settings")
	return out, err
}

// UpdateSetting sets one admin setting value.
func (c *Client) UpdateSetting(ctx context.Context, key string, req UpdateSettingRequest) (SystemSettings, error) {
	var out SystemSettings
	path := "/admin/settings/" + url.PathEscape(key)
	err := c.doJSON(ctx, http.MethodPut, path, req, &out, "Failed to update setting")
	return out, err
}

// GetPublicSettings fetches the unauthenticated settings snapshot.
func (c *Client) GetPublicSettings(ctx context.Context) (PublicSettings, error) {
	var out PublicSettings
	err := c.doJSON(ctx, http.MethodGet, "/settings/public", nil, &out, "Failed to fetch public settings")
	return out, err
}

// doJSON marshals body (when non-nil) as JSON and delegates to do.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, fallback string) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: method + " " + path, Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, reader, contentType, out, fallback)
}

// do issues one HTTP request. Non-2xx responses are converted to *Error with
// a message extracted from the JSON body, falling back to the per-operation
// default message.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any, fallback string) error {
	op := method + " " + path
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Message: fmt.Sprintf("create request: %v", err)}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.tokens(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug().
		Str("requestId", requestID).
		Str("method", method).
		Str("path", path).
		Msg("API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &Error{Op: op, Message: fallback}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Message: fallback}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := extractMessage(data, fallback)
		log.Debug().
			Str("requestId", requestID).
			Int("status", resp.StatusCode).
			Str("message", msg).
			Msg("API error response")
		return &Error{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// extractMessage pulls a human-readable text out of a JSON error body,
// accepting both {message} and {error} shapes.
func extractMessage(data []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Err != "" {
			return body.Err
		}
	}
	return fallback
}
