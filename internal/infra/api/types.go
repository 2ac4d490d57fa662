// Package api provides a typed HTTP client for the suipic REST API.
package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// User roles as reported by the server.
const (
	RoleAdmin        = "admin"
	RolePhotographer = "photographer"
	RoleClient       = "client"
)

// Pick/reject workflow states for a photo. The empty string means unset.
const (
	StatePick   = "pick"
	StateReject = "reject"
)

// User is the account snapshot returned by auth and comment endpoints.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FriendlyName string `json:"friendlyName"`
	Role         string `json:"role"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// Album is a photo album owned by a photographer.
type Album struct {
	ID               int            `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Location         string         `json:"location,omitempty"`
	DateTaken        string         `json:"dateTaken,omitempty"`
	CustomFields     map[string]any `json:"customFields,omitempty"`
	ThumbnailPhotoID int            `json:"thumbnailPhotoId,omitempty"`
	PhotographerID   int            `json:"photographerId"`
	CreatedAt        string         `json:"createdAt"`
	UpdatedAt        string         `json:"updatedAt"`
}

// Clone returns a deep copy of the album.
func (a Album) Clone() Album {
	out := a
	if a.CustomFields != nil {
		out.CustomFields = make(map[string]any, len(a.CustomFields))
		for k, v := range a.CustomFields {
			out.CustomFields[k] = v
		}
	}
	return out
}

// Photo belongs to exactly one album.
type Photo struct {
	ID              int    `json:"id"`
	AlbumID         int    `json:"albumId"`
	Filename        string `json:"filename"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	DateTaken       string `json:"dateTaken,omitempty"`
	Location        string `json:"location,omitempty"`
	Stars           int    `json:"stars"`
	PickRejectState string `json:"pickRejectState,omitempty"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// Comment carries a denormalized author snapshot taken at fetch time.
// ParentCommentID of zero means a top-level comment.
type Comment struct {
	ID              int       `json:"id"`
	PhotoID         int       `json:"photoId"`
	UserID          int       `json:"userId"`
	ParentCommentID int       `json:"parentCommentId,omitempty"`
	Text            string    `json:"text"`
	CreatedAt       string    `json:"createdAt"`
	UpdatedAt       string    `json:"updatedAt"`
	User            User      `json:"user"`
	Replies         []Comment `json:"replies,omitempty"`
}

// Clone returns a deep copy of the comment including its reply tree.
func (c Comment) Clone() Comment {
	out := c
	if c.Replies != nil {
		out.Replies = make([]Comment, len(c.Replies))
		for i, r := range c.Replies {
			out.Replies[i] = r.Clone()
		}
	}
	return out
}

// SystemSettings is one admin-editable key/value setting.
type SystemSettings struct {
	ID           int    `json:"id"`
	SettingKey   string `json:"settingKey"`
	SettingValue string `json:"settingValue"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// PublicSettings is the unauthenticated settings snapshot.
type PublicSettings struct {
	ImageProtectionEnabled bool `json:"image_protection_enabled"`
}

// SearchResult is the payload of the search endpoint.
type SearchResult struct {
	Total  int     `json:"total"`
	Photos []Photo `json:"photos"`
}

// LoginRequest authenticates by username or email.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RefreshRequest exchanges a still-valid token for a fresh one.
type RefreshRequest struct {
	Token string `json:"token"`
}

// AuthResponse is returned by login, register and refresh.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// CreatePhotographerRequest provisions a photographer account (admin only).
// The server generates the initial password.
type CreatePhotographerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Validate rejects structurally invalid photographer creation payloads.
func (r CreatePhotographerRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("username must not be empty")
	}
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("email must not be empty")
	}
	return nil
}

// CreatePhotographerResponse carries the new account and its generated
// password, shown once.
type CreatePhotographerResponse struct {
	User     User   `json:"user"`
	Password string `json:"password"`
}

// ClientAccount is a client as seen by its photographer. IsShared marks
// accounts that other photographers also work with.
type ClientAccount struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FriendlyName string `json:"friendlyName"`
	Role         string `json:"role"`
	CreatedAt    string `json:"createdAt"`
	IsShared     bool   `json:"isShared,omitempty"`
}

// CreateClientRequest creates a client account or links an existing one to
// the calling photographer. Only the username is required.
type CreateClientRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	Password     string `json:"password,omitempty"`
	FriendlyName string `json:"friendlyName,omitempty"`
}

// Validate rejects structurally invalid client creation payloads.
func (r CreateClientRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("username must not be empty")
	}
	return nil
}

// CreateAlbumRequest creates a new album. Title must be non-empty.
type CreateAlbumRequest struct {
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Location     string         `json:"location,omitempty"`
	DateTaken    string         `json:"dateTaken,omitempty"`
	CustomFields map[string]any `json:"customFields,omitempty"`
}

// Validate rejects structurally invalid album creation payloads.
func (r CreateAlbumRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("album title is required")
	}
	return nil
}

// AlbumPatch is a partial album update. Nil fields are left untouched.
type AlbumPatch struct {
	Title            *string         `json:"title,omitempty"`
	Description      *string         `json:"description,omitempty"`
	Location         *string         `json:"location,omitempty"`
	DateTaken        *string         `json:"dateTaken,omitempty"`
	CustomFields     *map[string]any `json:"customFields,omitempty"`
	ThumbnailPhotoID *int            `json:"thumbnailPhotoId,omitempty"`
}

// Validate rejects structurally invalid album patches.
func (p AlbumPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("album title cannot be empty")
	}
	return nil
}

// Apply merges the patch onto an album copy and returns it.
func (p AlbumPatch) Apply(a Album) Album {
	out := a.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.DateTaken != nil {
		out.DateTaken = *p.DateTaken
	}
	if p.CustomFields != nil {
		out.CustomFields = *p.CustomFields
	}
	if p.ThumbnailPhotoID != nil {
		out.ThumbnailPhotoID = *p.ThumbnailPhotoID
	}
	return out
}

// PhotoPatch is a partial photo update. Nil fields are left untouched.
type PhotoPatch struct {
	Title           *string `json:"title,omitempty"`
	PickRejectState *string `json:"pickRejectState,omitempty"`
	Stars           *int    `json:"stars,omitempty"`
}

// Validate rejects out-of-range field values.
func (p PhotoPatch) Validate() error {
	if p.Stars != nil && (*p.Stars < 0 || *p.Stars > 5) {
		return fmt.Errorf("stars must be between 0 and 5, got %d", *p.Stars)
	}
	if p.PickRejectState != nil {
		switch *p.PickRejectState {
		case "", StatePick, StateReject:
		default:
			return fmt.Errorf("invalid pick/reject state %q", *p.PickRejectState)
		}
	}
	return nil
}

// Apply merges the patch onto a photo copy and returns it.
func (p PhotoPatch) Apply(ph Photo) Photo {
	out := ph
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.PickRejectState != nil {
		out.PickRejectState = *p.PickRejectState
	}
	if p.Stars != nil {
		out.Stars = *p.Stars
	}
	return out
}

// UpdateSettingRequest sets a single system setting value.
type UpdateSettingRequest struct {
	SettingValue string `json:"settingValue"`
}

// SearchParams is the wire form of a search query. Zero or nil fields are
// omitted from the query string.
type SearchParams struct {
	Query    string
	AlbumID  *int
	DateFrom string
	DateTo   string
	MinStars *int
	MaxStars *int
	State    string
	Limit    int
	Offset   int
}

// Encode renders the params as URL query values.
func (p SearchParams) Encode() url.Values {
	values := url.Values{}
	if p.Query != "" {
		values.Set("q", p.Query)
	}
	if p.AlbumID != nil {
		values.Set("album", strconv.Itoa(*p.AlbumID))
	}
	if p.DateFrom != "" {
		values.Set("dateFrom", p.DateFrom)
	}
	if p.DateTo != "" {
		values.Set("dateTo", p.DateTo)
	}
	if p.MinStars != nil {
		values.Set("minStars", strconv.Itoa(*p.MinStars))
	}
	if p.MaxStars != nil {
		values.Set("maxStars", strconv.Itoa(*p.MaxStars))
	}
	if p.State != "" {
		values.Set("state", p.State)
	}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		values.Set("offset", strconv.Itoa(p.Offset))
	}
	return values
}
