// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package designer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cardpress/internal/models"
)

// DefaultRequestTimeout bounds every render round-trip. The rendering
// backend gives no ordering or liveness guarantee, so a hung request is
// aborted client-side and surfaced as a TransientError.
const DefaultRequestTimeout = 15 * time.Second

// iconCacheKey names the persistent icon-catalog cache, mirroring the
// key the server uses for its own catalog cache.
const iconCacheKey = "qrcodeIcons"

// Record is the client view of a persisted QR design, as returned by
// the edit endpoint for hydration.
type Record struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	URL         string                `json:"url"`
	Description string                `json:"description"`
	Settings    models.QRSettings     `json:"settings"`
	Data        *models.BinaryPayload `json:"data,omitempty"`
	AvatarFile  *models.BinaryPayload `json:"avatarFile,omitempty"`
}

// SavePayload is one savetobucket request: the full replacement
// configuration plus the persist flag.
type SavePayload struct {
	Name        string
	URL         string
	Description string
	QRCodeID    string // empty for create
	Persist     bool   // false = preview only
	Settings    models.QRSettings
	Avatar      []byte
	AvatarType  string
}

// RenderResult carries the rendered image bytes of a preview round-trip.
type RenderResult struct {
	Data        []byte
	ContentType string
}

// envelope is the generic success/failure response shape of the
// designer endpoints. The limit-reached sub-case is distinguished so it
// can be mapped to its own error type.
type envelope struct {
	Success  bool                  `json:"success"`
	Message  string                `json:"message,omitempty"`
	QRData   *models.BinaryPayload `json:"qrData,omitempty"`
	Response *struct {
		LimitReached bool `json:"limitReached"`
		MaxAllowed   int  `json:"maxAllowed"`
	} `json:"response,omitempty"`
}

// Client talks to the designer REST endpoints. It owns a cookie jar for
// the session and a small persistent cache for the social-icon catalog.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu        sync.Mutex
	icons     []models.Icon
	cacheDir  string
	cacheFile string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests inject the
// httptest server's client here).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpc = h }
}

// WithCacheDir sets the directory for the persistent icon-catalog cache.
// An empty directory disables on-disk caching.
func WithCacheDir(dir string) ClientOption {
	return func(c *Client) { c.cacheDir = dir }
}

// NewClient creates a designer API client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Timeout: DefaultRequestTimeout,
			Jar:     jar,
		},
	}
	if dir, err := os.UserCacheDir(); err == nil {
		c.cacheDir = filepath.Join(dir, "cardpress")
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cacheDir != "" {
		c.cacheFile = filepath.Join(c.cacheDir, iconCacheKey+".json")
	}
	return c
}

// SaveToBucket performs one render round-trip. With Persist false the
// server renders and returns the image without saving; with Persist true
// it also persists the full replacement configuration.
func (c *Client) SaveToBucket(ctx context.Context, p *SavePayload) (*RenderResult, error) {
	settingsJSON, err := json.Marshal(p.Settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"url":         p.URL,
		"name":        p.Name,
		"description": p.Description,
		"qrcodeid":    p.QRCodeID,
		"savedata":    boolField(p.Persist),
		"settings":    string(settingsJSON),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if len(p.Avatar) > 0 {
		part, err := mw.CreateFormFile("avatarFile", "avatar")
		if err != nil {
			return nil, fmt.Errorf("avatar part: %w", err)
		}
		if _, err := part.Write(p.Avatar); err != nil {
			return nil, fmt.Errorf("avatar write: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/qr-designer/savetobucket", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.addCSRF(req)

	env, err := c.doEnvelope(req, "render")
	if err != nil {
		return nil, err
	}

	if env.QRData.IsEmpty() {
		if p.Persist {
			return nil, nil
		}
		return nil, &TransientError{Op: "render", Err: fmt.Errorf("empty image in response")}
	}
	return &RenderResult{Data: []byte(env.QRData.Data), ContentType: env.QRData.ContentType}, nil
}

// GetIcons returns the fixed social-icon catalog, served from memory,
// then the persistent cache, then the network.
func (c *Client) GetIcons(ctx context.Context) ([]models.Icon, error) {
	c.mu.Lock()
	if len(c.icons) > 0 {
		icons := c.icons
		c.mu.Unlock()
		return icons, nil
	}
	if cached := c.readIconCache(); len(cached) > 0 {
		c.icons = cached
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/qr-designer/geticons", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransientError{Op: "geticons", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &TransientError{Op: "geticons", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var icons []models.Icon
	if err := json.NewDecoder(resp.Body).Decode(&icons); err != nil {
		return nil, &TransientError{Op: "geticons", Err: err}
	}

	c.mu.Lock()
	c.icons = icons
	c.mu.Unlock()
	c.writeIconCache(icons)
	return icons, nil
}

// Edit fetches the full persisted record for hydration.
func (c *Client) Edit(ctx context.Context, id string) (*Record, error) {
	payload, _ := json.Marshal(map[string]string{"qrcodeId": id})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/qr-designer/edit", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.addCSRF(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransientError{Op: "edit", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &NotFoundError{ID: id}
	default:
		if lim := limitFromBody(resp.Body); lim != nil {
			return nil, lim
		}
		return nil, &TransientError{Op: "edit", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, &TransientError{Op: "edit", Err: err}
	}
	return &rec, nil
}

// Delete removes a persisted record.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/qr-designer/"+id, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.addCSRF(req)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &TransientError{Op: "delete", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return &NotFoundError{ID: id}
	default:
		return &TransientError{Op: "delete", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
}

// doEnvelope executes a request and maps the generic envelope into the
// error taxonomy: limit-reached, transient, or success.
func (c *Client) doEnvelope(req *http.Request, op string) (*envelope, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Op: op, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &TransientError{Op: op, Err: fmt.Errorf("status %d: %w", resp.StatusCode, err)}
	}

	if env.Response != nil && env.Response.LimitReached {
		return nil, &LimitReachedError{MaxAllowed: env.Response.MaxAllowed}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, &TransientError{Op: op, Err: fmt.Errorf("%s", msg)}
	}
	return &env, nil
}

// limitFromBody decodes a limit-reached envelope if the body carries one.
func limitFromBody(r io.Reader) *LimitReachedError {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil
	}
	if env.Response != nil && env.Response.LimitReached {
		return &LimitReachedError{MaxAllowed: env.Response.MaxAllowed}
	}
	return nil
}

// addCSRF mirrors the double-submit CSRF cookie into the request header
// for state-changing calls. No-op until the server has set the cookie.
func (c *Client) addCSRF(req *http.Request) {
	if c.httpc.Jar == nil {
		return
	}
	for _, ck := range c.httpc.Jar.Cookies(req.URL) {
		if ck.Name == "cp_csrf" {
			req.Header.Set("X-CSRF-Token", ck.Value)
			return
		}
	}
}

// readIconCache loads the icon catalog from the persistent cache file.
func (c *Client) readIconCache() []models.Icon {
	if c.cacheFile == "" {
		return nil
	}
	raw, err := os.ReadFile(c.cacheFile)
	if err != nil {
		return nil
	}
	var icons []models.Icon
	if err := json.Unmarshal(raw, &icons); err != nil {
		return nil
	}
	return icons
}

// writeIconCache persists the icon catalog. Best-effort; the catalog is
// refetched on the next miss if this fails.
func (c *Client) writeIconCache(icons []models.Icon) {
	if c.cacheFile == "" {
		return
	}
	raw, err := json.Marshal(icons)
	if err != nil {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return
	}
	os.WriteFile(c.cacheFile, raw, 0o644)
}

// boolField renders the savedata form value. The observed wire contract
// uses the strings "true"/"false"; the server also accepts other
// ParseBool forms.
func boolField(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
