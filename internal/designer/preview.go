// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package designer

import (
	"fmt"
	"os"
	"sync"
)

// PreviewHandle is a locally owned reference to rendered image bytes,
// backed by a temp file. It plays the role a browser object URL plays:
// something displayable that must be explicitly revoked when replaced,
// or the files pile up for the life of the session.
type PreviewHandle struct {
	mu          sync.Mutex
	path        string
	contentType string
	size        int
	revoked     bool
}

// newPreviewHandle writes the image bytes to a temp file and returns a
// handle owning it.
func newPreviewHandle(data []byte, contentType string) (*PreviewHandle, error) {
	f, err := os.CreateTemp("", "cardpress-preview-*")
	if err != nil {
		return nil, fmt.Errorf("preview handle: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("preview handle write: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("preview handle close: %w", err)
	}
	return &PreviewHandle{path: f.Name(), contentType: contentType, size: len(data)}, nil
}

// Path returns the local file path of the rendered image, or "" after
// revocation.
func (h *PreviewHandle) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.revoked {
		return ""
	}
	return h.path
}

// ContentType returns the MIME type of the rendered image.
func (h *PreviewHandle) ContentType() string {
	return h.contentType
}

// Size returns the byte length of the rendered image.
func (h *PreviewHandle) Size() int {
	return h.size
}

// Bytes reads the rendered image back. Returns an error after revocation.
func (h *PreviewHandle) Bytes() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.revoked {
		return nil, fmt.Errorf("preview handle: revoked")
	}
	return os.ReadFile(h.path)
}

// Revoke releases the backing file. Safe to call more than once.
func (h *PreviewHandle) Revoke() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.revoked {
		return
	}
	h.revoked = true
	os.Remove(h.path)
}

// Revoked reports whether the handle has been released.
func (h *PreviewHandle) Revoked() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.revoked
}
