// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package designer

import (
	"context"
	"errors"
	"sync"
	"time"

	"cardpress/internal/models"
)

// State is the lifecycle position of one designer session.
type State int

const (
	StateEmpty State = iota
	StateEditing
	StatePreviewPending
	StatePreviewReady
	StateSaving
	StateLimitReached
)

// String returns the state name for logs and test output.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	case StatePreviewPending:
		return "preview-pending"
	case StatePreviewReady:
		return "preview-ready"
	case StateSaving:
		return "saving"
	case StateLimitReached:
		return "limit-reached"
	}
	return "unknown"
}

// Decision resolves a plan-limit block. Cancel resets the form with no
// further network call; Upgrade also resets, the caller then routes the
// user to billing.
type Decision int

const (
	DecisionCancel Decision = iota
	DecisionUpgrade
)

// ErrClosed is returned for operations on a closed controller.
var ErrClosed = errors.New("designer: controller closed")

// DefaultDebounce is the settle window between the last edit and the
// preview request it triggers.
const DefaultDebounce = 300 * time.Millisecond

// Controller owns one DesignConfiguration and drives its preview and
// save round-trips. Edits schedule a debounced regenerate; at most one
// render request is in flight at a time, with further edits coalesced
// into the next debounce window. Responses carry sequence numbers so a
// slow response can never overwrite a newer preview.
type Controller struct {
	mu     sync.Mutex
	client *Client
	cfg    *DesignConfiguration

	state    State
	debounce time.Duration
	timer    *time.Timer

	generating bool
	pending    bool
	nextSeq    uint64
	applied    uint64

	preview     *PreviewHandle
	avatarThumb *PreviewHandle

	limit  *LimitReachedError
	closed bool

	onPreview func(*PreviewHandle)
	onError   func(error)
}

// Option customizes a Controller.
type Option func(*Controller)

// WithDebounce overrides the debounce window (tests use a few
// milliseconds).
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithPreviewCallback registers a hook invoked with each freshly
// installed preview handle.
func WithPreviewCallback(f func(*PreviewHandle)) Option {
	return func(c *Controller) { c.onPreview = f }
}

// WithErrorCallback registers a hook invoked with preview failures
// (save failures are returned directly to the caller).
func WithErrorCallback(f func(error)) Option {
	return func(c *Controller) { c.onError = f }
}

// NewController creates a designer session with a blank configuration.
func NewController(client *Client, opts ...Option) *Controller {
	c := &Controller{
		client:   client,
		cfg:      NewDesignConfiguration(),
		state:    StateEmpty,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Preview returns the current preview handle, or nil before the first
// successful render.
func (c *Controller) Preview() *PreviewHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}

// AvatarThumb returns the avatar thumbnail handle reconstructed during
// edit hydration, or nil.
func (c *Controller) AvatarThumb() *PreviewHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.avatarThumb
}

// Config returns a snapshot copy of the configuration. The avatar
// buffer is cloned so callers cannot mutate controller state.
func (c *Controller) Config() DesignConfiguration {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := *c.cfg
	if c.cfg.AvatarData != nil {
		snap.AvatarData = append([]byte(nil), c.cfg.AvatarData...)
	}
	return snap
}

// LimitDecisionPending reports whether the session is blocked on a
// plan-limit decision, and the limit that triggered it.
func (c *Controller) LimitDecisionPending() (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limit == nil {
		return false, 0
	}
	return true, c.limit.MaxAllowed
}

// SetField updates one configuration attribute. Invalid input yields a
// ValidationError and the field keeps its prior value. Valid edits mark
// the session dirty; fields outside the initial Data step schedule a
// debounced regenerate.
func (c *Controller) SetField(field Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.limit != nil {
		return ErrBlocked
	}
	if err := c.cfg.SetField(field, value); err != nil {
		return err
	}
	c.markDirtyLocked()
	if fieldStep(field) != StepData {
		c.schedulePreviewLocked()
	}
	return nil
}

// Advance expands the next configuration step. Leaving the Data step is
// the explicit trigger for the first preview.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.limit != nil {
		return ErrBlocked
	}
	if c.cfg.CurrentStep < StepLogo {
		c.cfg.CurrentStep++
	}
	c.schedulePreviewLocked()
	return nil
}

// SetStep expands a specific configuration step without regenerating.
func (c *Controller) SetStep(step Step) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.CurrentStep = step
}

// RequestPreview schedules a debounced preview round-trip. No-op when
// name or url is empty.
func (c *Controller) RequestPreview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.limit != nil {
		return
	}
	c.schedulePreviewLocked()
}

// RemoveLogo clears every logo representation and regenerates.
func (c *Controller) RemoveLogo() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.limit != nil {
		return ErrBlocked
	}
	c.cfg.RemoveLogo()
	c.revokeAvatarThumbLocked()
	c.markDirtyLocked()
	c.schedulePreviewLocked()
	return nil
}

// SelectSocialIcon activates the named catalog icon as the logo,
// clearing any uploaded avatar, and regenerates.
func (c *Controller) SelectSocialIcon(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.limit != nil {
		return ErrBlocked
	}
	if err := c.cfg.SelectSocialIcon(name); err != nil {
		return err
	}
	c.revokeAvatarThumbLocked()
	c.markDirtyLocked()
	c.schedulePreviewLocked()
	return nil
}

// UploadAvatar activates an uploaded image as the logo, clearing any
// selected social icon, and regenerates. Oversized or non-image files
// are rejected with no network call.
func (c *Controller) UploadAvatar(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.limit != nil {
		return ErrBlocked
	}
	if err := c.cfg.UploadAvatar(data); err != nil {
		return err
	}
	c.revokeAvatarThumbLocked()
	if h, err := newPreviewHandle(c.cfg.AvatarData, c.cfg.AvatarContentType); err == nil {
		c.avatarThumb = h
	}
	c.markDirtyLocked()
	c.schedulePreviewLocked()
	return nil
}

// HydrateForEdit fetches a persisted record and maps every field into
// the configuration, jumping straight to PreviewReady: a persisted
// record already has a renderable image. Subsequent saves route as
// updates of the record.
func (c *Controller) HydrateForEdit(ctx context.Context, id string) error {
	rec, err := c.client.Edit(ctx, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.cfg.Hydrate(rec)

	var oldPreview, oldThumb *PreviewHandle
	if rec.Data != nil && !rec.Data.IsEmpty() {
		if h, herr := newPreviewHandle([]byte(rec.Data.Data), rec.Data.ContentType); herr == nil {
			oldPreview, c.preview = c.preview, h
		}
	}
	if rec.AvatarFile != nil && !rec.AvatarFile.IsEmpty() {
		if h, herr := newPreviewHandle([]byte(rec.AvatarFile.Data), rec.AvatarFile.ContentType); herr == nil {
			oldThumb, c.avatarThumb = c.avatarThumb, h
		}
	}
	// Anything still in flight belongs to the previous session.
	c.applied = c.nextSeq
	c.pending = false
	c.state = StatePreviewReady
	cb := c.onPreview
	h := c.preview
	c.mu.Unlock()

	if oldPreview != nil {
		oldPreview.Revoke()
	}
	if oldThumb != nil {
		oldThumb.Revoke()
	}
	if cb != nil && h != nil {
		cb(h)
	}
	return nil
}

// Save persists the full replacement configuration. On success the
// configuration is reset to its blank default shape and the session
// returns to Empty, so a stale editing id can never leak into the next
// creation. A LimitReachedError blocks the session until ResolveLimit
// is called; a TransientError leaves local state untouched.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.limit != nil {
		c.mu.Unlock()
		return ErrBlocked
	}
	if !c.cfg.CanRender() {
		c.mu.Unlock()
		return &ValidationError{Field: FieldName, Reason: "name and url are required"}
	}
	c.stopTimerLocked()
	c.pending = false
	prevState := c.state
	c.state = StateSaving
	payload := c.payloadLocked(true)
	c.mu.Unlock()

	_, err := c.client.SaveToBucket(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		var lim *LimitReachedError
		if errors.As(err, &lim) {
			c.limit = lim
			c.state = StateLimitReached
			return err
		}
		// Transient or validation rejection: local state untouched.
		if prevState == StateSaving {
			prevState = StatePreviewReady
		}
		c.state = prevState
		return err
	}

	c.resetLocked()
	return nil
}

// ResolveLimit resolves a pending plan-limit block. Both decisions
// fully reset the configuration without any further network call; after
// Upgrade the caller routes the user to billing and starts a fresh
// session.
func (c *Controller) ResolveLimit(d Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limit == nil {
		return
	}
	c.limit = nil
	c.resetLocked()
}

// Delete removes a persisted record through the companion endpoint. It
// acts on stored data, not on this session's live configuration.
func (c *Controller) Delete(ctx context.Context, id string) error {
	return c.client.Delete(ctx, id)
}

// Icons returns the social-icon catalog via the client's cache.
func (c *Controller) Icons(ctx context.Context) ([]models.Icon, error) {
	return c.client.GetIcons(ctx)
}

// Close cancels pending work and revokes all handles. The controller
// cannot be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	preview, thumb := c.preview, c.avatarThumb
	c.preview, c.avatarThumb = nil, nil
	c.mu.Unlock()

	if preview != nil {
		preview.Revoke()
	}
	if thumb != nil {
		thumb.Revoke()
	}
}

// markDirtyLocked moves the session into Editing from the quiescent
// states.
func (c *Controller) markDirtyLocked() {
	if c.state == StateEmpty || c.state == StatePreviewReady {
		c.state = StateEditing
	}
}

// schedulePreviewLocked (re)arms the debounce timer. Repeated edits
// inside the window collapse into a single request carrying the latest
// configuration.
func (c *Controller) schedulePreviewLocked() {
	if c.closed || c.limit != nil {
		return
	}
	if !c.cfg.CanRender() {
		return
	}
	c.state = StatePreviewPending
	c.stopTimerLocked()
	c.timer = time.AfterFunc(c.debounce, c.firePreview)
}

// firePreview runs when the debounce window settles. If a request is
// already outstanding the work is deferred to its completion instead of
// firing a parallel request.
func (c *Controller) firePreview() {
	c.mu.Lock()
	if c.closed || c.limit != nil || !c.cfg.CanRender() {
		c.mu.Unlock()
		return
	}
	if c.generating {
		c.pending = true
		c.mu.Unlock()
		return
	}
	c.generating = true
	c.nextSeq++
	seq := c.nextSeq
	payload := c.payloadLocked(false)
	c.mu.Unlock()

	go c.runPreview(seq, payload)
}

// runPreview performs one preview round-trip and applies the result
// unless a newer request was issued in the meantime.
func (c *Controller) runPreview(seq uint64, payload *SavePayload) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultRequestTimeout)
	defer cancel()

	res, err := c.client.SaveToBucket(ctx, payload)

	c.mu.Lock()
	c.generating = false
	if c.closed {
		c.mu.Unlock()
		return
	}

	if err != nil {
		var lim *LimitReachedError
		if errors.As(err, &lim) {
			c.limit = lim
			c.state = StateLimitReached
			c.pending = false
			cb := c.onError
			c.mu.Unlock()
			if cb != nil {
				cb(err)
			}
			return
		}
		// Non-fatal: the prior preview stays displayed; a pending edit
		// retries implicitly through the next debounce window. An
		// in-flight save keeps its state until it resolves.
		if c.state != StateSaving {
			if c.preview != nil {
				c.state = StatePreviewReady
			} else {
				c.state = StateEditing
			}
		}
		resched := c.pending
		c.pending = false
		if resched {
			c.schedulePreviewLocked()
		}
		cb := c.onError
		c.mu.Unlock()
		if cb != nil {
			cb(err)
		}
		return
	}

	if seq <= c.applied {
		// A newer result has already been applied; drop this one. An edit
		// coalesced behind it still needs its own render.
		resched := c.pending
		c.pending = false
		if resched {
			c.schedulePreviewLocked()
		}
		c.mu.Unlock()
		return
	}

	handle, herr := newPreviewHandle(res.Data, res.ContentType)
	if herr != nil {
		cb := c.onError
		c.mu.Unlock()
		if cb != nil {
			cb(&TransientError{Op: "preview", Err: herr})
		}
		return
	}

	old := c.preview
	c.preview = handle
	c.applied = seq
	if c.state != StateSaving {
		c.state = StatePreviewReady
	}
	resched := c.pending
	c.pending = false
	if resched {
		c.schedulePreviewLocked()
	}
	cb := c.onPreview
	c.mu.Unlock()

	// Revoke the replaced handle before anyone can grab it again.
	if old != nil {
		old.Revoke()
	}
	if cb != nil {
		cb(handle)
	}
}

// payloadLocked snapshots the configuration into a request payload.
func (c *Controller) payloadLocked(persist bool) *SavePayload {
	p := &SavePayload{
		Name:        c.cfg.Name,
		URL:         c.cfg.URL,
		Description: c.cfg.Description,
		QRCodeID:    c.cfg.EditingID,
		Persist:     persist,
		Settings:    c.cfg.Settings(),
	}
	if len(c.cfg.AvatarData) > 0 {
		p.Avatar = append([]byte(nil), c.cfg.AvatarData...)
		p.AvatarType = c.cfg.AvatarContentType
	}
	return p
}

// resetLocked restores the blank default shape, revokes handles, and
// discards any in-flight responses.
func (c *Controller) resetLocked() {
	c.stopTimerLocked()
	c.cfg.Reset()
	if c.preview != nil {
		c.preview.Revoke()
		c.preview = nil
	}
	c.revokeAvatarThumbLocked()
	c.applied = c.nextSeq
	c.pending = false
	c.state = StateEmpty
}

func (c *Controller) revokeAvatarThumbLocked() {
	if c.avatarThumb != nil {
		c.avatarThumb.Revoke()
		c.avatarThumb = nil
	}
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// fieldStep maps a field to the configuration step it belongs to. Data
// step fields only regenerate on an explicit Advance.
func fieldStep(f Field) Step {
	switch f {
	case FieldName, FieldURL, FieldDescription:
		return StepData
	case FieldDotsStyle, FieldCornerSquareStyle, FieldCornerDotStyle:
		return StepStyle
	default:
		return StepColor
	}
}
