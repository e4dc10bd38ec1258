// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cardpress/internal/cache"
	"cardpress/internal/middleware"
	"cardpress/internal/models"
	"cardpress/internal/qr"
	"cardpress/internal/slug"
	"cardpress/internal/storage"
	"cardpress/internal/store"
	"cardpress/web"
)

const (
	// maxAvatarSize is the maximum allowed logo avatar upload (5 MB).
	maxAvatarSize = 5 << 20

	// maxSaveRequestSize bounds the whole savetobucket request body:
	// the avatar plus form fields and multipart overhead.
	maxSaveRequestSize = maxAvatarSize + 64<<10
)

// Designer groups the QR designer endpoints: render/save round-trips,
// the icon catalog, record hydration, listing, and deletion.
type Designer struct {
	qrStore       *store.QRCodeStore
	userStore     *store.UserStore
	iconStore     *store.IconStore
	iconCache     *cache.IconCache
	cardCache     *cache.CardCache
	storageClient *storage.Client // nil when S3 is not configured
	freeLimit     int
}

// NewDesigner creates a new Designer handler group. storageClient may be
// nil; images are then served from Postgres only.
func NewDesigner(qrStore *store.QRCodeStore, userStore *store.UserStore, iconStore *store.IconStore,
	iconCache *cache.IconCache, cardCache *cache.CardCache, storageClient *storage.Client, freeLimit int) *Designer {
	return &Designer{
		qrStore:       qrStore,
		userStore:     userStore,
		iconStore:     iconStore,
		iconCache:     iconCache,
		cardCache:     cardCache,
		storageClient: storageClient,
		freeLimit:     freeLimit,
	}
}

// SaveToBucket is the designer's render round-trip. Every call renders
// the QR image from the submitted configuration; savedata=true also
// persists the full replacement configuration, subject to the plan limit.
func (d *Designer) SaveToBucket(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxSaveRequestSize)
	if err := r.ParseMultipartForm(maxSaveRequestSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Request too large. Logo images are limited to 5 MB.")
		return
	}

	name := r.FormValue("name")
	rawURL := r.FormValue("url")
	description := r.FormValue("description")
	qrcodeID := r.FormValue("qrcodeid")

	persist, err := strconv.ParseBool(r.FormValue("savedata"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid savedata value.")
		return
	}

	if msg := validateCard(name, rawURL, description); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	settings := models.DefaultQRSettings()
	if raw := r.FormValue("settings"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &settings); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid settings.")
			return
		}
	}
	settings.Normalize()

	avatar, avatarType, errMsg := readAvatarUpload(r)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	// An existing record contributes its stored avatar when no new file
	// accompanies the request.
	var existing *models.QRCode
	if qrcodeID != "" {
		id, err := uuid.Parse(qrcodeID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid QR code ID.")
			return
		}
		existing, err = d.qrStore.FindByID(id)
		if err != nil {
			slog.Error("find qr code failed", "error", err, "id", qrcodeID)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			return
		}
		if existing == nil || existing.OwnerID != sess.UserID {
			writeError(w, http.StatusNotFound, "QR code not found.")
			return
		}
	}
	if avatar == nil && settings.LogoType == models.LogoAvatar && existing != nil && existing.HasAvatar() {
		avatar = existing.Avatar
		if existing.AvatarContentType != nil {
			avatarType = *existing.AvatarContentType
		}
	}

	logo, errMsg := d.resolveLogo(&settings, avatar)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	imgData, err := qr.Render(qr.Options{
		Content:  rawURL,
		Settings: settings,
		Logo:     logo,
	})
	if err != nil {
		slog.Error("qr render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Rendering failed.")
		return
	}

	payload := &models.BinaryPayload{
		Data:        models.ByteArray(imgData),
		ContentType: "image/png",
	}

	if !persist {
		writeEnvelope(w, http.StatusOK, &envelope{Success: true, QRData: payload})
		return
	}

	if existing == nil {
		d.createCard(w, r, sess.UserID, name, rawURL, description, settings, imgData, avatar, avatarType, payload)
		return
	}
	d.updateCard(w, r, existing, name, rawURL, description, settings, imgData, avatar, avatarType, payload)
}

// createCard persists a brand-new card, enforcing the plan limit first.
func (d *Designer) createCard(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID,
	name, rawURL, description string, settings models.QRSettings,
	imgData, avatar []byte, avatarType string, payload *models.BinaryPayload) {

	user, err := d.userStore.FindByID(ownerID)
	if err != nil || user == nil {
		slog.Error("owner lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	limit := user.QRLimit(d.freeLimit)
	if limit >= 0 {
		count, err := d.qrStore.CountByOwner(ownerID)
		if err != nil {
			slog.Error("count qr codes failed", "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			return
		}
		if count >= limit {
			writeLimitReached(w, limit)
			return
		}
	}

	cardSlug, err := d.uniqueSlug(name)
	if err != nil {
		slog.Error("slug check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	rec := &models.QRCode{
		OwnerID:          ownerID,
		Name:             strings.TrimSpace(name),
		URL:              strings.TrimSpace(rawURL),
		Description:      description,
		Slug:             cardSlug,
		Settings:         settings,
		Image:            imgData,
		ImageContentType: "image/png",
		Avatar:           avatar,
	}
	if avatarType != "" {
		rec.AvatarContentType = &avatarType
	}

	created, err := d.qrStore.Create(rec)
	if err != nil {
		slog.Error("create qr code failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	d.mirrorToS3(r, created)
	writeEnvelope(w, http.StatusOK, &envelope{
		Success: true,
		Message: created.ID.String(),
		QRData:  payload,
	})
}

// updateCard replaces an existing card's configuration and image.
func (d *Designer) updateCard(w http.ResponseWriter, r *http.Request, existing *models.QRCode,
	name, rawURL, description string, settings models.QRSettings,
	imgData, avatar []byte, avatarType string, payload *models.BinaryPayload) {

	existing.Name = strings.TrimSpace(name)
	existing.URL = strings.TrimSpace(rawURL)
	existing.Description = description
	existing.Settings = settings
	existing.Image = imgData
	existing.ImageContentType = "image/png"
	existing.Avatar = avatar
	existing.AvatarContentType = nil
	if avatarType != "" {
		existing.AvatarContentType = &avatarType
	}

	updated, err := d.qrStore.Update(existing)
	if err != nil {
		slog.Error("update qr code failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "QR code not found.")
		return
	}

	d.mirrorToS3(r, updated)
	d.cardCache.Invalidate(r.Context(), updated.Slug)
	writeEnvelope(w, http.StatusOK, &envelope{
		Success: true,
		Message: updated.ID.String(),
		QRData:  payload,
	})
}

// editRecord is the hydration response shape consumed by the designer.
type editRecord struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	URL         string                `json:"url"`
	Description string                `json:"description"`
	Settings    models.QRSettings     `json:"settings"`
	Data        *models.BinaryPayload `json:"data,omitempty"`
	AvatarFile  *models.BinaryPayload `json:"avatarFile,omitempty"`
}

// Edit returns the full persisted record, including the stored image and
// avatar bytes, so the designer can hydrate without re-rendering.
func (d *Designer) Edit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req struct {
		QRCodeID string `json:"qrcodeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	id, err := uuid.Parse(req.QRCodeID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid QR code ID.")
		return
	}

	rec, err := d.qrStore.FindByID(id)
	if err != nil {
		slog.Error("find qr code failed", "error", err, "id", req.QRCodeID)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if rec == nil || rec.OwnerID != sess.UserID {
		writeError(w, http.StatusNotFound, "QR code not found.")
		return
	}

	resp := editRecord{
		ID:          rec.ID.String(),
		Name:        rec.Name,
		URL:         rec.URL,
		Description: rec.Description,
		Settings:    rec.Settings,
	}
	if len(rec.Image) > 0 {
		resp.Data = &models.BinaryPayload{
			Data:        models.ByteArray(rec.Image),
			ContentType: rec.ImageContentType,
		}
	}
	if rec.HasAvatar() {
		avatarType := "application/octet-stream"
		if rec.AvatarContentType != nil {
			avatarType = *rec.AvatarContentType
		}
		resp.AvatarFile = &models.BinaryPayload{
			Data:        models.ByteArray(rec.Avatar),
			ContentType: avatarType,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// List returns the owner's saved cards without image bytes.
func (d *Designer) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	cards, err := d.qrStore.ListByOwner(sess.UserID)
	if err != nil {
		slog.Error("list qr codes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"qrcodes": cards,
	})
}

// Delete removes a card and its mirrored S3 objects.
func (d *Designer) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid QR code ID.")
		return
	}

	deleted, err := d.qrStore.Delete(id, sess.UserID)
	if err != nil {
		slog.Error("delete qr code failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, "QR code not found.")
		return
	}

	if d.storageClient != nil && deleted.ImageS3Key != nil {
		if err := d.storageClient.Delete(r.Context(), d.storageClient.PublicBucket(), *deleted.ImageS3Key); err != nil {
			slog.Warn("s3 cleanup failed", "error", err, "key", *deleted.ImageS3Key)
		}
	}
	d.cardCache.Invalidate(r.Context(), deleted.Slug)

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GetIcons serves the social icon catalog, Valkey-cached.
func (d *Designer) GetIcons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if icons, ok := d.iconCache.Get(ctx); ok {
		writeJSON(w, http.StatusOK, icons)
		return
	}

	icons, err := d.iconStore.List()
	if err != nil {
		slog.Error("list icons failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	d.iconCache.Set(ctx, icons)
	writeJSON(w, http.StatusOK, icons)
}

// readAvatarUpload extracts and validates the optional avatarFile part.
// Returns a non-empty message on validation failure.
func readAvatarUpload(r *http.Request) (data []byte, contentType string, errMsg string) {
	file, header, err := r.FormFile("avatarFile")
	if err == http.ErrMissingFile {
		return nil, "", ""
	}
	if err != nil {
		return nil, "", ""
	}
	defer file.Close()

	if header.Size > maxAvatarSize {
		return nil, "", "Logo image too large. Maximum size is 5 MB."
	}

	data, err = io.ReadAll(file)
	if err != nil {
		return nil, "", "Failed to read logo image."
	}
	if len(data) > maxAvatarSize {
		return nil, "", "Logo image too large. Maximum size is 5 MB."
	}

	contentType = http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", "Logo must be an image file."
	}
	return data, contentType, ""
}

// iconNameRe restricts icon lookups to catalog-style names so the
// embedded FS path cannot be escaped.
var iconNameRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// resolveLogo turns the submitted logo configuration into a decoded
// image: the uploaded avatar, a bundled social icon, or nothing.
func (d *Designer) resolveLogo(settings *models.QRSettings, avatar []byte) (image.Image, string) {
	switch settings.LogoType {
	case models.LogoAvatar:
		if avatar == nil {
			settings.LogoType = models.LogoNone
			return nil, ""
		}
		logo, err := qr.DecodeLogo(avatar)
		if err != nil {
			return nil, "Unsupported logo image format."
		}
		return logo, ""
	case models.LogoSocial:
		if !iconNameRe.MatchString(settings.SocialIconName) {
			return nil, "Unknown social icon."
		}
		raw, err := fs.ReadFile(web.StaticFS, "static/icons/"+settings.SocialIconName+".png")
		if err != nil {
			return nil, "Unknown social icon."
		}
		logo, err := qr.DecodeLogo(raw)
		if err != nil {
			slog.Error("bundled icon decode failed", "icon", settings.SocialIconName, "error", err)
			return nil, "Unknown social icon."
		}
		return logo, ""
	default:
		return nil, ""
	}
}

// uniqueSlug derives a card slug from the name, suffixing on collision.
func (d *Designer) uniqueSlug(name string) (string, error) {
	base := slug.Generate(name)
	if base == "" {
		base = "card"
	}
	exists, err := d.qrStore.SlugExists(base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}
	return slug.WithSuffix(base), nil
}

// mirrorToS3 uploads the rendered image to the public bucket and records
// the object key. Best-effort: Postgres remains the source of truth.
func (d *Designer) mirrorToS3(r *http.Request, rec *models.QRCode) {
	if d.storageClient == nil {
		return
	}

	key := storage.QRImageKey(rec.OwnerID.String(), rec.ID.String())
	err := d.storageClient.Upload(r.Context(), d.storageClient.PublicBucket(), key,
		rec.ImageContentType, bytes.NewReader(rec.Image), int64(len(rec.Image)))
	if err != nil {
		slog.Warn("s3 mirror failed", "error", err, "key", key)
		return
	}

	rec.ImageS3Key = &key
	if _, err := d.qrStore.Update(rec); err != nil {
		slog.Warn("record s3 key failed", "error", err, "key", key)
	}
}
