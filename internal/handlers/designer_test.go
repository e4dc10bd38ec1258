// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cardpress/internal/models"
)

// saveRequest builds a multipart savetobucket request.
func saveRequest(t *testing.T, fields map[string]string, avatar []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if avatar != nil {
		part, err := mw.CreateFormFile("avatarFile", "avatar.png")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(avatar)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/qr-designer/savetobucket", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// decodeEnvelope parses the generic designer response shape.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) *envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rr.Body.String())
	}
	return &env
}

// tinyPNG returns a valid 4x4 PNG for avatar uploads.
func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func baseFields(name string) map[string]string {
	return map[string]string{
		"name":        name,
		"url":         "https://example.com",
		"description": "a card",
		"savedata":    "false",
	}
}

func TestSaveToBucketPreviewDoesNotPersist(t *testing.T) {
	env := newTestEnv(t)
	user := env.newTestUser(t, "designer-preview@handler-test.local")

	rr := httptest.NewRecorder()
	req := withSession(saveRequest(t, baseFields("Preview Card"), nil), sessionFor(user))
	env.Designer.SaveToBucket(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeEnvelope(t, rr)
	if !resp.Success {
		t.Fatalf("success = false: %s", resp.Message)
	}
	if resp.QRData.IsEmpty() || resp.QRData.ContentType != "image/png" {
		t.Fatal("preview response missing image payload")
	}
	// The rendered bytes must be a decodable PNG.
	if _, err := png.Decode(bytes.NewReader([]byte(resp.QRData.Data))); err != nil {
		t.Fatalf("payload is not a PNG: %v", err)
	}

	count, err := env.QRStore.CountByOwner(user.ID)
	if err != nil || count != 0 {
		t.Fatalf("preview persisted a row: count=%d err=%v", count, err)
	}
}

func TestSaveToBucketCreatePersists(t *testing.T) {
	env := newTestEnv(t)
	user := env.newTestUser(t, "designer-create@handler-test.local")

	fields := baseFields("Created Card")
	fields["savedata"] = "true"

	rr := httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeEnvelope(t, rr)
	if !resp.Success || resp.Message == "" {
		t.Fatalf("expected success with the new id as message, got %+v", resp)
	}
	if resp.QRData.IsEmpty() {
		t.Fatal("save response missing image payload")
	}

	cards, err := env.QRStore.ListByOwner(user.ID)
	if err != nil || len(cards) != 1 {
		t.Fatalf("cards = %d, %v", len(cards), err)
	}
	card := cards[0]
	if card.ID.String() != resp.Message {
		t.Errorf("message %q is not the created id %s", resp.Message, card.ID)
	}
	if card.Slug == "" || card.Name != "Created Card" {
		t.Errorf("card = %+v", card)
	}
	if len(card.Image) == 0 || card.ImageContentType != "image/png" {
		t.Error("image bytes not stored")
	}
}

func TestSaveToBucketSlugCollision(t *testing.T) {
	env := newTestEnv(t)
	user := env.newTestUser(t, "designer-slug@handler-test.local")

	fields := baseFields("Same Name")
	fields["savedata"] = "true"
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))
		if rr.Code != http.StatusOK {
			t.Fatalf("save %d: status %d, body %s", i, rr.Code, rr.Body.String())
		}
	}

	cards, err := env.QRStore.ListByOwner(user.ID)
	if err != nil || len(cards) != 2 {
		t.Fatalf("cards = %d, %v", len(cards), err)
	}
	if cards[0].Slug == cards[1].Slug {
		t.Errorf("slug collision not resolved: %q", cards[0].Slug)
	}
}

func TestSaveToBucketPlanLimit(t *testing.T) {
	env := newTestEnv(t)
	user := env.newTestUser(t, "designer-limit@handler-test.local")

	for i := 0; i < testFreeLimit; i++ {
		fields := baseFields(fmt.Sprintf("Card %d", i))
		fields["savedata"] = "true"
		rr := httptest.NewRecorder()
		env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))
		if rr.Code != http.StatusOK {
			t.Fatalf("save %d: status %d", i, rr.Code)
		}
		if resp := decodeEnvelope(t, rr); !resp.Success {
			t.Fatalf("save %d refused: %s", i, resp.Message)
		}
	}

	// One more create hits the plan ceiling.
	fields := baseFields("One Too Many")
	fields["savedata"] = "true"
	rr := httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))

	if rr.Code != http.StatusOK {
		t.Fatalf("limit response status = %d, want 200", rr.Code)
	}
	resp := decodeEnvelope(t, rr)
	if resp.Success {
		t.Fatal("create over the limit succeeded")
	}
	if resp.Response == nil || !resp.Response.LimitReached || resp.Response.MaxAllowed != testFreeLimit {
		t.Fatalf("limit block missing or wrong: %+v", resp.Response)
	}
	if count, _ := env.QRStore.CountByOwner(user.ID); count != testFreeLimit {
		t.Errorf("count = %d, want %d", count, testFreeLimit)
	}

	// Previews keep working at the ceiling.
	rr = httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, baseFields("Still Previews"), nil), sessionFor(user)))
	if resp := decodeEnvelope(t, rr); !resp.Success {
		t.Errorf("preview at the limit refused: %s", resp.Message)
	}

	// Updates of existing cards are not creations and still succeed.
	cards, _ := env.QRStore.ListByOwner(user.ID)
	fields = baseFields("Renamed At Limit")
	fields["savedata"] = "true"
	fields["qrcodeid"] = cards[0].ID.String()
	rr = httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))
	if resp := decodeEnvelope(t, rr); !resp.Success {
		t.Errorf("update at the limit refused: %s", resp.Message)
	}
}

func TestSaveToBucketValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.newTestUser(t, "designer-validate@handler-test.local")

	tests := []struct {
		name   string
		mutate func(map[string]string)
		status int
	}{
		{"missing name", func(f map[string]string) { f["name"] = "" }, http.StatusBadRequest},
		{"missing url", func(f map[string]string) { f["url"] = "" }, http.StatusBadRequest},
		{"bad url", func(f map[string]string) { f["url"] = "not-a-url" }, http.StatusBadRequest},
		{"long name", func(f map[string]string) { f["name"] = strings.Repeat("x", 151) }, http.StatusBadRequest},
		{"bad savedata", func(f map[string]string) { f["savedata"] = "maybe" }, http.StatusBadRequest},
		{"bad settings", func(f map[string]string) { f["settings"] = "{" }, http.StatusBadRequest},
		{"bad qrcodeid", func(f map[string]string) { f["qrcodeid"] = "not-a-uuid" }, http.StatusBadRequest},
	}
	for _, tt := range tests {
		fields := baseFields("Valid Name")
		tt.mutate(fields)
		rr := httptest.NewRecorder()
		env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))
		if rr.Code != tt.status {
			t.Errorf("%s: status = %d, want %d (body %s)", tt.name, rr.Code, tt.status, rr.Body.String())
		}
		if resp := decodeEnvelope(t, rr); resp.Success {
			t.Errorf("%s: success = true", tt.name)
		}
	}
}

func TestSaveToBucketUpdate(t *testing.T) {
	env := newTestEnv(t)
	user := env.newTestUser(t, "designer-update@handler-test.local")
	stranger := env.newTestUser(t, "designer-update-stranger@handler-test.local")

	fields := baseFields("Original")
	fields["savedata"] = "true"
	rr := httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))
	created := decodeEnvelope(t, rr)
	if !created.Success {
		t.Fatalf("create failed: %s", created.Message)
	}

	// Full replacement under the same id.
	fields = baseFields("Replaced")
	fields["savedata"] = "true"
	fields["qrcodeid"] = created.Message
	fields["settings"] = `{"dotsStyle":"square"}`
	rr = httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))
	if resp := decodeEnvelope(t, rr); !resp.Success {
		t.Fatalf("update failed: %s", resp.Message)
	}

	cards, _ := env.QRStore.ListByOwner(user.ID)
	if len(cards) != 1 {
		t.Fatalf("update created a second card: %d", len(cards))
	}
	if cards[0].Name != "Replaced" || cards[0].Settings.DotsStyle != models.DotsSquare {
		t.Errorf("replacement not applied: %+v", cards[0])
	}

	// A stranger editing the same id gets a 404, not someone else's card.
	rr = httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(stranger)))
	if rr.Code != http.StatusNotFound {
		t.Errorf("foreign update status = %d, want 404", rr.Code)
	}
}

func TestSaveToBucketAvatarLogo(t *testing.T) {
	env := newTestEnv(t)
	user := env.newTestUser(t, "designer-avatar@handler-test.local")

	fields := baseFields("Avatar Card")
	fields["savedata"] = "true"
	fields["settings"] = `{"logoType":"avatar"}`
	avatar := tinyPNG(t)

	rr := httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, avatar), sessionFor(user)))
	resp := decodeEnvelope(t, rr)
	if !resp.Success {
		t.Fatalf("avatar save failed: %s", resp.Message)
	}

	cards, _ := env.QRStore.ListByOwner(user.ID)
	if len(cards) != 1 || !cards[0].HasAvatar() {
		t.Fatal("avatar bytes not stored with the card")
	}
	if cards[0].AvatarContentType == nil || *cards[0].AvatarContentType != "image/png" {
		t.Error("avatar content type not recorded")
	}

	// An update without a new file keeps the stored avatar.
	fields["qrcodeid"] = cards[0].ID.String()
	rr = httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))
	if resp := decodeEnvelope(t, rr); !resp.Success {
		t.Fatalf("update failed: %s", resp.Message)
	}
	cards, _ = env.QRStore.ListByOwner(user.ID)
	if !cards[0].HasAvatar() {
		t.Error("stored avatar lost on update without a new file")
	}
}

func TestSaveToBucketRejectsNonImageAvatar(t *testing.T) {
	env := newTestEnv(t)
	user := env.newTestUser(t, "designer-avatar-bad@handler-test.local")

	fields := baseFields("Bad Avatar")
	fields["settings"] = `{"logoType":"avatar"}`
	rr := httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, []byte("%PDF-1.4 not an image")), sessionFor(user)))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (body %s)", rr.Code, rr.Body.String())
	}
}

func TestSaveToBucketSocialIconLogo(t *testing.T) {
	env := newTestEnv(t)
	user := env.newTestUser(t, "designer-social@handler-test.local")

	// linkedin ships in the embedded icon set.
	fields := baseFields("Social Card")
	fields["settings"] = `{"logoType":"social","socialIconName":"linkedin"}`
	rr := httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))
	if resp := decodeEnvelope(t, rr); !resp.Success {
		t.Fatalf("social preview failed: %s", resp.Message)
	}

	// Unknown or path-escaping names are refused.
	for _, bad := range []string{"no-such-icon", "../secrets", "Linked In"} {
		fields["settings"] = `{"logoType":"social","socialIconName":"` + bad + `"}`
		rr := httptest.NewRecorder()
		env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("icon %q: status = %d, want 400", bad, rr.Code)
		}
	}
}

func TestEditReturnsFullRecord(t *testing.T) {
	env := newTestEnv(t)
	user := env.newTestUser(t, "designer-edit@handler-test.local")
	stranger := env.newTestUser(t, "designer-edit-stranger@handler-test.local")

	fields := baseFields("Hydrate Me")
	fields["savedata"] = "true"
	fields["settings"] = `{"logoType":"avatar"}`
	rr := httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, tinyPNG(t)), sessionFor(user)))
	created := decodeEnvelope(t, rr)
	if !created.Success {
		t.Fatalf("create failed: %s", created.Message)
	}

	editReq := func(req *http.Request) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		env.Designer.Edit(rr, req)
		return rr
	}

	body := `{"qrcodeId":"` + created.Message + `"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/qr-designer/edit", strings.NewReader(body)), sessionFor(user))
	rr = editReq(req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var rec editRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec.ID != created.Message || rec.Name != "Hydrate Me" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Data.IsEmpty() {
		t.Error("record missing stored image")
	}
	if rec.AvatarFile.IsEmpty() {
		t.Error("record missing stored avatar")
	}
	if rec.Settings.LogoType != models.LogoAvatar {
		t.Errorf("settings logo = %s", rec.Settings.LogoType)
	}

	// Foreign records hydrate as 404.
	req = withSession(httptest.NewRequest(http.MethodPost, "/api/qr-designer/edit", strings.NewReader(body)), sessionFor(stranger))
	if rr := editReq(req); rr.Code != http.StatusNotFound {
		t.Errorf("foreign edit status = %d, want 404", rr.Code)
	}
}

func TestListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	user := env.newTestUser(t, "designer-list@handler-test.local")

	fields := baseFields("Listed Card")
	fields["savedata"] = "true"
	rr := httptest.NewRecorder()
	env.Designer.SaveToBucket(rr, withSession(saveRequest(t, fields, nil), sessionFor(user)))
	created := decodeEnvelope(t, rr)

	rr = httptest.NewRecorder()
	env.Designer.List(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/qr-designer/list", nil), sessionFor(user)))
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var listResp struct {
		Success bool            `json:"success"`
		QRCodes []models.QRCode `json:"qrcodes"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if !listResp.Success || len(listResp.QRCodes) != 1 {
		t.Fatalf("list = %+v", listResp)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/qr-designer/"+created.Message, nil)
	env.Designer.Delete(rr, withChiURLParamAndSession(req, "id", created.Message, sessionFor(user)))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rr.Code, rr.Body.String())
	}
	if count, _ := env.QRStore.CountByOwner(user.ID); count != 0 {
		t.Error("card still present after delete")
	}

	// Deleting again is a 404.
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/qr-designer/"+created.Message, nil)
	env.Designer.Delete(rr, withChiURLParamAndSession(req, "id", created.Message, sessionFor(user)))
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

func TestGetIconsUsesCache(t *testing.T) {
	env := newTestEnv(t)
	env.seedTestIcon(t, "handler-test-icon")

	rr := httptest.NewRecorder()
	env.Designer.GetIcons(rr, httptest.NewRequest(http.MethodGet, "/api/qr-designer/geticons", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var icons []models.Icon
	if err := json.Unmarshal(rr.Body.Bytes(), &icons); err != nil {
		t.Fatalf("decode icons: %v", err)
	}
	found := false
	for _, ic := range icons {
		if ic.Name == "handler-test-icon" {
			found = true
		}
	}
	if !found {
		t.Fatal("seeded icon missing from catalog")
	}

	// The call populated the Valkey-side catalog cache.
	if cached, ok := env.IconCache.Get(httptest.NewRequest(http.MethodGet, "/", nil).Context()); !ok || len(cached) == 0 {
		t.Error("icon catalog not cached after first fetch")
	}
}
