// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"html"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cardpress/internal/cache"
	"cardpress/internal/markdown"
	"cardpress/internal/store"
)

// Public groups the anonymous-facing handlers: the card page a printed
// QR code points at, the stored QR image itself, and health. Card pages
// check the Valkey cache before touching Postgres.
type Public struct {
	qrStore   *store.QRCodeStore
	cardCache *cache.CardCache
}

// NewPublic creates a new Public handler group.
func NewPublic(qrStore *store.QRCodeStore, cardCache *cache.CardCache) *Public {
	return &Public{qrStore: qrStore, cardCache: cardCache}
}

// cardPageTmpl renders the public card page. Kept minimal: the card's
// destination link, name, description, and the QR image.
var cardPageTmpl = template.Must(template.New("card").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Name}}</title>
<script src="https://cdn.tailwindcss.com"></script></head>
<body class="bg-gray-100 flex items-center justify-center min-h-screen">
<div class="bg-white rounded-xl shadow p-8 max-w-md text-center">
<img src="/c/{{.Slug}}/qr.png" alt="QR code" class="mx-auto w-48 h-48">
<h1 class="mt-4 text-2xl font-bold text-gray-900">{{.Name}}</h1>
<div class="mt-2 text-gray-600 text-left">{{.DescriptionHTML}}</div>
<a href="{{.URL}}" class="mt-6 inline-block bg-indigo-600 text-white px-6 py-2 rounded-lg hover:bg-indigo-700">Visit</a>
</div></body></html>`))

type cardPageData struct {
	Name            string
	Slug            string
	URL             string
	DescriptionHTML template.HTML
}

// CardPage renders the public page for a saved card by slug.
func (p *Public) CardPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	if cached, ok := p.cardCache.Get(ctx, slugParam); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return
	}

	card, err := p.qrStore.FindBySlug(slugParam)
	if err != nil {
		slog.Error("find card by slug failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if card == nil {
		p.notFound(w)
		return
	}

	descHTML, err := markdown.ToHTML(card.Description)
	if err != nil {
		slog.Warn("description render failed", "error", err, "slug", slugParam)
		descHTML = "<p>" + html.EscapeString(card.Description) + "</p>"
	}

	var buf bytes.Buffer
	if err := cardPageTmpl.Execute(&buf, &cardPageData{
		Name:            card.Name,
		Slug:            card.Slug,
		URL:             card.URL,
		DescriptionHTML: template.HTML(descHTML),
	}); err != nil {
		slog.Error("card page render failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.cardCache.Set(ctx, slugParam, buf.Bytes())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// CardImage serves the stored QR image for a card by slug.
func (p *Public) CardImage(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	card, err := p.qrStore.FindBySlug(slugParam)
	if err != nil {
		slog.Error("find card by slug failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if card == nil || len(card.Image) == 0 {
		http.NotFound(w, r)
		return
	}

	contentType := card.ImageContentType
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(card.Image)
}

// Health reports liveness for load balancers.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (p *Public) notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`<!DOCTYPE html>
<html><head><title>Not Found</title></head>
<body><h1>404</h1><p>This card does not exist.</p></body></html>`))
}
