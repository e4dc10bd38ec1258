// Package web provides embedded static assets: the social icon set used
// for QR logo overlays and anything else served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree. The designer endpoints
// read icon PNGs from here when a card uses a social-icon logo, so the
// icons ship inside the binary.
//
//go:embed all:static
var StaticFS embed.FS
