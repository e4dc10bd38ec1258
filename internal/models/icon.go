// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Icon is one entry of the fixed, server-supplied social-icon catalog.
// Clients cache the catalog locally under the "qrcodeIcons" key.
type Icon struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
