// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ByteArray is a byte slice that serializes to a plain JSON number array
// ([0, 255, ...]) instead of the base64 string encoding/json uses for
// []byte. The number-array shape is the wire contract for all image
// payloads exchanged with designer clients.
type ByteArray []byte

// MarshalJSON encodes the bytes as a JSON array of integers.
func (b ByteArray) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.Grow(len(b)*4 + 2)
	buf.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Itoa(int(v)))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON array of integers in [0,255] back into bytes.
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = nil
		return nil
	}
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return fmt.Errorf("byte array: %w", err)
	}
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return fmt.Errorf("byte array: value %d out of range at index %d", n, i)
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}

// BinaryPayload wraps image bytes with their content type for JSON
// transport. Rendered QR images and stored avatars both travel in this
// shape rather than as raw binary.
type BinaryPayload struct {
	Data        ByteArray `json:"data"`
	ContentType string    `json:"contentType"`
}

// IsEmpty reports whether the payload carries no bytes.
func (p *BinaryPayload) IsEmpty() bool {
	return p == nil || len(p.Data) == 0
}
