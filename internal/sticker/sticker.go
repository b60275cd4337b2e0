// Package sticker finds sticker documents and renders their frames.
package sticker

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a set or document does not exist.
var ErrNotFound = errors.New("sticker: not found")

// Format is the encoding of a sticker file.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
	FormatGIF  Format = "gif"
	FormatSVG  Format = "svg"
)

// FormatForPath guesses the format from the file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, true
	case ".jpg", ".jpeg":
		return FormatJPEG, true
	case ".webp":
		return FormatWebP, true
	case ".gif":
		return FormatGIF, true
	case ".svg":
		return FormatSVG, true
	}
	return "", false
}

// Document is a sticker that can be placed on a layer. Width and Height are
// the preferred display size; zero means the file's own size.
type Document struct {
	ID       string   `json:"id"`
	Set      string   `json:"set,omitempty"`
	Emoji    string   `json:"emoji,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Path     string   `json:"path"`
	Format   Format   `json:"format"`
	Width    int      `json:"width,omitempty"`
	Height   int      `json:"height,omitempty"`
}

// Set is a named group of stickers.
type Set struct {
	Name      string
	Title     string
	Documents []Document
}

// Lookup resolves sticker documents.
type Lookup interface {
	GetStickerSet(ctx context.Context, name string) (*Set, error)
	SearchStickers(ctx context.Context, query string) ([]Document, error)
	GetStickersByEmoticon(ctx context.Context, emoticon string) ([]Document, error)
	GetRecentStickers(ctx context.Context) ([]Document, error)
}

func (d Document) matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	if strings.Contains(strings.ToLower(d.ID), q) || d.Emoji == query {
		return true
	}
	for _, k := range d.Keywords {
		if strings.Contains(strings.ToLower(k), q) {
			return true
		}
	}
	return false
}
