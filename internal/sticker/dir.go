package sticker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ManifestName is the optional per-set file describing its stickers.
const ManifestName = "set.json"

const recentName = ".recent.json"

// MaxRecent bounds the recent sticker list.
const MaxRecent = 20

type manifest struct {
	Title    string          `json:"title"`
	Stickers []manifestEntry `json:"stickers"`
}

type manifestEntry struct {
	File     string   `json:"file"`
	Emoji    string   `json:"emoji"`
	Keywords []string `json:"keywords"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
}

// DirLookup serves stickers from a directory tree. Every subdirectory of
// Root is a set; a set.json manifest may attach emoji and keywords to its
// files. Recently used stickers are kept in Root/.recent.json.
type DirLookup struct {
	Root string

	mu sync.Mutex
}

// NewDirLookup returns a lookup rooted at root.
func NewDirLookup(root string) *DirLookup { return &DirLookup{Root: root} }

func (l *DirLookup) loadSet(name string) (*Set, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("set %q: %w", name, ErrNotFound)
	}
	dir := filepath.Join(l.Root, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("set %q: %w", name, ErrNotFound)
		}
		return nil, err
	}
	set := &Set{Name: name, Title: name}
	meta := map[string]manifestEntry{}
	if b, err := os.ReadFile(filepath.Join(dir, ManifestName)); err == nil {
		var m manifest
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("set %q manifest: %w", name, err)
		}
		if m.Title != "" {
			set.Title = m.Title
		}
		for _, e := range m.Stickers {
			meta[e.File] = e
		}
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format, ok := FormatForPath(e.Name())
		if !ok {
			continue
		}
		m := meta[e.Name()]
		set.Documents = append(set.Documents, Document{
			ID:       name + "/" + strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Set:      name,
			Emoji:    m.Emoji,
			Keywords: m.Keywords,
			Path:     filepath.Join(dir, e.Name()),
			Format:   format,
			Width:    m.Width,
			Height:   m.Height,
		})
	}
	return set, nil
}

func (l *DirLookup) sets() ([]*Set, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []*Set
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		s, err := l.loadSet(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// SetNames lists the available sets.
func (l *DirLookup) SetNames() ([]string, error) {
	sets, err := l.sets()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}
	sort.Strings(names)
	return names, nil
}

// GetStickerSet returns the named set.
func (l *DirLookup) GetStickerSet(ctx context.Context, name string) (*Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.loadSet(name)
}

func (l *DirLookup) filter(ctx context.Context, keep func(Document) bool) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sets, err := l.sets()
	if err != nil {
		return nil, err
	}
	var out []Document
	for _, s := range sets {
		for _, d := range s.Documents {
			if keep(d) {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

// SearchStickers matches query against ids and keywords.
func (l *DirLookup) SearchStickers(ctx context.Context, query string) ([]Document, error) {
	return l.filter(ctx, func(d Document) bool { return d.matches(query) })
}

// GetStickersByEmoticon returns the stickers tagged with emoticon.
func (l *DirLookup) GetStickersByEmoticon(ctx context.Context, emoticon string) ([]Document, error) {
	return l.filter(ctx, func(d Document) bool { return emoticon != "" && d.Emoji == emoticon })
}

// Document resolves a sticker id of the form set/name.
func (l *DirLookup) Document(ctx context.Context, id string) (Document, error) {
	set, _, ok := strings.Cut(id, "/")
	if !ok {
		return Document{}, fmt.Errorf("sticker %q: %w", id, ErrNotFound)
	}
	s, err := l.GetStickerSet(ctx, set)
	if err != nil {
		return Document{}, err
	}
	for _, d := range s.Documents {
		if d.ID == id {
			return d, nil
		}
	}
	return Document{}, fmt.Errorf("sticker %q: %w", id, ErrNotFound)
}

// GetRecentStickers returns recently used stickers, newest first.
func (l *DirLookup) GetRecentStickers(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readRecent()
}

func (l *DirLookup) readRecent() ([]Document, error) {
	b, err := os.ReadFile(filepath.Join(l.Root, recentName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var docs []Document
	if err := json.Unmarshal(b, &docs); err != nil {
		// a corrupt list is dropped and rebuilt by the next MarkRecent
		return nil, nil
	}
	return docs, nil
}

// MarkRecent moves d to the front of the recent list.
func (l *DirLookup) MarkRecent(d Document) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	docs, err := l.readRecent()
	if err != nil {
		return err
	}
	out := []Document{d}
	for _, r := range docs {
		if r.ID != d.ID {
			out = append(out, r)
		}
	}
	if len(out) > MaxRecent {
		out = out[:MaxRecent]
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.Root, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.Root, recentName), b, 0o644)
}
