package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/example/mediaedit/internal/sticker"
)

// stickersCmd browses the sticker directory.
type stickersCmd struct {
	*root
	fs     *flag.FlagSet
	action string
	arg    string
}

func (s *stickersCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseStickersCmd(args []string, r *root) (*stickersCmd, error) {
	fs := flag.NewFlagSet("stickers", flag.ContinueOnError)
	s := &stickersCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return nil, &UsageError{of: s}
	}
	s.action = strings.ToLower(rest[0])
	switch s.action {
	case "sets", "recent":
		if len(rest) != 1 {
			return nil, &UsageError{of: s}
		}
	case "set", "search", "emoji":
		if len(rest) < 2 {
			return nil, fmt.Errorf("stickers %s requires an argument", s.action)
		}
		s.arg = strings.Join(rest[1:], " ")
	default:
		return nil, fmt.Errorf("unknown stickers action %q", s.action)
	}
	return s, nil
}

func (s *stickersCmd) Run() error {
	lookup, err := s.stickers()
	if err != nil {
		return err
	}
	ctx := context.Background()
	var docs []sticker.Document
	switch s.action {
	case "sets":
		names, err := lookup.SetNames()
		if err != nil {
			return err
		}
		for _, n := range names {
			set, err := lookup.GetStickerSet(ctx, n)
			if err != nil {
				fmt.Fprintf(s.stderr, "warning: %v\n", err)
				continue
			}
			fmt.Fprintf(s.stdout, "%-16s %3d  %s\n", set.Name, len(set.Documents), set.Title)
		}
		return nil
	case "set":
		set, err := lookup.GetStickerSet(ctx, s.arg)
		if err != nil {
			return err
		}
		docs = set.Documents
	case "search":
		docs, err = lookup.SearchStickers(ctx, s.arg)
	case "emoji":
		docs, err = lookup.GetStickersByEmoticon(ctx, s.arg)
	case "recent":
		docs, err = lookup.GetRecentStickers(ctx)
	}
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(s.stdout, "no stickers found")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(s.stdout, "%-24s %-4s %-5s %s\n", d.ID, d.Emoji, d.Format, strings.Join(d.Keywords, ","))
	}
	return nil
}
