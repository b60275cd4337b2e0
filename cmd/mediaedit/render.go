package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/mediaedit/internal/clipboard"
	"github.com/example/mediaedit/internal/export"
)

// renderCmd exports a session to a PNG still or a GIF animation.
type renderCmd struct {
	*root
	fs          *flag.FlagSet
	output      string
	toClipboard bool
	frameRate   float64
	maxFrames   int
	sessionFlag
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	c := &renderCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "output", "", "output file; the extension should match the result (.png or .gif)")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&c.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	fs.Float64Var(&c.frameRate, "frame-rate", 0, "animation frame rate (defaults to the config)")
	fs.IntVar(&c.maxFrames, "max-frames", -1, "cap on animation frames, 0 for none (defaults to the config)")
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.output == "" && !c.toClipboard {
		return nil, fmt.Errorf("-output or -to-clipboard is required")
	}
	return c, nil
}

func (c *renderCmd) Run() error {
	s, err := c.open()
	if err != nil {
		return err
	}
	in, err := s.ExportInput()
	if err != nil {
		return err
	}
	opts := c.exportOptions()
	if c.frameRate > 0 {
		opts.FrameRate = c.frameRate
	}
	if c.maxFrames >= 0 {
		opts.MaxFrames = c.maxFrames
	}
	res, err := export.Render(context.Background(), in, opts)
	if err != nil {
		return err
	}
	if c.output != "" {
		if ext := strings.ToLower(filepath.Ext(c.output)); ext != extensionFor(res.MIME) {
			fmt.Fprintf(c.stderr, "warning: %s output written to %s\n", res.MIME, c.output)
		}
		if err := os.WriteFile(c.output, res.Data, 0o644); err != nil {
			return err
		}
		saved := c.output
		if abs, err := filepath.Abs(c.output); err == nil {
			saved = abs
		}
		fmt.Fprintf(c.stderr, "saved %s (%dx%d, %d frame(s))\n", saved, res.Width, res.Height, res.Frames)
		preview, _ := s.Image()
		c.notifier.Export(saved, res.Frames, preview)
	}
	if c.toClipboard {
		if err := clipboard.WriteRender(res.Data, res.MIME); err != nil {
			return fmt.Errorf("copy render to clipboard: %w", err)
		}
		detail := "render"
		if c.output != "" {
			detail = filepath.Base(c.output)
		}
		fmt.Fprintf(c.stderr, "copied %s to clipboard\n", detail)
		c.notifier.Copy(detail)
	}
	return nil
}

func extensionFor(mime string) string {
	if mime == "image/gif" {
		return ".gif"
	}
	return ".png"
}
