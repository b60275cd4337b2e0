package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/session"
)

// newCmd opens an image as a fresh edit session.
type newCmd struct {
	*root
	fs         *flag.FlagSet
	image      string
	canvasSpec string
	ratio      float64
	sessionFlag
}

func (c *newCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseNewCmd(args []string, r *root) (*newCmd, error) {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	c := &newCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.image, "image", "", "source image (png, jpeg, gif or webp)")
	fs.StringVar(&c.canvasSpec, "canvas", "", "live preview size as WxH (default 1000x800)")
	fs.Float64Var(&c.ratio, "pixel-ratio", 0, "device pixels per canvas unit (defaults to the config)")
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.image == "" || c.path == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *newCmd) Run() error {
	img, err := session.LoadImage(c.image)
	if err != nil {
		return err
	}
	var canvas geometry.Size
	if c.canvasSpec != "" {
		if canvas, err = parseSize(c.canvasSpec); err != nil {
			return err
		}
	}
	src := c.image
	if abs, err := filepath.Abs(c.image); err == nil {
		src = abs
	}
	s := session.New(src, img, canvas)
	if c.config != nil {
		s.Margins = c.config.Crop.Margins()
		if pr := c.config.Export.PixelRatio; pr > 0 {
			s.PixelRatio = pr
		}
	}
	if c.ratio > 0 {
		s.PixelRatio = c.ratio
	}
	if err := c.save(s); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "session %s: %s %gx%g on a %gx%g canvas\n",
		s.ID, filepath.Base(src), s.ImageSize.W, s.ImageSize.H, s.Canvas.W, s.Canvas.H)
	return nil
}
