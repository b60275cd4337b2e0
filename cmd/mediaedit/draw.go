package main

import (
	"flag"
	"fmt"
	"image/color"

	"github.com/example/mediaedit/internal/brush"
	"github.com/example/mediaedit/internal/colorutil"
	"github.com/example/mediaedit/internal/geometry"
)

// drawCmd adds one brush stroke to a session. Points are in canvas units.
type drawCmd struct {
	*root
	fs        *flag.FlagSet
	brushName string
	colorSpec string
	size      float64
	kind      brush.Kind
	color     color.NRGBA
	points    []geometry.Point
	sessionFlag
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ContinueOnError)
	d := &drawCmd{root: r, fs: fs}
	fs.Usage = usageFunc(d)
	defBrush, defSize := "pen", 15.0
	if r != nil && r.config != nil {
		defBrush, defSize = r.config.Brush.Default, r.config.Brush.Size
	}
	fs.StringVar(&d.brushName, "brush", defBrush, "brush: pen, arrow, marker, neon, blur or eraser")
	fs.StringVar(&d.colorSpec, "color", "", "stroke colour name or hex value (defaults to the brush preference)")
	fs.Float64Var(&d.size, "size", defSize, "stroke width in canvas units")
	d.register(fs)

	flagArgs, positionals, err := splitArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) < 1 {
		return nil, &UsageError{of: d}
	}
	if d.kind, err = brush.ParseKind(d.brushName); err != nil {
		return nil, err
	}
	if d.size <= 0 {
		return nil, fmt.Errorf("size must be positive")
	}
	if d.colorSpec != "" {
		if d.color, err = colorutil.Parse(d.colorSpec); err != nil {
			return nil, err
		}
	}
	for _, raw := range positionals {
		p, err := parsePoint(raw)
		if err != nil {
			return nil, err
		}
		d.points = append(d.points, p)
	}
	return d, nil
}

func (d *drawCmd) Run() error {
	s, err := d.open()
	if err != nil {
		return err
	}
	if d.colorSpec == "" {
		d.color = d.prefs().BrushColor(d.kind).Color()
	}
	pr := s.PixelRatio
	line := brush.Line{Color: d.color, Brush: d.kind, Size: d.size * pr}
	for _, p := range d.points {
		line.Points = append(line.Points, p.Mul(pr))
	}
	if err := s.AddLine(line); err != nil {
		return err
	}
	if err := d.save(s); err != nil {
		return err
	}
	fmt.Fprintf(d.stdout, "added %s stroke with %d points (%d lines)\n", d.kind, len(d.points), len(s.Lines()))
	return nil
}
