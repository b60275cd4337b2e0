package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/example/mediaedit/internal/colorutil"
	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/layers"
	"github.com/example/mediaedit/internal/session"
)

// layerCmd adds, edits and removes text and sticker layers.
type layerCmd struct {
	*root
	fs        *flag.FlagSet
	action    string
	args      []string
	at        string
	colorSpec string
	size      float64
	align     string
	style     string
	sessionFlag
}

func (l *layerCmd) FlagSet() *flag.FlagSet {
	return l.fs
}

var layerActions = map[string]int{
	"text":    1,
	"sticker": 1,
	"move":    2,
	"resize":  3,
	"remove":  1,
	"select":  1,
	"list":    0,
}

func parseLayerCmd(args []string, r *root) (*layerCmd, error) {
	fs := flag.NewFlagSet("layer", flag.ContinueOnError)
	l := &layerCmd{root: r, fs: fs}
	fs.Usage = usageFunc(l)
	fs.StringVar(&l.at, "at", "", "layer centre as x,y in canvas units (defaults to the crop centre)")
	fs.StringVar(&l.colorSpec, "color", "white", "text colour")
	fs.Float64Var(&l.size, "size", layers.DefaultTextSize, "font size in canvas units")
	fs.StringVar(&l.align, "align", "center", "text alignment: left, center or right")
	fs.StringVar(&l.style, "style", "normal", "text style: normal, outline or background")
	l.register(fs)

	flagArgs, positionals, err := splitArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) < 1 {
		return nil, &UsageError{of: l}
	}
	l.action = strings.ToLower(positionals[0])
	l.args = positionals[1:]
	want, ok := layerActions[l.action]
	if !ok {
		return nil, fmt.Errorf("unknown layer action %q", l.action)
	}
	if len(l.args) < want || (l.action != "text" && len(l.args) != want) {
		return nil, fmt.Errorf("layer %s requires %d argument(s)", l.action, want)
	}
	return l, nil
}

func (l *layerCmd) Run() error {
	s, err := l.open()
	if err != nil {
		return err
	}
	switch l.action {
	case "list":
		for _, ly := range s.Layers.RenderOrder() {
			fmt.Fprintln(l.stdout, describeLayer(ly))
		}
		return nil
	case "text":
		err = l.addText(s)
	case "sticker":
		err = l.addSticker(s)
	default:
		err = l.editLayer(s)
	}
	if err != nil {
		return err
	}
	return l.save(s)
}

func describeLayer(ly layers.Layer) string {
	head := fmt.Sprintf("%d %s at %.0f,%.0f scale %.2f rotation %.1f°",
		ly.ID, ly.Kind, ly.Position.X, ly.Position.Y, ly.Scale, ly.Rotation*180/math.Pi)
	switch {
	case ly.Text != nil:
		return head + fmt.Sprintf(" %q", ly.Text.Text)
	case ly.Sticker != nil:
		return head + " " + ly.Sticker.ID
	}
	return head
}

func (l *layerCmd) position(s *session.Session) (geometry.Point, error) {
	if l.at == "" {
		return s.CropOffset().Center(), nil
	}
	return parsePoint(l.at)
}

func (l *layerCmd) addText(s *session.Session) error {
	pos, err := l.position(s)
	if err != nil {
		return err
	}
	c, err := colorutil.Parse(l.colorSpec)
	if err != nil {
		return err
	}
	info := layers.TextInfo{Text: strings.Join(l.args, " "), Color: c, Size: l.size}
	if err := info.Alignment.UnmarshalText([]byte(l.align)); err != nil {
		return err
	}
	if err := info.Style.UnmarshalText([]byte(l.style)); err != nil {
		return err
	}
	if strings.TrimSpace(info.Text) == "" {
		return fmt.Errorf("text content cannot be empty")
	}
	ly, err := s.AddText(pos, info)
	if err != nil {
		return err
	}
	fmt.Fprintf(l.stdout, "added text layer %d\n", ly.ID)
	return nil
}

func (l *layerCmd) addSticker(s *session.Session) error {
	pos, err := l.position(s)
	if err != nil {
		return err
	}
	lookup, err := l.stickers()
	if err != nil {
		return err
	}
	ctx := context.Background()
	d, err := lookup.Document(ctx, l.args[0])
	if err != nil {
		return err
	}
	ly, err := s.AddSticker(pos, d)
	if err != nil {
		return err
	}
	if err := lookup.MarkRecent(d); err != nil {
		fmt.Fprintf(l.stderr, "warning: recent stickers: %v\n", err)
	}
	fmt.Fprintf(l.stdout, "added sticker layer %d (%s)\n", ly.ID, d.ID)
	return nil
}

func (l *layerCmd) editLayer(s *session.Session) error {
	id, err := strconv.Atoi(l.args[0])
	if err != nil {
		return fmt.Errorf("invalid layer id %q", l.args[0])
	}
	ly, ok := s.Layers.Get(id)
	if !ok {
		return fmt.Errorf("layer %d: %w", id, layers.ErrUnknownLayer)
	}
	// gestures only reach layers of the active tab
	s.Layers.SetTab(ly.Kind.Owner())
	switch l.action {
	case "move":
		d, err := parsePoint(l.args[1])
		if err != nil {
			return err
		}
		return s.MoveLayer(id, d.X, d.Y)
	case "resize":
		from, err := parsePoint(l.args[1])
		if err != nil {
			return err
		}
		to, err := parsePoint(l.args[2])
		if err != nil {
			return err
		}
		return s.ResizeLayer(id, from, to)
	case "remove":
		return s.RemoveLayer(id)
	case "select":
		return s.Edit(func() error { return s.Layers.Select(id) })
	}
	return fmt.Errorf("unknown layer action %q", l.action)
}
