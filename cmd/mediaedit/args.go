package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/session"
)

type boolFlag interface{ IsBoolFlag() bool }

// splitArgs separates the flags known to fs from positional arguments so
// flags may follow positionals. A lone "--" ends flag parsing.
func splitArgs(fs *flag.FlagSet, args []string) ([]string, []string, error) {
	var flags []string
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" || isNumber(arg) {
			positionals = append(positionals, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		parts := strings.SplitN(name, "=", 2)
		f := fs.Lookup(parts[0])
		if f == nil {
			positionals = append(positionals, arg)
			continue
		}
		// Normalise to single dash form for the flag parser.
		norm := "-" + parts[0]
		if len(parts) == 2 {
			flags = append(flags, norm+"="+parts[1])
			continue
		}
		if b, ok := f.Value.(boolFlag); ok && b.IsBoolFlag() {
			flags = append(flags, norm)
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("flag %s requires a value", arg)
		}
		flags = append(flags, norm, args[i+1])
		i++
	}
	return flags, positionals, nil
}

// isNumber reports whether arg is a negative number or point such as
// "-4" or "-4,10" rather than a flag.
func isNumber(arg string) bool {
	head, _, _ := strings.Cut(arg, ",")
	_, err := strconv.ParseFloat(head, 64)
	return err == nil
}

// parsePoint reads "x,y".
func parsePoint(s string) (geometry.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return geometry.Point{}, fmt.Errorf("invalid point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return geometry.Pt(x, y), nil
}

// parseSize reads "WxH".
func parseSize(s string) (geometry.Size, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return geometry.Size{}, fmt.Errorf("invalid size %q: want WxH", s)
	}
	w, err := strconv.ParseFloat(ws, 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	h, err := strconv.ParseFloat(hs, 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return geometry.Size{}, fmt.Errorf("invalid size %q: sides must be positive", s)
	}
	return geometry.Size{W: w, H: h}, nil
}

// sessionFlag is shared by the commands that operate on a saved session.
type sessionFlag struct {
	path string
}

func (s *sessionFlag) register(fs *flag.FlagSet) {
	fs.StringVar(&s.path, "session", "", "session file")
}

func (s *sessionFlag) open() (*session.Session, error) {
	if s.path == "" {
		return nil, fmt.Errorf("-session is required")
	}
	return session.Open(s.path)
}

func (s *sessionFlag) save(sess *session.Session) error {
	return sess.Save(s.path)
}
