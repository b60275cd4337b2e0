package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/example/mediaedit/internal/crop"
)

// cropCmd drags a crop handle or pans the image under the crop window.
type cropCmd struct {
	*root
	fs     *flag.FlagSet
	handle string
	delta  string
	pan    string
	sessionFlag
}

func (c *cropCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseCropCmd(args []string, r *root) (*cropCmd, error) {
	fs := flag.NewFlagSet("crop", flag.ContinueOnError)
	c := &cropCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.handle, "handle", "", "handle to drag: "+strings.Join(handleNames(), ", "))
	fs.StringVar(&c.delta, "delta", "", "handle drag distance as dx,dy canvas units")
	fs.StringVar(&c.pan, "pan", "", "pan the image by dx,dy canvas units")
	c.register(fs)
	flagArgs, positionals, err := splitArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) > 0 || (c.handle == "") == (c.pan == "") {
		return nil, &UsageError{of: c}
	}
	if c.handle != "" {
		if _, ok := crop.HandleByName(c.handle); !ok {
			return nil, fmt.Errorf("unknown handle %q", c.handle)
		}
		if c.delta == "" {
			return nil, fmt.Errorf("-handle requires -delta")
		}
	}
	return c, nil
}

func handleNames() []string {
	out := make([]string, len(crop.Handles))
	for i, h := range crop.Handles {
		out[i] = h.Name
	}
	return out
}

func (c *cropCmd) Run() error {
	s, err := c.open()
	if err != nil {
		return err
	}
	f := s.Frame()
	v := s.State.Values()
	if c.handle != "" {
		d, err := parsePoint(c.delta)
		if err != nil {
			return err
		}
		h, _ := crop.HandleByName(c.handle)
		g := crop.BeginResize(f, v, h)
		g.Update(d.X, d.Y)
		s.State.Set(g.Release(v))
	} else {
		d, err := parsePoint(c.pan)
		if err != nil {
			return err
		}
		s.State.Set(crop.BeginPan(f, v).Release(d.X, d.Y))
	}
	if err := c.save(s); err != nil {
		return err
	}
	printTransform(c.stdout, s)
	return nil
}
