package main

import (
	"flag"
	"fmt"

	"github.com/example/mediaedit/internal/brush"
	"github.com/example/mediaedit/internal/colorutil"
	"github.com/example/mediaedit/internal/transform"
)

type brushesCmd struct {
	*root
	fs *flag.FlagSet
}

func parseBrushesCmd(args []string, r *root) (*brushesCmd, error) {
	fs := flag.NewFlagSet("brushes", flag.ContinueOnError)
	cmd := &brushesCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *brushesCmd) Run() error {
	store := c.prefs()
	def := ""
	if c.config != nil {
		def = c.config.Brush.Default
	}
	fmt.Fprintln(c.stdout, "available brushes (* marks the default brush):")
	for _, k := range brush.Kinds() {
		marker := " "
		if k.String() == def {
			marker = "*"
		}
		if !k.HasColor() {
			fmt.Fprintf(c.stdout, "%s %-8s\n", marker, k)
			continue
		}
		col := store.BrushColor(k).Color()
		block := fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", col.R, col.G, col.B)
		fmt.Fprintf(c.stdout, "%s %-8s %s %s\n", marker, k, colorutil.Hex(col), block)
	}
	return nil
}

func (c *brushesCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

type ratiosCmd struct {
	*root
	fs *flag.FlagSet
}

func parseRatiosCmd(args []string, r *root) (*ratiosCmd, error) {
	fs := flag.NewFlagSet("ratios", flag.ContinueOnError)
	cmd := &ratiosCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *ratiosCmd) Run() error {
	fmt.Fprintln(c.stdout, "free")
	for _, k := range transform.RatioKeys {
		if k == transform.RatioOriginal {
			fmt.Fprintln(c.stdout, k)
			continue
		}
		r, err := transform.ParseRatio(k, 1)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "%-8s %.4f\n", k, r)
	}
	return nil
}

func (c *ratiosCmd) FlagSet() *flag.FlagSet {
	return c.fs
}
