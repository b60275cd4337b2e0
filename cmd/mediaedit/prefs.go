package main

import (
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/mediaedit/internal/brush"
	"github.com/example/mediaedit/internal/colorutil"
	"github.com/example/mediaedit/internal/prefs"
)

// prefsCmd reads and writes the preferences file, including the per-brush
// colour entries.
type prefsCmd struct {
	*root
	fs     *flag.FlagSet
	action string
	args   []string
}

func (p *prefsCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func parsePrefsCmd(args []string, r *root) (*prefsCmd, error) {
	fs := flag.NewFlagSet("prefs", flag.ContinueOnError)
	p := &prefsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(p)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return nil, &UsageError{of: p}
	}
	p.action, p.args = strings.ToLower(rest[0]), rest[1:]
	switch p.action {
	case "list":
	case "get":
		if len(p.args) != 1 {
			return nil, fmt.Errorf("prefs get requires a key")
		}
	case "set":
		if len(p.args) < 2 {
			return nil, fmt.Errorf("prefs set requires a key and a value")
		}
	default:
		return nil, fmt.Errorf("unknown prefs action %q", p.action)
	}
	return p, nil
}

func (p *prefsCmd) Run() error {
	store := p.prefs()
	switch p.action {
	case "list":
		keys := store.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintln(p.stdout, k)
		}
		return nil
	case "get":
		if k, err := brush.ParseKind(p.args[0]); err == nil {
			fmt.Fprintln(p.stdout, formatBrushColor(store.BrushColor(k)))
			return nil
		}
		if v := store.String(p.args[0], ""); v != "" {
			fmt.Fprintln(p.stdout, v)
			return nil
		}
		const unset = -1 << 52
		if v := store.Float(p.args[0], unset); v != unset {
			fmt.Fprintln(p.stdout, strconv.FormatFloat(v, 'f', -1, 64))
			return nil
		}
		return fmt.Errorf("preference %q is not set", p.args[0])
	}
	if k, err := brush.ParseKind(p.args[0]); err == nil {
		if err := setBrushColor(store, k, p.args[1:]); err != nil {
			return err
		}
	} else if f, err := strconv.ParseFloat(p.args[1], 64); err == nil && len(p.args) == 2 {
		store.SetFloat(p.args[0], f)
	} else {
		store.SetString(p.args[0], strings.Join(p.args[1:], " "))
	}
	return store.Save()
}

func formatBrushColor(bc prefs.BrushColor) string {
	sel := "swatch"
	if bc.Selector == prefs.SelectPicker {
		sel = "picker"
	}
	return fmt.Sprintf("%s swatch=%s picker=%s", sel, colorutil.Hex(bc.Swatch), colorutil.Hex(bc.Picker))
}

// setBrushColor applies "swatch|picker [colour]" to the entry of k.
func setBrushColor(store *prefs.Prefs, k brush.Kind, args []string) error {
	bc := store.BrushColor(k)
	switch strings.ToLower(args[0]) {
	case "swatch":
		bc.Selector = prefs.SelectSwatch
	case "picker":
		bc.Selector = prefs.SelectPicker
	default:
		return fmt.Errorf("brush colour selector must be swatch or picker, got %q", args[0])
	}
	if len(args) > 1 {
		c, err := colorutil.Parse(args[1])
		if err != nil {
			return err
		}
		if bc.Selector == prefs.SelectPicker {
			bc.Picker = c
		} else {
			bc.Swatch = c
		}
	}
	store.SetBrushColor(k, bc)
	return nil
}
