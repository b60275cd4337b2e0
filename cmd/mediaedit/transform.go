package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/example/mediaedit/internal/crop"
	"github.com/example/mediaedit/internal/session"
	"github.com/example/mediaedit/internal/transform"
)

// transformCmd edits the image transform of a session.
type transformCmd struct {
	*root
	fs          *flag.FlagSet
	ratio       string
	rotate      *float64
	scale       *float64
	translate   string
	flip        string
	quickRotate bool
	reset       bool
	sessionFlag
}

func (t *transformCmd) FlagSet() *flag.FlagSet {
	return t.fs
}

func floatFunc(dst **float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}
}

func parseTransformCmd(args []string, r *root) (*transformCmd, error) {
	fs := flag.NewFlagSet("transform", flag.ContinueOnError)
	t := &transformCmd{root: r, fs: fs}
	fs.Usage = usageFunc(t)
	fs.StringVar(&t.ratio, "ratio", "", "crop ratio key: free, original, square or WxH")
	fs.Func("rotate", "rotate by degrees", floatFunc(&t.rotate))
	fs.Func("scale", "set the zoom factor (1 fits the crop area)", floatFunc(&t.scale))
	fs.StringVar(&t.translate, "translate", "", "move the image by dx,dy canvas units")
	fs.StringVar(&t.flip, "flip", "", "mirror the image: h, v or hv")
	fs.BoolVar(&t.quickRotate, "quick-rotate", false, "turn a quarter counter-clockwise")
	fs.BoolVar(&t.reset, "reset", false, "restore the untouched transform first")
	t.register(fs)
	flagArgs, positionals, err := splitArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) > 0 {
		return nil, &UsageError{of: t}
	}
	if strings.Trim(strings.ToLower(t.flip), "hv") != "" {
		return nil, fmt.Errorf("invalid flip %q: want h, v or hv", t.flip)
	}
	if t.scale != nil && *t.scale <= 0 {
		return nil, fmt.Errorf("scale must be positive")
	}
	return t, nil
}

func (t *transformCmd) Run() error {
	s, err := t.open()
	if err != nil {
		return err
	}
	st := s.State
	if t.reset {
		st.Set(transform.Identity(s.ImageSize.Ratio()))
	}
	if t.quickRotate {
		st.QuickRotate()
	}
	flip := strings.ToLower(t.flip)
	if strings.Contains(flip, "h") {
		st.FlipHorizontal()
	}
	if strings.Contains(flip, "v") {
		st.FlipVertical()
	}
	if t.translate != "" {
		d, err := parsePoint(t.translate)
		if err != nil {
			return err
		}
		st.Update(func(v *transform.Values) { v.Translation = v.Translation.Add(d) })
	}
	st.Update(func(v *transform.Values) {
		if t.rotate != nil {
			v.Rotation = transform.NormalizeAngle(v.Rotation + *t.rotate*math.Pi/180)
		}
		if t.scale != nil {
			v.Scale = *t.scale
		}
	})
	if t.ratio != "" {
		v, err := crop.SetRatio(s.Frame(), st.Values(), t.ratio)
		if err != nil {
			return err
		}
		st.Set(v)
	}
	st.Set(crop.Clamp(s.Frame(), st.Values()))
	if err := t.save(s); err != nil {
		return err
	}
	printTransform(t.stdout, s)
	return nil
}

func printTransform(w io.Writer, s *session.Session) {
	v := s.State.Values()
	ratio := v.FixedRatio
	if ratio == "" {
		ratio = "free"
	}
	win := s.Frame().Window(v)
	fmt.Fprintf(w, "ratio %s (%.3f) scale %.3f rotation %.1f° translation %.1f,%.1f flip %g,%g\n",
		ratio, v.RatioOrDefault(s.ImageSize.Ratio()), v.Scale, v.Rotation*180/math.Pi,
		v.Translation.X, v.Translation.Y, v.Flip.X, v.Flip.Y)
	fmt.Fprintf(w, "crop window %.1f,%.1f %.1fx%.1f\n", win.Left, win.Top, win.Width, win.Height)
}
