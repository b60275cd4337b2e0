package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/example/mediaedit/internal/config"
	"github.com/example/mediaedit/internal/export"
	"github.com/example/mediaedit/internal/logging"
	"github.com/example/mediaedit/internal/notify"
	"github.com/example/mediaedit/internal/prefs"
	"github.com/example/mediaedit/internal/sticker"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	notifier     *notify.Notifier
	config       *config.Config
	prefsFile    string
	stickerDir   string
	exportAlerts bool
	copyAlerts   bool
	verbose      bool
	stdout       io.Writer
	stderr       io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:      program,
		notifier:     r.notifier,
		config:       r.config,
		prefsFile:    r.prefsFile,
		stickerDir:   r.stickerDir,
		exportAlerts: r.exportAlerts,
		copyAlerts:   r.copyAlerts,
		verbose:      r.verbose,
		stdout:       r.stdout,
		stderr:       r.stderr,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	return newRootWithConfig(cfg)
}

func newRootWithConfig(cfg *config.Config) *root {
	r := &root{
		fs:       flag.NewFlagSet("mediaedit", flag.ContinueOnError),
		program:  "mediaedit",
		notifier: notify.New(notify.LoadPreferences()),
		config:   cfg,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.fs.BoolVar(&r.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after exporting a render")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.StringVar(&r.prefsFile, "prefs", cfg.PrefsFile, "preferences file (defaults to the user config dir)")
	r.fs.StringVar(&r.stickerDir, "stickers", cfg.StickerDir, "directory holding sticker sets")
	r.fs.BoolVar(&r.verbose, "verbose", false, "log editor diagnostics to stderr")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventExport, r.exportAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	if r.verbose {
		logging.Set(slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "new":
		cmd, err = parseNewCmd(subArgs, r.subcommand(cmdName))
	case "draw":
		cmd, err = parseDrawCmd(subArgs, r.subcommand(cmdName))
	case "layer":
		cmd, err = parseLayerCmd(subArgs, r.subcommand(cmdName))
	case "transform":
		cmd, err = parseTransformCmd(subArgs, r.subcommand(cmdName))
	case "crop":
		cmd, err = parseCropCmd(subArgs, r.subcommand(cmdName))
	case "undo", "redo":
		cmd, err = parseHistoryCmd(subArgs, r.subcommand(cmdName), cmdName == "redo")
	case "render":
		cmd, err = parseRenderCmd(subArgs, r.subcommand(cmdName))
	case "stickers":
		cmd, err = parseStickersCmd(subArgs, r.subcommand(cmdName))
	case "prefs":
		cmd, err = parsePrefsCmd(subArgs, r.subcommand(cmdName))
	case "edit":
		cmd, err = parseEditCmd(subArgs, r.subcommand(cmdName))
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "brushes":
		cmd, err = parseBrushesCmd(subArgs, r.subcommand(cmdName))
	case "ratios":
		cmd, err = parseRatiosCmd(subArgs, r.subcommand(cmdName))
	case "config":
		cmd, err = parseConfigCmd(subArgs, r.subcommand(cmdName))
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func (r *root) prefs() *prefs.Prefs {
	p := prefs.Load(r.prefsFile)
	if r.config != nil {
		p.OverrideDefaults(r.config.Colors)
	}
	return p
}

func (r *root) stickers() (*sticker.DirLookup, error) {
	if r.stickerDir == "" {
		return nil, errors.New("no sticker directory: set sticker_dir in the config or pass -stickers")
	}
	return sticker.NewDirLookup(r.stickerDir), nil
}

// exportOptions converts the [export] config section.
func (r *root) exportOptions() export.Options {
	opts := export.Options{}
	if r.config == nil {
		return opts
	}
	c := r.config.Export
	opts.SideMin = c.SideMin
	opts.SideMax = c.SideMax
	opts.FrameRate = c.FrameRate
	opts.MaxFrames = c.MaxFrames
	opts.BlurRadius = r.config.Brush.BlurRadius
	opts.OnError = func(err error) {
		fmt.Fprintf(r.stderr, "encode: %v\n", err)
	}
	return opts
}

func (r *root) throttle() time.Duration {
	if r.config == nil {
		return 0
	}
	return time.Duration(r.config.Brush.ThrottleMS) * time.Millisecond
}
