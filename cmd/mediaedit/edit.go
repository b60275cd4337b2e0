package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/example/mediaedit/internal/appstate"
	"github.com/example/mediaedit/internal/brush"
)

// editCmd opens a session in the interactive editor window.
type editCmd struct {
	*root
	fs     *flag.FlagSet
	output string
	sessionFlag
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	e := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.output, "output", "", "file written by Ctrl+S (defaults to the session name with .png)")
	e.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 || e.path == "" {
		return nil, &UsageError{of: e}
	}
	return e, nil
}

func (e *editCmd) Run() error {
	s, err := e.open()
	if err != nil {
		return err
	}
	out := e.output
	if out == "" {
		out = strings.TrimSuffix(e.path, filepath.Ext(e.path)) + ".png"
		if e.config != nil && e.config.SaveDir != "" {
			out = filepath.Join(e.config.SaveDir, filepath.Base(out))
		}
	}
	opts := appstate.EditorOptions{Throttle: e.throttle()}
	if e.config != nil {
		opts.BlurRadius = e.config.Brush.BlurRadius
		opts.Size = e.config.Brush.Size
		if k, err := brush.ParseKind(e.config.Brush.Default); err == nil {
			opts.Brush = k
		}
	}
	appOpts := []appstate.Option{
		appstate.WithSession(s),
		appstate.WithPrefs(e.prefs()),
		appstate.WithOutput(out),
		appstate.WithExportOptions(e.exportOptions()),
		appstate.WithEditorOptions(opts),
		appstate.WithNotifier(e.notifier),
		appstate.WithOnClose(func() {
			if err := e.save(s); err != nil {
				fmt.Fprintf(e.stderr, "saving session: %v\n", err)
			}
		}),
	}
	if lookup, err := e.stickers(); err == nil {
		appOpts = append(appOpts, appstate.WithStickers(lookup))
	}
	return appstate.New(appOpts...).Run()
}
