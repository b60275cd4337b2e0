package main

import (
	"flag"
	"fmt"
)

// historyCmd steps a session backwards or forwards through its edits.
type historyCmd struct {
	*root
	fs    *flag.FlagSet
	redo  bool
	steps int
	sessionFlag
}

func (h *historyCmd) FlagSet() *flag.FlagSet {
	return h.fs
}

func parseHistoryCmd(args []string, r *root, redo bool) (*historyCmd, error) {
	name := "undo"
	if redo {
		name = "redo"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	h := &historyCmd{root: r, fs: fs, redo: redo}
	fs.Usage = usageFunc(h)
	fs.IntVar(&h.steps, "n", 1, "number of edits to step over")
	h.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 || h.steps < 1 {
		return nil, &UsageError{of: h}
	}
	return h, nil
}

func (h *historyCmd) Run() error {
	s, err := h.open()
	if err != nil {
		return err
	}
	step := s.Undo
	if h.redo {
		step = s.Redo
	}
	done := 0
	for ; done < h.steps; done++ {
		if err := step(); err != nil {
			if done == 0 {
				return err
			}
			break
		}
	}
	if err := h.save(s); err != nil {
		return err
	}
	fmt.Fprintf(h.stdout, "%s %d edit(s): %d lines, %d layers\n", h.fs.Name(), done, len(s.Lines()), len(s.Layers.Layers()))
	return nil
}
