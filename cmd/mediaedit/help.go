package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of)
	if err != nil {
		log.Printf("error rendering help template: %v", err)
		return "", err
	}
	return buf.String(), nil
}

// usageFunc prints the help template of h, for use as a FlagSet.Usage.
func usageFunc(h HelpData) func() {
	return func() {
		fmt.Fprintln(os.Stderr, (&UsageError{of: h}).Error())
	}
}

func (r *root) Template() string { return "root.txt" }
func (c *newCmd) Template() string { return "new.txt" }
func (d *drawCmd) Template() string { return "draw.txt" }
func (l *layerCmd) Template() string { return "layer.txt" }
func (t *transformCmd) Template() string { return "transform.txt" }
func (c *cropCmd) Template() string { return "crop.txt" }
func (h *historyCmd) Template() string { return "history.txt" }
func (c *renderCmd) Template() string { return "render.txt" }
func (s *stickersCmd) Template() string { return "stickers.txt" }
func (p *prefsCmd) Template() string { return "prefs.txt" }
func (e *editCmd) Template() string { return "edit.txt" }
func (c *interactiveCLI) Template() string { return "interactive.txt" }
func (c *brushesCmd) Template() string { return "brushes.txt" }
func (c *ratiosCmd) Template() string { return "ratios.txt" }
func (c *configCmd) Template() string { return "config.txt" }
func (v *versionCmd) Template() string { return "version.txt" }
