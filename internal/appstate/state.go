package appstate

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"log"
	"strconv"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/mediaedit/internal/export"
	"github.com/example/mediaedit/internal/geometry"
	"github.com/example/mediaedit/internal/layers"
	"github.com/example/mediaedit/internal/notify"
	"github.com/example/mediaedit/internal/prefs"
	"github.com/example/mediaedit/internal/session"
	"github.com/example/mediaedit/internal/sticker"
)

// frameInterval paces repaints while the preview animates.
const frameInterval = 33 * time.Millisecond

// AppState holds application configuration for the UI.
type AppState struct {
	Session  *session.Session
	Prefs    *prefs.Prefs
	Stickers sticker.Lookup
	Output   string
	Export   export.Options
	Editor   EditorOptions
	Notifier *notify.Notifier

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithSession sets the session being edited.
func WithSession(s *session.Session) Option { return func(a *AppState) { a.Session = s } }

// WithPrefs sets the brush colour store.
func WithPrefs(p *prefs.Prefs) Option { return func(a *AppState) { a.Prefs = p } }

// WithStickers sets where stickers are looked up.
func WithStickers(l sticker.Lookup) Option { return func(a *AppState) { a.Stickers = l } }

// WithOutput sets the file written by the save shortcut.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithExportOptions tunes renders started from the window.
func WithExportOptions(o export.Options) Option { return func(a *AppState) { a.Export = o } }

// WithEditorOptions sets the brush engine options.
func WithEditorOptions(o EditorOptions) Option { return func(a *AppState) { a.Editor = o } }

// WithNotifier sets the desktop notifier used after save and copy.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// NewEditor builds the editor the window drives.
func (a *AppState) NewEditor() (*Editor, error) {
	if a.Session == nil {
		return nil, errors.New("no session")
	}
	e, err := NewEditor(a.Session, a.Prefs, a.Editor)
	if err != nil {
		return nil, err
	}
	e.Stickers = a.Stickers
	e.Export = a.Export
	e.Output = a.Output
	e.Notifier = a.Notifier
	return e, nil
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() error {
	ed, err := a.NewEditor()
	if err != nil {
		return err
	}
	driver.Main(func(s screen.Screen) { a.Main(s, ed) })
	return nil
}

// tickEvent asks for the next animation frame.
type tickEvent struct{}

// frame is one composed canvas handed to the paint goroutine together with
// the chrome it needs.
type frame struct {
	canvas  *image.RGBA
	width   int
	height  int
	tab     layers.Tab
	status  string
	hints   []*label
	message string
}

func (a *AppState) Main(s screen.Screen, ed *Editor) {
	defer a.notifyClose()
	cw, ch := ed.surfaceSize()
	width, height := cw, ch+tabHeight+bottomHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "mediaedit"})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repaint := func() { w.Send(paint.Event{}) }
	ui := newChrome(func(t layers.Tab) {
		ed.SetTab(t, time.Now())
		repaint()
	})

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan frame, 1)
	go func() {
		for f := range paintCh {
			fctx, fcancel := context.WithCancel(ctx)
			paintMu.Lock()
			paintCancel = fcancel
			paintMu.Unlock()
			drawFrame(fctx, s, w, ui, f)
			paintMu.Lock()
			paintCancel = nil
			if fctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			fcancel()
		}
	}()
	defer close(paintCh)

	run := func(name string, fn func() error) {
		ed.now = time.Now()
		if err := fn(); err != nil {
			log.Printf("%s: %v", name, err)
			ed.flash("%s: %v", name, err)
		}
		repaint()
	}
	quit := false
	actions := map[string]func(){
		"undo":   func() { run("undo", ed.Undo) },
		"redo":   func() { run("redo", ed.Redo) },
		"save":   func() { run("save", func() error { _, err := ed.Save(ctx); return err }) },
		"copy":   func() { run("copy", func() error { return ed.Copy(ctx) }) },
		"rotate": func() { ed.QuickRotate(); repaint() },
		"fliph":  func() { ed.Session.State.FlipHorizontal(); repaint() },
		"flipv":  func() { ed.Session.State.FlipVertical(); repaint() },
		"ratio":  func() { run("ratio", ed.CycleRatio) },
		"brush":  func() { ed.CycleBrush(); repaint() },
		"color":  func() { ed.ToggleColorSelector(); repaint() },
		"bigger": func() { ed.StepBrushSize(1); repaint() },
		"smaller": func() {
			ed.StepBrushSize(-1)
			repaint()
		},
		"sticker": func() { run("sticker", func() error { return ed.PlaceNextSticker(ctx) }) },
		"remove":  func() { run("remove", ed.RemoveSelected) },
		"edit": func() {
			if !ed.EditText() {
				ed.now = time.Now()
				ed.flash("select a text layer first")
			}
			repaint()
		},
		"textdone":   func() { ed.CommitText(); repaint() },
		"textcancel": func() { ed.CancelText(); repaint() },
		"quit":       func() { quit = true },
	}
	keyboardAction := map[KeyShortcut]string{
		{Rune: 'z', Modifiers: key.ModControl}: "undo",
		{Rune: 'y', Modifiers: key.ModControl}: "redo",
		{Rune: 's', Modifiers: key.ModControl}: "save",
		{Rune: 'c', Modifiers: key.ModControl}: "copy",
		{Rune: 'r'}:                             "rotate",
		{Rune: 'h'}:                             "fliph",
		{Rune: 'v'}:                             "flipv",
		{Rune: 'a'}:                             "ratio",
		{Rune: 'b'}:                             "brush",
		{Rune: 'c'}:                             "color",
		{Rune: ']'}:                             "bigger",
		{Rune: '['}:                             "smaller",
		{Rune: 's'}:                             "sticker",
		{Rune: 'e'}:                             "edit",
		{Rune: 'q'}:                             "quit",
		{Rune: -1, Code: key.CodeDeleteForward}: "remove",
	}
	hint := func(text, action string) *label {
		return &label{text: text, action: actions[action]}
	}
	hintsFor := func() []*label {
		if ed.Typing() {
			return []*label{hint("Enter:place", "textdone"), hint("Esc:cancel", "textcancel")}
		}
		out := []*label{hint("^Z:undo", "undo"), hint("^Y:redo", "redo"), hint("^S:save", "save"), hint("^C:copy", "copy")}
		switch ed.Tab() {
		case layers.TabAdjust:
			out = append(out, hint("R:rotate", "rotate"), hint("H:flip", "fliph"), hint("V:flip", "flipv"))
		case layers.TabCrop:
			out = append(out, hint("A:ratio", "ratio"), hint("R:rotate", "rotate"))
		case layers.TabBrush:
			out = append(out, hint("B:brush", "brush"), hint("C:colour", "color"), hint("[ ]:size", "smaller"))
		case layers.TabText:
			out = append(out, hint("E:edit", "edit"), hint("Del:remove", "remove"))
		case layers.TabStickers:
			out = append(out, hint("S:sticker", "sticker"), hint("Del:remove", "remove"))
		}
		return append(out, hint("Q:quit", "quit"))
	}

	ticking := false
	for !quit {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				quit = true
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			repaint()
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			now := time.Now()
			k, _, sz := ed.Brush()
			f := frame{
				canvas:  ed.Compose(ctx, now),
				width:   width,
				height:  height,
				tab:     ed.Tab(),
				status:  k.String() + " " + strconv.FormatFloat(sz, 'f', -1, 64) + "px "  + ed.Session.State.Values().FixedRatio,
				hints:   hintsFor(),
				message: ed.Message(now),
			}
			select {
			case paintCh <- f:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- f
			}
			if (ed.Animating(now) || f.message != "") && !ticking {
				ticking = true
				time.AfterFunc(frameInterval, func() { w.Send(tickEvent{}) })
			}
		case tickEvent:
			ticking = false
			repaint()
		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))
			press := e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress
			if p.Y < tabHeight {
				ui.hoverTab = hit(ui.tabButtons(), p, press)
				repaint()
				continue
			}
			if p.Y >= height-bottomHeight {
				ui.hoverShort = hit(ui.shortcuts, p, press)
				repaint()
				continue
			}
			pr := ed.Session.PixelRatio
			at := geometry.Pt(float64(e.X)/pr, (float64(e.Y)-tabHeight)/pr)
			now := time.Now()
			switch {
			case press:
				ed.Press(at, now)
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
				ed.Release(now)
			case e.Direction == mouse.DirNone:
				ed.Move(at, now)
			}
			repaint()
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if ed.Typing() {
				switch e.Code {
				case key.CodeReturnEnter:
					actions["textdone"]()
				case key.CodeEscape:
					actions["textcancel"]()
				case key.CodeDeleteBackspace:
					ed.Backspace()
					repaint()
				default:
					if e.Rune > 0 && e.Modifiers&key.ModControl == 0 {
						ed.TypeRune(e.Rune)
						repaint()
					}
				}
				continue
			}
			if e.Rune >= '1' && e.Rune <= '5' && e.Modifiers == 0 {
				ed.SetTab(layers.Tab(e.Rune-'1'), time.Now())
				repaint()
				continue
			}
			ks := KeyShortcut{Rune: unicode.ToLower(e.Rune), Code: e.Code, Modifiers: e.Modifiers}
			if e.Rune > 0 {
				ks.Code = 0
			}
			if name, ok := keyboardAction[ks]; ok {
				actions[name]()
			}
		}
	}
	paintMu.Lock()
	if paintCancel != nil {
		paintCancel()
	}
	paintMu.Unlock()
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, ui *chrome, f frame) {
	b, err := s.NewBuffer(image.Point{f.width, f.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	drawBackdrop(dst)
	canvas := image.Rect(0, tabHeight, f.width, f.height-bottomHeight)
	draw.Draw(dst, canvas, f.canvas, image.Point{}, draw.Src)
	if ctx.Err() != nil {
		return
	}

	ui.drawTabs(dst, f.tab, f.status)
	ui.drawShortcuts(dst, f.hints)
	drawMessage(dst, canvas, f.message)
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
