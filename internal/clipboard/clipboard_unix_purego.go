//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce sync.Once
	initErr  error
	backend  *owner
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		o, err := newOwner()
		if err != nil {
			initErr = err
			return
		}
		backend = o
	})
	return initErr
}

func writeImage(data []byte, extra map[string][]byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	offers := map[string][]byte{"image/png": data}
	for mime, b := range extra {
		offers[mime] = b
	}
	return backend.offer(offers)
}

// ReadImage retrieves PNG image data from the clipboard and decodes it.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data, err := backend.read("image/png")
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard does not contain image data")
	}
	return png.Decode(bytes.NewReader(data))
}

// WriteText writes text data to the clipboard.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	b := []byte(text)
	return backend.offer(map[string][]byte{"UTF8_STRING": b, "STRING": b, "text/plain;charset=utf-8": b})
}

// ReadText returns UTF-8 text data from the clipboard.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	data, err := backend.read("UTF8_STRING")
	if err != nil {
		if data, err = backend.read("STRING"); err != nil {
			return "", err
		}
	}
	data = bytes.TrimSuffix(data, []byte{0})
	if len(data) == 0 {
		return "", fmt.Errorf("clipboard does not contain text data")
	}
	return string(data), nil
}

// owner holds the CLIPBOARD selection and answers conversion requests for
// every offered target.
type owner struct {
	conn      *xgb.Conn
	window    xproto.Window
	clipboard xproto.Atom
	targets   xproto.Atom
	property  xproto.Atom

	mu     sync.RWMutex
	atoms  map[string]xproto.Atom
	offers map[xproto.Atom][]byte
}

func newOwner() (*owner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	const eventMask = xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, []uint32{eventMask}).Check(); err != nil {
		conn.Close()
		return nil, err
	}
	o := &owner{conn: conn, window: window, atoms: map[string]xproto.Atom{"STRING": xproto.AtomString}}
	for _, a := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{"CLIPBOARD", &o.clipboard},
		{"TARGETS", &o.targets},
		{"MEDIAEDIT_CLIPBOARD", &o.property},
	} {
		if *a.dst, err = o.atom(a.name); err != nil {
			xproto.DestroyWindow(conn, window)
			conn.Close()
			return nil, err
		}
	}
	go o.loop()
	return o, nil
}

// atom interns name, caching the result.
func (o *owner) atom(name string) (xproto.Atom, error) {
	o.mu.RLock()
	a, ok := o.atoms[name]
	o.mu.RUnlock()
	if ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(o.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	o.mu.Lock()
	o.atoms[name] = reply.Atom
	o.mu.Unlock()
	return reply.Atom, nil
}

func (o *owner) offer(byMIME map[string][]byte) error {
	offers := make(map[xproto.Atom][]byte, len(byMIME))
	for name, data := range byMIME {
		a, err := o.atom(name)
		if err != nil {
			return err
		}
		offers[a] = append([]byte(nil), data...)
	}
	o.mu.Lock()
	o.offers = offers
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.clipboard, xproto.TimeCurrentTime).Check()
}

func (o *owner) loop() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.offers = nil
			o.mu.Unlock()
		}
	}
}

// answer serves one conversion request: the TARGETS list or the payload of
// an offered target.
func (o *owner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	o.mu.RLock()
	payload, ok := o.offers[e.Target]
	var targets []xproto.Atom
	if e.Target == o.targets {
		targets = append(targets, o.targets)
		for a := range o.offers {
			targets = append(targets, a)
		}
	}
	o.mu.RUnlock()

	switch {
	case targets != nil:
		buf := make([]byte, len(targets)*4)
		for i, a := range targets {
			xgb.Put32(buf[i*4:], uint32(a))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(targets)), buf)
	case ok:
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, e.Target, 8, uint32(len(payload)), payload)
	default:
		property = xproto.AtomNone
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(o.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

// read converts the current selection to the named target on a private
// connection and waits for the answer.
func (o *owner) read(target string) ([]byte, error) {
	t, err := o.atom(target)
	if err != nil {
		return nil, err
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.DeletePropertyChecked(conn, window, o.property).Check(); err != nil {
		return nil, err
	}
	if err := xproto.ConvertSelectionChecked(conn, window, o.clipboard, t, o.property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}

	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, fmt.Errorf("clipboard target %s unavailable", target)
		}
		if e.Property != o.property {
			continue
		}
		reply, perr := xproto.GetProperty(conn, false, window, o.property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if perr != nil {
			return nil, perr
		}
		return append([]byte(nil), reply.Value...), nil
	}
}
