package platform

import "time"

// DefaultAppName identifies the sender when Options.AppName is empty.
const DefaultAppName = "mediaedit"

// DefaultTimeout is how long a notification stays up when Options.Timeout
// is zero.
const DefaultTimeout = 5 * time.Second

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// AppName is the sender shown by the notification center.
	AppName string
	// IconPath, when non-empty, points to an image file shown with the
	// notification where supported. Export notifications pass a thumbnail
	// of the rendered result.
	IconPath string
	// Timeout is honoured by the freedesktop backend only.
	Timeout time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return DefaultAppName
	}
	return o.AppName
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
