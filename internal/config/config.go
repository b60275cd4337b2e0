package config

import (
	"fmt"
	"image/color"
	"reflect"
	"sort"
	"strings"

	"github.com/example/mediaedit/internal/colorutil"
	"github.com/example/mediaedit/internal/geometry"
)

// Notify holds notification settings.
type Notify struct {
	Export bool `rc:"export"`
	Copy   bool `rc:"copy"`
}

// Export holds output settings.
type Export struct {
	SideMin    int     `rc:"side_min"`
	SideMax    int     `rc:"side_max"`
	FrameRate  float64 `rc:"frame_rate"`
	MaxFrames  int     `rc:"max_frames"`
	PixelRatio float64 `rc:"pixel_ratio"`
}

// Crop holds the crop area margins.
type Crop struct {
	MarginLeft   float64 `rc:"margin_left"`
	MarginTop    float64 `rc:"margin_top"`
	MarginRight  float64 `rc:"margin_right"`
	MarginBottom float64 `rc:"margin_bottom"`
}

// Margins converts the section to geometry margins.
func (c Crop) Margins() geometry.Margins {
	return geometry.Margins{Left: c.MarginLeft, Top: c.MarginTop, Right: c.MarginRight, Bottom: c.MarginBottom}
}

// Brush holds drawing defaults.
type Brush struct {
	ThrottleMS int     `rc:"throttle_ms"`
	BlurRadius float64 `rc:"blur_radius"`
	Default    string  `rc:"default"`
	Size       float64 `rc:"size"`
}

// Config holds the application configuration.
type Config struct {
	SaveDir    string
	PrefsFile  string
	StickerDir string
	Notify     Notify
	Export     Export
	Crop       Crop
	Brush      Brush
	// Colors overrides the built-in default colour of a brush, keyed by
	// brush name.
	Colors map[string]color.NRGBA
}

// New creates a new Config with defaults.
func New() *Config {
	m := geometry.DefaultMargins
	return &Config{
		Export: Export{
			SideMin:    100,
			SideMax:    2560,
			FrameRate:  30,
			PixelRatio: 1,
		},
		Crop: Crop{MarginLeft: m.Left, MarginTop: m.Top, MarginRight: m.Right, MarginBottom: m.Bottom},
		Brush: Brush{
			ThrottleMS: 25,
			BlurRadius: 10,
			Default:    "pen",
			Size:       15,
		},
		Colors: make(map[string]color.NRGBA),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.PrefsFile != "" {
		fmt.Fprintf(&sb, "prefs_file = %s\n", c.PrefsFile)
	}
	if c.StickerDir != "" {
		fmt.Fprintf(&sb, "sticker_dir = %s\n", c.StickerDir)
	}
	sb.WriteString("\n")

	writeSection(&sb, "notify", &c.Notify)
	writeSection(&sb, "export", &c.Export)
	writeSection(&sb, "crop", &c.Crop)
	writeSection(&sb, "brush", &c.Brush)

	if len(c.Colors) > 0 {
		// Sort keys for deterministic output
		var names []string
		for name := range c.Colors {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString("[colors]\n")
		for _, name := range names {
			fmt.Fprintf(&sb, "%s = %s\n", name, colorutil.Hex(c.Colors[name]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeSection prints every rc-tagged field of the struct s points to.
func writeSection(sb *strings.Builder, name string, s interface{}) {
	fmt.Fprintf(sb, "[%s]\n", name)
	val := reflect.ValueOf(s).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		key := typ.Field(i).Tag.Get("rc")
		if key == "" {
			continue
		}
		fmt.Fprintf(sb, "%s = %v\n", key, val.Field(i).Interface())
	}
	sb.WriteString("\n")
}
