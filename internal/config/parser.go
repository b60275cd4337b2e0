package config

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/example/mediaedit/internal/colorutil"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		// Handle Sections
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			continue
		}

		// Parse Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		// Remove quotes if present
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch currentSection {
		case "":
			err = setRootField(cfg, key, value)
		case "notify":
			err = setField(&cfg.Notify, key, value)
		case "export":
			err = setField(&cfg.Export, key, value)
		case "crop":
			err = setField(&cfg.Crop, key, value)
		case "brush":
			err = setField(&cfg.Brush, key, value)
		case "colors":
			err = setColor(cfg, key, value)
		}
		if err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "save_dir":
		cfg.SaveDir = value
	case "prefs_file":
		cfg.PrefsFile = value
	case "sticker_dir":
		cfg.StickerDir = value
	}
	return nil
}

func setColor(cfg *Config, key, value string) error {
	c, err := colorutil.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid color for key %s: %w", key, err)
	}
	cfg.Colors[strings.ToLower(key)] = c
	return nil
}

// setField assigns value to the field of the struct s points to whose rc
// tag matches key. Unknown keys are ignored.
func setField(s interface{}, key, value string) error {
	val := reflect.ValueOf(s).Elem()
	typ := val.Type()

	var field reflect.Value
	for i := 0; i < typ.NumField(); i++ {
		if strings.EqualFold(typ.Field(i).Tag.Get("rc"), key) {
			field = val.Field(i)
			break
		}
	}
	if !field.IsValid() {
		return nil
	}

	switch field.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for key %s: %w", key, err)
		}
		field.SetBool(b)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
		field.SetInt(int64(n))
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
		field.SetFloat(f)
	case reflect.String:
		field.SetString(value)
	}
	return nil
}
