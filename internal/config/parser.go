package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/pixeledit/internal/filter"
	"github.com/example/pixeledit/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var curTheme *theme.Theme
	var curFilter string

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			curTheme, curFilter = nil, ""
			switch {
			case strings.HasPrefix(section, "theme."):
				name := strings.TrimPrefix(section, "theme.")
				curTheme = theme.Default()
				curTheme.Name = name
				cfg.Themes[name] = curTheme
			case strings.HasPrefix(section, "filters."):
				curFilter = strings.ToLower(strings.TrimPrefix(section, "filters."))
				cfg.Filters[curFilter] = filter.Neutral()
			}
			continue
		}

		key, value, ok := splitPair(line)
		if !ok {
			continue
		}

		var err error
		switch {
		case curTheme != nil:
			err = theme.SetField(curTheme, key, value)
		case curFilter != "":
			s := cfg.Filters[curFilter]
			err = setFilterField(&s, key, value)
			cfg.Filters[curFilter] = s
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case section == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			where := "root section"
			if section != "" {
				where = "section [" + section + "]"
			}
			return nil, fmt.Errorf("line %d: error in %s: %w", lineNo, where, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for name, s := range cfg.Filters {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("filter preset %s: %w", name, err)
		}
	}
	return cfg, nil
}

// splitPair accepts "key = value" and "key: value". Surrounding quotes are
// removed from the value.
func splitPair(line string) (string, string, bool) {
	sep := "="
	if !strings.Contains(line, "=") {
		sep = ":"
	}
	key, value, ok := strings.Cut(line, sep)
	if !ok {
		return "", "", false
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
		value = value[1 : len(value)-1]
	}
	return strings.TrimSpace(key), value, true
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "format":
		cfg.Format = strings.ToLower(value)
	case "resample":
		cfg.Resample = strings.ToLower(value)
	case "jpeg_quality":
		q, err := strconv.Atoi(value)
		if err != nil || q < 1 || q > 100 {
			return fmt.Errorf("jpeg_quality must be 1-100, got %q", value)
		}
		cfg.JPEGQuality = q
	case "history_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("history_limit must be a positive integer, got %q", value)
		}
		cfg.HistoryLimit = n
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "crop":
		n.Crop = b
	case "export", "save":
		n.Export = b
	case "errors", "error":
		n.Errors = b
	}
	return nil
}

type filterField struct {
	key string
	v   *float64
}

func filterFields(s *filter.Settings) []filterField {
	return []filterField{
		{"brightness", &s.Brightness},
		{"contrast", &s.Contrast},
		{"saturation", &s.Saturation},
		{"hue", &s.Hue},
		{"blur", &s.Blur},
		{"sepia", &s.Sepia},
		{"grayscale", &s.Grayscale},
	}
}

func setFilterField(s *filter.Settings, key, value string) error {
	k := strings.ToLower(key)
	if k == "greyscale" {
		k = "grayscale"
	}
	for _, f := range filterFields(s) {
		if f.key != k {
			continue
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
		*f.v = v
		return nil
	}
	return nil
}
