package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

// parseFlags parses args into fs. Help requests and bad flags come back as
// errors carrying the usage text of h.
func parseFlags(fs *flag.FlagSet, args []string, h HelpData) error {
	fs.SetOutput(io.Discard)
	fs.Usage = usageFunc(h)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: h}
		}
		return fmt.Errorf("%w\n%v", err, &UsageError{of: h})
	}
	return nil
}

// exportFlags are shared by every command that writes an image.
type exportFlags struct {
	format  string
	quality int
	shadow  bool
}

func (e *exportFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&e.format, "format", "", "output format: png, jpeg, bmp or tiff (default from the file extension)")
	fs.IntVar(&e.quality, "quality", 0, "JPEG quality 1-100 (default from config, else 92)")
	fs.BoolVar(&e.shadow, "shadow", false, "add a drop shadow around the exported image")
}
