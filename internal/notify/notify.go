// Package notify reports editor outcomes as desktop notifications.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/pixeledit/internal/logging"
	"github.com/example/pixeledit/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventCrop fires when a crop is committed.
	EventCrop Event = "crop"
	// EventExport fires when an image is written to a file or the clipboard.
	EventExport Event = "export"
	// EventError fires when an operation fails.
	EventError Event = "errors"
)

// Events lists every event in configuration order.
var Events = []Event{EventCrop, EventExport, EventError}

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "pixeledit",
		Events: map[Event]EventPreference{
			EventCrop:   {Template: "Cropped to %s"},
			EventExport: {Template: "Exported %s"},
			EventError:  {Template: "%s"},
		},
	}
}

// LoadPreferences applies PIXELEDIT_NOTIFY_* environment overrides to the
// defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("PIXELEDIT_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			p := prefs.Events[event]
			p.Template = v
			prefs.Events[event] = p
		}
	}
	apply("PIXELEDIT_NOTIFY_CROP_TEXT", EventCrop)
	apply("PIXELEDIT_NOTIFY_EXPORT_TEXT", EventExport)
	apply("PIXELEDIT_NOTIFY_ERROR_TEXT", EventError)
	return prefs
}

// send is swapped out in tests.
var send = platform.Notify

// Notifier sends desktop notifications for the enabled events. A nil
// Notifier is silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Enabled reports whether event produces notifications.
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.enabled[event]
}

// Cropped reports a committed crop.
func (n *Notifier) Cropped(w, h int) {
	n.dispatch(EventCrop, fmt.Sprintf("%d×%d", w, h), platform.Options{})
}

// Exported reports a written image. File destinations are shown with an
// absolute path and used as the notification icon.
func (n *Notifier) Exported(dest string) {
	if !n.Enabled(EventExport) {
		return
	}
	detail := strings.TrimSpace(dest)
	if detail == "" {
		detail = "image"
	}
	opts := platform.Options{}
	if abs, err := filepath.Abs(detail); err == nil {
		if _, statErr := os.Stat(abs); statErr == nil {
			detail = abs
			opts.IconPath = abs
		}
	}
	n.dispatch(EventExport, detail, opts)
}

// Failed reports an operation failure.
func (n *Notifier) Failed(op string, err error) {
	if err == nil {
		return
	}
	n.dispatch(EventError, fmt.Sprintf("%s: %v", op, err), platform.Options{Urgent: true})
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.Enabled(event) {
		return
	}
	template := strings.TrimSpace(n.prefs.Events[event].Template)
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := send(n.prefs.Title, body, opts); err != nil {
		logging.Logger().Warn("notification failed", "event", event, "err", err)
	}
}
