package platform

// AppName identifies the sender to the notification service.
const AppName = "pixeledit"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file shown with the
	// notification where the platform supports it.
	IconPath string
	// Urgent asks for a notification that stays until dismissed.
	Urgent bool
}
