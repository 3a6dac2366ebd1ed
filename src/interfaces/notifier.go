package interfaces

// -----------------------------------------------------------------------------
// INotifier surfaces transient user-visible notifications (toasts).
// -----------------------------------------------------------------------------

type INotifier interface {
	// Notify emits a short-lived message; level is "info", "warning" or "error"
	Notify(level, message string)
}
