package interfaces

// -----------------------------------------------------------------------------
// IStatusExchanger defines the interface for pushing local state to the
// status UI (HTTP server + websocket subscribers).
// -----------------------------------------------------------------------------

type IStatusExchanger interface {
	INotifier

	// -----------------------------------------------------------------------------
	// Broadcast pushes any payload to all connected subscribers.
	Broadcast(payload interface{})

	// -----------------------------------------------------------------------------
	// PushUpdate broadcasts a fresh status snapshot.
	PushUpdate()

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
