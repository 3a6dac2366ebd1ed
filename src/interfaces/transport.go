package interfaces

import "net/http"

// -----------------------------------------------------------------------------
// ITransport abstracts one live socket so channels can be tested without a
// network. Exactly one transport exists per channel at any time.
// -----------------------------------------------------------------------------

type ITransport interface {
	// ReadMessage blocks until the next frame or a transport error
	ReadMessage() ([]byte, error)

	// WriteMessage sends one frame; returns when the write call completes
	WriteMessage(data []byte) error

	// Close tears the socket down; safe to call more than once
	Close() error
}

// -----------------------------------------------------------------------------

// MDialOptions carries per-dial parameters.
type MDialOptions struct {
	// Header is attached to the handshake (credential lives here)
	Header http.Header

	// OnControl fires for protocol-level pings/pongs so liveness
	// tracking sees traffic that never surfaces as a frame
	OnControl func()
}

// -----------------------------------------------------------------------------

// IDialer constructs transports. One dial per connect attempt.
type IDialer interface {
	Dial(endpoint string, opts MDialOptions) (ITransport, error)
}
