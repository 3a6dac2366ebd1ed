package interfaces

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for REST calls against the remote
// service (snapshot seeds and settings persistence).
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the given path with query parameters.
	// Returns the response body as bytes or an error.
	Get(path string, params map[string]string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// Post sends a JSON body to the given path. No retries: callers decide
	// whether a failed write may be repeated.
	Post(path string, body []byte) ([]byte, error)
}
