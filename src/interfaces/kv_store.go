package interfaces

// -----------------------------------------------------------------------------
// IKeyValueStore defines the contract for persisted local state
// (last-acknowledged stream identifiers and similar small values).
// -----------------------------------------------------------------------------

type IKeyValueStore interface {

	// Initialize sets up the backing schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)

	// -----------------------------------------------------------------------------

	// Set stores or overwrites a value.
	Set(key, value string) error

	// -----------------------------------------------------------------------------

	// Delete removes a key; deleting a missing key is not an error.
	Delete(key string) error

	// -----------------------------------------------------------------------------

	// Close the store
	Close() error
}
