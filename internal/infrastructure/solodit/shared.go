package solodit

import "sync"

var (
	sharedMu sync.Mutex
	shared   *Client
)

// Shared lazily constructs a process-wide client on first call and returns it
// on every call after, so CLI invocations and concurrent callers reuse one
// transport and one cache. Options are only consulted on first construction.
func Shared(opts Options) (*Client, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return shared, nil
	}
	client, err := New(opts)
	if err != nil {
		return nil, err
	}
	shared = client
	return shared, nil
}

// ResetShared discards the shared client so tests can reinitialize it.
func ResetShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	shared = nil
}
