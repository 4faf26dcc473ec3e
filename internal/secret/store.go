package secret

// SecretStore provides a pluggable interface for storing sink passwords.
// The desktop app uses the macOS Keychain; headless runs read the
// environment. ChainStore combines them.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// ChainStore reads from each store in order and returns the first hit.
// A failing store does not hide a later hit; its error is reported only
// when no store has the key. Writes and deletes go to the last store.
type ChainStore []SecretStore

func (c ChainStore) Get(key string) ([]byte, error) {
	var firstErr error
	for _, s := range c {
		v, err := s.Get(key)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(v) > 0 {
			return v, nil
		}
	}
	return nil, firstErr
}

func (c ChainStore) Set(key string, value []byte) error {
	if len(c) == 0 {
		return nil
	}
	return c[len(c)-1].Set(key, value)
}

func (c ChainStore) Delete(key string) error {
	if len(c) == 0 {
		return nil
	}
	return c[len(c)-1].Delete(key)
}
