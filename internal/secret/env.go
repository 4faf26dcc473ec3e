package secret

import (
	"fmt"
	"os"
	"strings"
)

// EnvPrefix is prepended to the normalised key to form the variable name.
// "sink:warehouse" is read from SANITYCSV_SECRET_SINK_WAREHOUSE.
const EnvPrefix = "SANITYCSV_SECRET_"

// EnvStore reads secrets from environment variables. It is read-only.
type EnvStore struct{}

// EnvName returns the variable that holds key.
func EnvName(key string) string {
	var b strings.Builder
	b.WriteString(EnvPrefix)
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(EnvName(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (EnvStore) Set(key string, _ []byte) error {
	return fmt.Errorf("env secret store is read-only: export %s instead", EnvName(key))
}

func (EnvStore) Delete(string) error { return nil }

// Memory is an in-process store, used by tests and one-shot CLI runs.
type Memory map[string][]byte

func (m Memory) Get(key string) ([]byte, error) { return m[key], nil }

func (m Memory) Set(key string, value []byte) error {
	m[key] = append([]byte(nil), value...)
	return nil
}

func (m Memory) Delete(key string) error {
	delete(m, key)
	return nil
}
