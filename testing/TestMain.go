// Package testing pins the environment of packages that import it for side
// effects: test mode on, in-process sequences and no outbound notifications.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

var testDefaults = map[string]string{
	"SEQUENCE_BACKEND": "memory",
	"NOTIFY_ENABLED":   "false",
	"GOTENBERG_URL":    "http://127.0.0.1:0",
}

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("SHOPLEDGER_TEST_MODE", "1")
		for key, value := range testDefaults {
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
