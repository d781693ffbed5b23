package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// AssertLogged checks that a log line containing msg was written, and that
// every given key=value pair appears on that same line. It assumes the
// text handler format.
func AssertLogged(t *testing.T, logs string, msg string, kv ...string) {
	t.Helper()

	for _, line := range strings.Split(logs, "\n") {
		if !strings.Contains(line, msg) {
			continue
		}
		ok := true
		for _, pair := range kv {
			if !strings.Contains(line, pair) {
				ok = false
				break
			}
		}
		if ok {
			return
		}
	}
	require.Failf(t, "log line not found", "expected a line with %q and %v in:\n%s", msg, kv, logs)
}
