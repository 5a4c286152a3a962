package broadcast

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that every reader/writer goroutine Hub.Register spawns
// has exited by the time a test's websocket connections are closed -
// nothing here should outlive the test that started it.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
