package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("masked %d pixels", 7)
	if got != "masked 7 pixels" {
		t.Errorf("captured %q", got)
	}

	// nil installs a no-op, not a panic.
	SetLogger(nil)
	Logf("dropped")
}

func TestDebugfRespectsVerbose(t *testing.T) {
	defer SetLogger(nil)
	defer SetVerbose(false)

	calls := 0
	SetLogger(func(string, ...interface{}) { calls++ })

	SetVerbose(false)
	Debugf("hidden")
	if calls != 0 {
		t.Error("Debugf logged while verbose off")
	}

	SetVerbose(true)
	Debugf("shown")
	if calls != 1 {
		t.Error("Debugf did not log while verbose on")
	}
}
