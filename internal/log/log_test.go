package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	for _, opts := range []Options{
		{Level: "debug", Format: "json"},
		{Level: "warn", Format: "console"},
		{Level: "bogus", Format: "bogus"},
	} {
		l := NewLogger(opts)
		assert.NotPanics(t, func() {
			l.WithName("test").WithValues("k", "v").Debug("debug")
			l.Error(errors.New("boom"), "failed", "attempt", 1)
			l.Error(nil, "no error attached")
		})
	}
}

func TestInitReplacesGlobal(t *testing.T) {
	before := Std()
	t.Cleanup(func() {
		mu.Lock()
		std = before
		mu.Unlock()
	})

	Init(Options{Level: "error", Format: "json"})
	assert.NotSame(t, before, Std())
	assert.NotPanics(t, func() { WithName("seed").Info("ignored below error level") })
}
