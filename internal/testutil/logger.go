package testutil

import (
	"log"
	"testing"
)

// Logger routes service log output into the test log.
func Logger(t *testing.T) *log.Logger {
	t.Helper()
	return log.New(testWriter{t: t}, "[test] ", log.LstdFlags)
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
