package bptree

import (
	"os"
	"testing"

	"tlog.app/go/tlog"
)

type testingWriter struct {
	t testing.TB
}

func initLogger(t testing.TB) {
	tl = tlog.New(tlog.NewConsoleWriter(testingWriter{t: t}, tlog.LstdFlags))

	if v := os.Getenv("TLOGV"); v != "" {
		tl.SetVerbosity(v)
	}

	t.Cleanup(func() { tl = nil })
}

func (w testingWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)

	return len(p), nil
}
