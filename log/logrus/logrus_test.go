package logrus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/unkn0wn-root/asidecache"
)

func TestLogrusLogger(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.InfoLevel)
	l := New(base)

	l.Debug("dropped", nil)
	l.Warn("expire: cache write failed", asidecache.Fields{"key": "orders:1", "err": errors.New("timeout")})

	if len(hook.Entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(hook.Entries))
	}
	e := hook.LastEntry()
	if e.Level != logrus.WarnLevel || e.Message != "expire: cache write failed" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.Data["component"] != "asidecache" || e.Data["key"] != "orders:1" {
		t.Fatalf("fields not carried: %v", e.Data)
	}
	if err, _ := e.Data[logrus.ErrorKey].(error); err == nil || err.Error() != "timeout" {
		t.Fatalf("error not under logrus.ErrorKey: %v", e.Data)
	}
}
