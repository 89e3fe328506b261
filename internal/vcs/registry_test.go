package vcs

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/steveyegge/vcspull/internal/manifest"
)

type mockDriver struct{ kind manifest.VCSKind }

func (m *mockDriver) Clone(ctx context.Context, url, targetPath, rev string) error { return nil }
func (m *mockDriver) Update(ctx context.Context, path, rev string, setRemotes bool) error {
	return nil
}
func (m *mockDriver) CurrentRevision(ctx context.Context, path string) (string, error) {
	return "mock-rev", nil
}

var testKindCounter int64

func uniqueTestKind(prefix string) manifest.VCSKind {
	n := atomic.AddInt64(&testKindCounter, 1)
	return manifest.VCSKind(fmt.Sprintf("%s-%d", prefix, n))
}

func TestRegisterAndGet(t *testing.T) {
	kind := uniqueTestKind("register")
	Register(kind, func() Driver { return &mockDriver{kind: kind} })

	d, err := Get(kind)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	rev, err := d.CurrentRevision(context.Background(), "/tmp")
	if err != nil || rev != "mock-rev" {
		t.Fatalf("CurrentRevision = %q, %v", rev, err)
	}
}

func TestGetUnregisteredKindErrors(t *testing.T) {
	if _, err := Get(uniqueTestKind("unregistered")); err == nil {
		t.Fatal("expected an error for an unregistered kind")
	}
}

func TestRegisterPanicsOnNilConstructor(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected a panic when registering a nil constructor")
		}
	}()
	Register(uniqueTestKind("nil-ctor"), nil)
}

func TestRegisterPanicsOnDuplicateKind(t *testing.T) {
	kind := uniqueTestKind("dup")
	Register(kind, func() Driver { return &mockDriver{kind: kind} })

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected a panic on double registration")
		}
	}()
	Register(kind, func() Driver { return &mockDriver{kind: kind} })
}

func TestRegisteredKindsIncludesRegistered(t *testing.T) {
	kind := uniqueTestKind("listed")
	before := len(RegisteredKinds())
	Register(kind, func() Driver { return &mockDriver{kind: kind} })
	after := RegisteredKinds()
	if len(after) <= before {
		t.Fatalf("expected RegisteredKinds to grow, got %d -> %d", before, len(after))
	}
}

func TestConcurrentRegistration(t *testing.T) {
	base := uniqueTestKind("concurrent")
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		go func() {
			defer func() { done <- struct{}{} }()
			kind := manifest.VCSKind(fmt.Sprintf("%s-%d", base, i))
			Register(kind, func() Driver { return &mockDriver{kind: kind} })
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
