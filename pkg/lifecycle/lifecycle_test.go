package lifecycle

import (
	"testing"
)

// fakeConn records calls in order and defers barriered functions until
// the test drains them, mimicking the engine's ops queue.
type fakeConn struct {
	calls    []string
	deferred []func()
}

func (c *fakeConn) Hibernate() { c.calls = append(c.calls, "hibernate") }
func (c *fakeConn) Resume()    { c.calls = append(c.calls, "resume") }

func (c *fakeConn) Barrier(fn func()) {
	c.calls = append(c.calls, "barrier")
	c.deferred = append(c.deferred, fn)
}

func (c *fakeConn) drain() {
	for _, fn := range c.deferred {
		fn()
	}
	c.deferred = nil
}

type fakeGrant struct {
	released int
}

func (g *fakeGrant) Release() { g.released++ }

type fakeGrantProvider struct {
	grants []*fakeGrant
}

func (p *fakeGrantProvider) Begin() Grant {
	g := &fakeGrant{}
	p.grants = append(p.grants, g)
	return g
}

func TestEnteredBackground(t *testing.T) {
	conn := &fakeConn{}
	grants := &fakeGrantProvider{}
	c := NewController(conn, grants, nil)

	c.EnteredBackground()

	if len(grants.grants) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(grants.grants))
	}
	want := []string{"hibernate", "barrier"}
	if len(conn.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, conn.calls)
	}
	for i, call := range conn.calls {
		if call != want[i] {
			t.Fatalf("expected calls %v, got %v", want, conn.calls)
		}
	}

	// The grant is held until the hibernation teardown has run.
	if grants.grants[0].released != 0 {
		t.Fatal("grant released before teardown completed")
	}
	conn.drain()
	if grants.grants[0].released != 1 {
		t.Errorf("expected grant released once, got %d", grants.grants[0].released)
	}
}

func TestEnteredForeground(t *testing.T) {
	conn := &fakeConn{}
	c := NewController(conn, nil, nil)

	c.EnteredForeground()

	if len(conn.calls) != 1 || conn.calls[0] != "resume" {
		t.Errorf("expected a single resume call, got %v", conn.calls)
	}
}

func TestBackgroundForegroundCycle(t *testing.T) {
	conn := &fakeConn{}
	grants := &fakeGrantProvider{}
	c := NewController(conn, grants, nil)

	c.EnteredBackground()
	conn.drain()
	c.EnteredForeground()
	c.EnteredBackground()
	conn.drain()

	if len(grants.grants) != 2 {
		t.Fatalf("expected a fresh grant per background entry, got %d", len(grants.grants))
	}
	for i, g := range grants.grants {
		if g.released != 1 {
			t.Errorf("grant %d: expected released once, got %d", i, g.released)
		}
	}
}

func TestNilGrantProvider(t *testing.T) {
	conn := &fakeConn{}
	c := NewController(conn, nil, nil)

	// Must not panic without a platform grant provider.
	c.EnteredBackground()
	conn.drain()
	c.EnteredForeground()
}
