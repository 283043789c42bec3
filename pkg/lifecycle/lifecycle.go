// Package lifecycle translates host lifecycle signals into hibernate
// and resume calls on the engine. It is pure orchestration: flush
// before the OS takes the network away, reconnect when the host comes
// back, and hold the platform's short-lived background execution grant
// only for as long as teardown actually needs it.
package lifecycle

import (
	"github.com/streamforge/sse-client-go/pkg/logging"
)

// Connection is the slice of the engine the controller drives.
type Connection interface {
	Hibernate()
	Resume()

	// Barrier runs fn after every previously scheduled operation has
	// completed.
	Barrier(fn func())
}

// Grant is an OS-provided short-lived background execution allowance.
// Release must be idempotent.
type Grant interface {
	Release()
}

// GrantProvider hands out background execution grants. Platforms
// without the concept return a no-op grant.
type GrantProvider interface {
	Begin() Grant
}

type nopGrant struct{}

func (nopGrant) Release() {}

type nopGrantProvider struct{}

func (nopGrantProvider) Begin() Grant { return nopGrant{} }

// Controller adapts enteredBackground/enteredForeground signals onto a
// Connection.
type Controller struct {
	conn   Connection
	grants GrantProvider
	logger logging.Logger
}

// NewController creates a lifecycle controller. grants and logger may
// be nil.
func NewController(conn Connection, grants GrantProvider, logger logging.Logger) *Controller {
	if grants == nil {
		grants = nopGrantProvider{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		conn:   conn,
		grants: grants,
		logger: logger.WithFields(logging.String("component", "lifecycle")),
	}
}

// EnteredBackground hibernates the connection. The engine flushes the
// buffer eagerly before closing the transport; the background grant is
// released once that teardown has completed.
func (c *Controller) EnteredBackground() {
	c.logger.Info("entering background")
	grant := c.grants.Begin()
	c.conn.Hibernate()
	c.conn.Barrier(grant.Release)
}

// EnteredForeground resumes the connection. If hibernation interrupted
// a live session, the engine reconnects and resumes from the last
// processed event id.
func (c *Controller) EnteredForeground() {
	c.logger.Info("entering foreground")
	c.conn.Resume()
}
