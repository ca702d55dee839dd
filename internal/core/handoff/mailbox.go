// Package handoff carries one authorization callback from the HTTP listener to
// the goroutine waiting for it.
package handoff

import (
	"context"
	"errors"
)

// ErrMailboxFull is returned by Send while an earlier delivery is still unread.
var ErrMailboxFull = errors.New("handoff: mailbox full")

// Delivery is what the callback handed over. Err is set when the provider
// redirected with an error instead of a code.
type Delivery struct {
	Code  string
	State string
	Err   error
}

// Mailbox is a single-slot channel. The first delivery wins; later sends fail
// until the slot is received or cleared. A received value is gone, so it can
// never be replayed into a later wait.
type Mailbox struct {
	slot chan Delivery
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{slot: make(chan Delivery, 1)}
}

// Send stores d without blocking.
func (m *Mailbox) Send(d Delivery) error {
	select {
	case m.slot <- d:
		return nil
	default:
		return ErrMailboxFull
	}
}

// Receive blocks until a delivery arrives or ctx is done, and empties the slot.
// A ctx that is already done on entry wins over a waiting delivery and leaves
// it in the slot. If ctx ends while Receive waits and a delivery lands at the
// same moment, either result may be returned.
func (m *Mailbox) Receive(ctx context.Context) (Delivery, error) {
	if err := ctx.Err(); err != nil {
		return Delivery{}, err
	}
	select {
	case d := <-m.slot:
		return d, nil
	case <-ctx.Done():
		return Delivery{}, ctx.Err()
	}
}

// Clear drops a pending delivery, if any, and reports whether one was dropped.
func (m *Mailbox) Clear() bool {
	select {
	case <-m.slot:
		return true
	default:
		return false
	}
}
