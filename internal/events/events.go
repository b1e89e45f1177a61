// Package events emits audit records for every state transition. Delivery
// is best-effort; correctness never depends on it.
package events

import (
	"log"
	"time"
)

type Event struct {
	Name      string    `json:"name"`
	Actor     string    `json:"actor,omitempty"`
	GroupID   uint64    `json:"group_id,omitempty"`
	Borrower  string    `json:"borrower,omitempty"`
	RequestID uint64    `json:"request_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Status    string    `json:"status,omitempty"`
	At        time.Time `json:"at"`
}

type Emitter interface {
	Emit(e Event)
}

// LogEmitter writes events to the process log.
type LogEmitter struct{}

func (LogEmitter) Emit(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	log.Printf("event=%s actor=%s group=%d borrower=%s request=%d amount=%d status=%s",
		e.Name, e.Actor, e.GroupID, e.Borrower, e.RequestID, e.Amount, e.Status)
}

// Nop drops everything; handy in tests.
type Nop struct{}

func (Nop) Emit(Event) {}
