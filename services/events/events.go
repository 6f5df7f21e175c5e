// Package events is an in-process publish/subscribe bus for domain facts such
// as a learner completing a course.
package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Type identifies a kind of event
type Type string

const (
	TypeCourseCompleted Type = "course.completed"
)

// Event is a fact that already happened
type Event interface {
	EventType() Type
	OccurredAt() time.Time
}

// CourseCompleted is published once, on the first transition of an enrollment into completed
type CourseCompleted struct {
	EnrollmentID uint
	UserID       uint
	CourseID     uint
	CompletedAt  time.Time
}

func (CourseCompleted) EventType() Type         { return TypeCourseCompleted }
func (e CourseCompleted) OccurredAt() time.Time { return e.CompletedAt }

// Handler reacts to an event. Returned errors are logged by the bus.
type Handler func(ctx context.Context, e Event) error

type subscription struct {
	name    string
	handler Handler
}

// Bus dispatches events to subscribers synchronously, in subscription order
type Bus struct {
	mu   sync.RWMutex
	subs map[Type][]subscription
	log  *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{subs: make(map[Type][]subscription), log: log}
}

// Subscribe registers h for events of type t. name only appears in logs.
func (b *Bus) Subscribe(t Type, name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[t] = append(b.subs[t], subscription{name: name, handler: h})
}

// Publish runs every subscriber of e before returning. A failing or panicking
// subscriber does not stop the others and is never reported to the publisher.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[e.EventType()]...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.dispatch(ctx, s, e)
	}
}

func (b *Bus) dispatch(ctx context.Context, s subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event subscriber panicked",
				zap.String("event", string(e.EventType())),
				zap.String("subscriber", s.name),
				zap.Any("panic", r))
		}
	}()
	if err := s.handler(ctx, e); err != nil {
		b.log.Warn("event subscriber failed",
			zap.String("event", string(e.EventType())),
			zap.String("subscriber", s.name),
			zap.Error(err))
	}
}
