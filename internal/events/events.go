package events

import (
	"context"
	"errors"
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
)

type Type string

const (
	UserCreated            Type = "user.created"
	UserUpdated            Type = "user.updated"
	UserDeleted            Type = "user.deleted"
	UserStatusChanged      Type = "user.status_changed"
	UserPasswordChanged    Type = "user.password_changed"
	KnowledgeVulnerability Type = "knowledge.vulnerability_alert"
)

type Event struct {
	Type       Type      `json:"type"`
	UserID     int64     `json:"userId,omitempty"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func New(t Type, userID int64, data any) Event {
	return Event{Type: t, UserID: userID, Data: data, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Fanout delivers every event to all sinks. A failing sink does not stop the
// others; the combined error is returned.
type Fanout struct {
	sinks []Publisher
}

func NewFanout(sinks ...Publisher) *Fanout {
	out := make([]Publisher, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Fanout{sinks: out}
}

func (f *Fanout) Publish(ctx context.Context, evt Event) error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes evt and logs a failure instead of returning it. Domain writes
// have already committed when events go out.
func Emit(ctx context.Context, p Publisher, log *logger.Logger, evt Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, evt); err != nil {
		log.Warn("event publish failed", "type", string(evt.Type), "user_id", evt.UserID, "error", err)
	}
}
