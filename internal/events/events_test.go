package events

import (
	"context"
	"errors"
	"testing"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, evt Event) error {
	r.got = append(r.got, evt)
	return r.err
}

func TestFanout_DeliversToAllSinks(t *testing.T) {
	failing := &recorder{err: errors.New("broker down")}
	ok := &recorder{}
	f := NewFanout(failing, nil, ok)

	err := f.Publish(context.Background(), New(UserCreated, 7, nil))
	if err == nil {
		t.Fatalf("expected combined error")
	}
	if len(failing.got) != 1 || len(ok.got) != 1 {
		t.Fatalf("expected both sinks to receive the event")
	}
	if ok.got[0].Type != UserCreated || ok.got[0].UserID != 7 {
		t.Fatalf("unexpected event %+v", ok.got[0])
	}
	if ok.got[0].OccurredAt.IsZero() {
		t.Fatalf("expected timestamp")
	}
}

func TestEmit_SwallowsErrors(t *testing.T) {
	r := &recorder{err: errors.New("nope")}
	Emit(context.Background(), r, nil, New(UserDeleted, 1, nil))
	if len(r.got) != 1 {
		t.Fatalf("expected publish attempt")
	}
	Emit(context.Background(), nil, nil, New(UserDeleted, 1, nil))
}
