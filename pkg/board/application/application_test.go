package application

import (
	"errors"
	"testing"
	"time"

	"github.com/openhire/openhire/pkg/errx"
)

func app(status Status) *Application {
	return &Application{Status: status}
}

func assertCode(t *testing.T, err error, want *errx.ErrorCode) {
	t.Helper()
	var xerr *errx.Error
	if !errors.As(err, &xerr) {
		t.Fatalf("expected *errx.Error, got %v", err)
	}
	if xerr.Code != want.Code {
		t.Fatalf("code = %s, want %s", xerr.Code, want.Code)
	}
}

func TestTransitionAllowed(t *testing.T) {
	cases := []struct {
		from  Status
		to    Status
		actor Actor
	}{
		{StatusPending, StatusReviewed, ActorReviewer},
		{StatusPending, StatusAccepted, ActorReviewer},
		{StatusPending, StatusRejected, ActorReviewer},
		{StatusPending, StatusWithdrawn, ActorCandidate},
		{StatusReviewed, StatusAccepted, ActorReviewer},
		{StatusReviewed, StatusRejected, ActorReviewer},
		{StatusReviewed, StatusWithdrawn, ActorCandidate},
	}
	for _, tc := range cases {
		a := app(tc.from)
		if err := a.Transition(tc.to, tc.actor, time.Now()); err != nil {
			t.Errorf("%s -> %s (actor %d): %v", tc.from, tc.to, tc.actor, err)
		}
		if a.Status != tc.to {
			t.Errorf("%s -> %s: status = %s", tc.from, tc.to, a.Status)
		}
	}
}

func TestTransitionOutOfFinalStatus(t *testing.T) {
	for _, final := range []Status{StatusAccepted, StatusRejected, StatusWithdrawn} {
		for _, to := range []Status{StatusPending, StatusReviewed, StatusAccepted, StatusRejected, StatusWithdrawn} {
			if to == final {
				continue
			}
			err := app(final).Transition(to, ActorReviewer, time.Now())
			assertCode(t, err, CodeFinalStatus)
		}
	}
}

func TestTransitionToSameStatus(t *testing.T) {
	err := app(StatusPending).Transition(StatusPending, ActorReviewer, time.Now())
	assertCode(t, err, CodeSameStatus)

	err = app(StatusAccepted).Transition(StatusAccepted, ActorReviewer, time.Now())
	assertCode(t, err, CodeSameStatus)
}

func TestTransitionUnknownStatus(t *testing.T) {
	err := app(StatusPending).Transition(Status("archived"), ActorReviewer, time.Now())
	assertCode(t, err, CodeInvalidStatus)
}

func TestTransitionActorRules(t *testing.T) {
	// Candidates cannot review, accept or reject.
	for _, to := range []Status{StatusReviewed, StatusAccepted, StatusRejected} {
		err := app(StatusPending).Transition(to, ActorCandidate, time.Now())
		assertCode(t, err, CodeActorNotAllowed)
	}

	// Reviewers cannot withdraw on behalf of the candidate.
	err := app(StatusPending).Transition(StatusWithdrawn, ActorReviewer, time.Now())
	assertCode(t, err, CodeActorNotAllowed)
}

func TestTransitionReviewedOnlyFromPending(t *testing.T) {
	// reviewed is reachable from pending only; everything else is either a
	// final status or the state itself.
	err := app(StatusReviewed).Transition(StatusReviewed, ActorReviewer, time.Now())
	assertCode(t, err, CodeSameStatus)
}

func TestTransitionBackToPending(t *testing.T) {
	err := app(StatusReviewed).Transition(StatusPending, ActorReviewer, time.Now())
	assertCode(t, err, CodeInvalidTransition)
}

func TestTransitionUpdatesTimestamp(t *testing.T) {
	a := app(StatusPending)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := a.Transition(StatusReviewed, ActorReviewer, now); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !a.UpdatedAt.Equal(now) {
		t.Errorf("updated_at = %v, want %v", a.UpdatedAt, now)
	}
}

func TestStatusIsFinal(t *testing.T) {
	finals := map[Status]bool{
		StatusPending:   false,
		StatusReviewed:  false,
		StatusAccepted:  true,
		StatusRejected:  true,
		StatusWithdrawn: true,
	}
	for s, want := range finals {
		if s.IsFinal() != want {
			t.Errorf("%s.IsFinal() = %v, want %v", s, !want, want)
		}
	}
}
