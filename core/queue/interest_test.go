package queue

import (
	"testing"

	"github.com/hioload/zeusq/api"
)

// fakeReactor records the interest set per fd so the tracker's transitions
// can be asserted without epoll.
type fakeReactor struct {
	interest map[uintptr]api.Interest
}

func newFakeReactor() *fakeReactor {
	return &fakeReactor{interest: map[uintptr]api.Interest{}}
}

func (r *fakeReactor) Register(fd, userData uintptr, in api.Interest) error {
	r.interest[fd] = in
	return nil
}

func (r *fakeReactor) Modify(fd uintptr, in api.Interest) error {
	r.interest[fd] = in
	return nil
}

func (r *fakeReactor) Unregister(fd uintptr) error {
	delete(r.interest, fd)
	return nil
}

func (r *fakeReactor) Wait([]api.Event, int) (int, error) { return 0, nil }
func (r *fakeReactor) Close() error                       { return nil }

func TestInterestTracksOutstandingDirections(t *testing.T) {
	r := newFakeReactor()
	tr := newInterestTracker(r, 7)

	tr.onSubmit(KindPush)
	if r.interest[7] != api.InterestWrite {
		t.Fatalf("expected write interest after a push submit, got %v", r.interest[7])
	}

	tr.onSubmit(KindPop)
	if r.interest[7] != api.InterestRead|api.InterestWrite {
		t.Fatalf("expected read+write interest, got %v", r.interest[7])
	}

	tr.onResolved(KindPush)
	if r.interest[7] != api.InterestRead {
		t.Fatalf("expected write interest cleared once no push remains, got %v", r.interest[7])
	}

	tr.onResolved(KindPop)
	if r.interest[7] != 0 {
		t.Fatalf("expected no interest once nothing is outstanding, got %v", r.interest[7])
	}
}

func TestInterestListeningKeepsReadSet(t *testing.T) {
	r := newFakeReactor()
	tr := newInterestTracker(r, 3)

	tr.setListening(true)
	if r.interest[3] != api.InterestRead {
		t.Fatalf("expected read interest for a listening queue, got %v", r.interest[3])
	}

	tr.onSubmit(KindPop)
	tr.onResolved(KindPop)
	if r.interest[3] != api.InterestRead {
		t.Fatalf("listening read interest must survive pop churn, got %v", r.interest[3])
	}
}

func TestInterestPrimeRegistersImmediately(t *testing.T) {
	r := newFakeReactor()
	tr := newInterestTracker(r, 9)

	tr.prime(api.InterestRead)
	if r.interest[9] != api.InterestRead {
		t.Fatalf("expected prime to register read interest, got %v", r.interest[9])
	}

	tr.onSubmit(KindPush)
	if r.interest[9] != api.InterestWrite {
		t.Fatalf("expected the tracked set to replace the primed one, got %v", r.interest[9])
	}
}

func TestInterestNilReactorIsNoop(t *testing.T) {
	tr := newInterestTracker(nil, 1)
	tr.onSubmit(KindPush)
	tr.onResolved(KindPush)
	tr.prime(api.InterestRead)
	tr.setListening(true)
	tr.close()
}
