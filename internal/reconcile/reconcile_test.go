package reconcile

import (
	"context"
	"testing"

	"github.com/example/rideshare/internal/models"
	"github.com/example/rideshare/internal/realtime"
	"github.com/example/rideshare/internal/ride"
)

// fakeSource is an in-memory EventSource that counts subscribe and
// unsubscribe calls so tests can assert subscription hygiene.
type fakeSource struct {
	subscribed   int
	unsubscribed int
	handlers     map[string][]*fakeSub
}

func newFakeSource() *fakeSource {
	return &fakeSource{handlers: make(map[string][]*fakeSub)}
}

func (f *fakeSource) Subscribe(event string, fn realtime.Handler) realtime.Subscription {
	f.subscribed++
	sub := &fakeSub{source: f, event: event, fn: fn}
	f.handlers[event] = append(f.handlers[event], sub)
	return sub
}

func (f *fakeSource) emit(ev realtime.Event) {
	for _, sub := range f.handlers[ev.EventName()] {
		sub.fn(ev)
	}
}

func (f *fakeSource) active(event string) int { return len(f.handlers[event]) }

type fakeSub struct {
	source *fakeSource
	event  string
	fn     realtime.Handler
	closed bool
}

func (s *fakeSub) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.source.unsubscribed++
	regs := s.source.handlers[s.event]
	for i, r := range regs {
		if r == s {
			s.source.handlers[s.event] = append(regs[:i], regs[i+1:]...)
			return
		}
	}
}

type fakeDriverAPI struct {
	rides    []models.RideRequest
	stats    models.DriverStats
	accepted models.Ride
	acceptCh chan struct{} // when set, Accept blocks until it receives
	started  chan struct{} // signalled when Accept enters
	err      error
}

func (f *fakeDriverAPI) AvailableRides(ctx context.Context) ([]models.RideRequest, error) {
	return f.rides, f.err
}

func (f *fakeDriverAPI) DriverStats(ctx context.Context) (models.DriverStats, error) {
	return f.stats, f.err
}

func (f *fakeDriverAPI) AcceptRide(ctx context.Context, rideID string) (models.Ride, error) {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.acceptCh != nil {
		<-f.acceptCh
	}
	if f.err != nil {
		return models.Ride{}, f.err
	}
	r := f.accepted
	r.ID = rideID
	return r, nil
}

func TestOnlineToggleLeavesNoDanglingHandlers(t *testing.T) {
	src := newFakeSource()
	b := NewBoard(&fakeDriverAPI{}, src, nil)

	b.SetOnline(true)
	b.SetOnline(false)
	b.SetOnline(true)

	if got := src.active(realtime.EventNewRideRequest); got != 1 {
		t.Fatalf("new-ride-request handlers = %d, want 1", got)
	}
	if got := src.active(realtime.EventRideTaken); got != 1 {
		t.Fatalf("ride-taken handlers = %d, want 1", got)
	}
	if src.subscribed != 4 || src.unsubscribed != 2 {
		t.Fatalf("subscribe/unsubscribe = %d/%d, want 4/2", src.subscribed, src.unsubscribed)
	}

	// redundant toggles are no-ops
	b.SetOnline(true)
	if src.subscribed != 4 {
		t.Fatalf("duplicate online toggle subscribed again: %d", src.subscribed)
	}
}

func TestOfflineBoardIgnoresPush(t *testing.T) {
	src := newFakeSource()
	b := NewBoard(&fakeDriverAPI{}, src, nil)

	src.emit(realtime.NewRideRequestEvent{Request: models.RideRequest{ID: "r1"}})
	if len(b.Requests()) != 0 {
		t.Fatal("offline board accepted a pushed request")
	}

	b.SetOnline(true)
	src.emit(realtime.NewRideRequestEvent{Request: models.RideRequest{ID: "r1"}})
	if len(b.Requests()) != 1 {
		t.Fatal("online board missed a pushed request")
	}

	b.SetOnline(false)
	src.emit(realtime.NewRideRequestEvent{Request: models.RideRequest{ID: "r2"}})
	if len(b.Requests()) != 1 {
		t.Fatal("offline board kept receiving pushes")
	}
}

func TestNewRequestsNewestFirstAndDeduplicated(t *testing.T) {
	src := newFakeSource()
	b := NewBoard(&fakeDriverAPI{}, src, nil)
	b.SetOnline(true)

	src.emit(realtime.NewRideRequestEvent{Request: models.RideRequest{ID: "r1"}})
	src.emit(realtime.NewRideRequestEvent{Request: models.RideRequest{ID: "r2"}})
	src.emit(realtime.NewRideRequestEvent{Request: models.RideRequest{ID: "r1"}})

	got := b.Requests()
	if len(got) != 2 || got[0].ID != "r2" || got[1].ID != "r1" {
		t.Fatalf("unexpected board: %+v", got)
	}
}

func TestRideTakenRemovesExactlyOne(t *testing.T) {
	src := newFakeSource()
	b := NewBoard(&fakeDriverAPI{}, src, nil)
	b.SetOnline(true)

	for _, id := range []string{"r1", "r2", "r3"} {
		src.emit(realtime.NewRideRequestEvent{Request: models.RideRequest{ID: id}})
	}
	src.emit(realtime.RideTakenEvent{RideID: "r2"})

	got := b.Requests()
	if len(got) != 2 || got[0].ID != "r3" || got[1].ID != "r1" {
		t.Fatalf("unexpected board after taken: %+v", got)
	}

	// absent id is a no-op
	src.emit(realtime.RideTakenEvent{RideID: "r2"})
	if len(b.Requests()) != 2 {
		t.Fatal("removing an absent id changed the board")
	}
}

func TestTakenRequestNotAcceptable(t *testing.T) {
	src := newFakeSource()
	b := NewBoard(&fakeDriverAPI{}, src, nil)
	b.SetOnline(true)

	src.emit(realtime.NewRideRequestEvent{Request: models.RideRequest{ID: "r1"}})
	src.emit(realtime.RideTakenEvent{RideID: "r1"})

	for _, r := range b.Requests() {
		if r.ID == "r1" {
			t.Fatal("taken request still listed")
		}
	}
}

func TestAcceptAppliesDirectResponse(t *testing.T) {
	src := newFakeSource()
	api := &fakeDriverAPI{accepted: models.Ride{Status: string(ride.StatusAccepted)}}
	b := NewBoard(api, src, nil)
	b.SetOnline(true)

	src.emit(realtime.NewRideRequestEvent{Request: models.RideRequest{ID: "r1"}})

	got, err := b.Accept(context.Background(), "r1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got.ID != "r1" || got.Status != string(ride.StatusAccepted) {
		t.Fatalf("unexpected accepted ride: %+v", got)
	}
	if len(b.Requests()) != 0 {
		t.Fatal("accepted request still listed")
	}
	if active := b.ActiveRide(); active == nil || active.ID != "r1" {
		t.Fatalf("active ride = %+v", active)
	}

	// the push echo of our own acceptance is a no-op
	src.emit(realtime.RideTakenEvent{RideID: "r1"})
	if active := b.ActiveRide(); active == nil || active.ID != "r1" {
		t.Fatal("ride-taken echo disturbed the active ride")
	}
}

func TestAcceptGuardsDuplicateSubmission(t *testing.T) {
	src := newFakeSource()
	api := &fakeDriverAPI{acceptCh: make(chan struct{}), started: make(chan struct{}, 1)}
	b := NewBoard(api, src, nil)

	done := make(chan error, 1)
	go func() {
		_, err := b.Accept(context.Background(), "r1")
		done <- err
	}()
	<-api.started

	// second submission while the first is in flight is rejected
	if _, err := b.Accept(context.Background(), "r1"); err != ErrAcceptInFlight {
		t.Fatalf("duplicate accept: err = %v, want ErrAcceptInFlight", err)
	}
	close(api.acceptCh)
	if err := <-done; err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
}

type fakeRiderAPI struct {
	ride    *models.Ride
	err     error
	onFetch func()
	fetched int
}

func (f *fakeRiderAPI) CurrentRide(ctx context.Context) (*models.Ride, error) {
	f.fetched++
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.ride, f.err
}

func TestAcceptedEventIsIdempotent(t *testing.T) {
	src := newFakeSource()
	api := &fakeRiderAPI{ride: &models.Ride{ID: "r1", Status: string(ride.StatusRequested)}}
	s := NewRideState(api, src, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	ev := realtime.RideAcceptedEvent{RideID: "r1", Driver: models.PersonSummary{FirstName: "Max", LastName: "Ito"}}
	src.emit(ev)
	first := s.Snapshot()
	src.emit(ev)
	second := s.Snapshot()

	if first.Status != ride.StatusAccepted || first.Ride.Driver == nil {
		t.Fatalf("first apply wrong: %+v", first)
	}
	if second.Status != first.Status || *second.Ride.Driver != *first.Ride.Driver {
		t.Fatalf("second apply changed state: %+v vs %+v", second, first)
	}
}

func TestStaleAcceptedAfterCompletedDiscarded(t *testing.T) {
	src := newFakeSource()
	api := &fakeRiderAPI{ride: &models.Ride{ID: "r1", Status: string(ride.StatusRequested)}}
	s := NewRideState(api, src, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	src.emit(realtime.RideCompletedEvent{RideID: "r1", FinalFare: 21.00})
	src.emit(realtime.RideAcceptedEvent{RideID: "r1", Driver: models.PersonSummary{FirstName: "Max"}})

	snap := s.Snapshot()
	if snap.Status != ride.StatusCompleted {
		t.Fatalf("status regressed to %s", snap.Status)
	}
	if snap.Ride.FinalFare == nil || *snap.Ride.FinalFare != 21.00 {
		t.Fatalf("final fare lost: %+v", snap.Ride)
	}
}

func TestFetchDoesNotRegressEventState(t *testing.T) {
	src := newFakeSource()
	api := &fakeRiderAPI{ride: &models.Ride{ID: "r1", Status: string(ride.StatusRequested)}}
	// the accepted event lands while the seed fetch is in flight
	api.onFetch = func() {
		src.emit(realtime.RideAcceptedEvent{RideID: "r1", Driver: models.PersonSummary{FirstName: "Max"}})
	}
	s := NewRideState(api, src, nil)
	// booking's direct response installed the ride before the view mounted
	s.SetRide(models.Ride{ID: "r1", Status: string(ride.StatusRequested)})
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if snap.Status != ride.StatusAccepted {
		t.Fatalf("fetch regressed status to %s", snap.Status)
	}
	if snap.Ride.Driver == nil {
		t.Fatal("fetch dropped the driver learned from the event")
	}
}

func TestRatingGateNeedsCompletionAndPayment(t *testing.T) {
	src := newFakeSource()
	api := &fakeRiderAPI{ride: &models.Ride{ID: "r1", Status: string(ride.StatusAccepted)}}
	s := NewRideState(api, src, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if s.Snapshot().RatingEligible() {
		t.Fatal("ratable before completion")
	}
	src.emit(realtime.RideCompletedEvent{RideID: "r1", FinalFare: 15.25})
	if s.Snapshot().RatingEligible() {
		t.Fatal("ratable before payment")
	}
	src.emit(realtime.PaymentCompletedEvent{RideID: "r1"})
	if !s.Snapshot().RatingEligible() {
		t.Fatal("not ratable after completion and payment")
	}
}

func TestBookingThenAcceptanceScenario(t *testing.T) {
	src := newFakeSource()
	api := &fakeRiderAPI{} // no current ride before booking
	s := NewRideState(api, src, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Ride != nil {
		t.Fatal("ride present before booking")
	}

	// booking call returned a requested ride; apply the direct response
	s.SetRide(models.Ride{
		ID:             "r1",
		Status:         string(ride.StatusRequested),
		PickupAddress:  "123 Main St",
		DropoffAddress: "1 Airport Rd",
		RideType:       "standard",
		EstimatedFare:  10.00,
	})
	snap := s.Snapshot()
	if snap.Status != ride.StatusRequested || snap.Ride.PickupAddress != "123 Main St" {
		t.Fatalf("unexpected booked state: %+v", snap)
	}

	src.emit(realtime.RideAcceptedEvent{RideID: "r1", Driver: models.PersonSummary{FirstName: "Sam", LastName: "Ode"}})
	snap = s.Snapshot()
	if snap.Status != ride.StatusAccepted {
		t.Fatalf("status = %s, want accepted", snap.Status)
	}
	if snap.Ride.Driver == nil || snap.Ride.Driver.Name() != "Sam Ode" {
		t.Fatalf("driver name not visible: %+v", snap.Ride.Driver)
	}
}

func TestStopClosesRiderSubscriptions(t *testing.T) {
	src := newFakeSource()
	api := &fakeRiderAPI{}
	s := NewRideState(api, src, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.subscribed != 3 {
		t.Fatalf("subscribed = %d, want 3", src.subscribed)
	}
	s.Stop()
	if src.unsubscribed != 3 {
		t.Fatalf("unsubscribed = %d, want 3", src.unsubscribed)
	}
	for _, ev := range []string{realtime.EventRideAccepted, realtime.EventRideCompleted, realtime.EventPaymentCompleted} {
		if src.active(ev) != 0 {
			t.Fatalf("handler for %s leaked", ev)
		}
	}
}
