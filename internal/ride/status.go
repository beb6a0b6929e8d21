package ride

// Status is the lifecycle state of a ride as the client observes it.
// The forward order is requested < accepted < started < completed;
// cancelled is an orthogonal terminal reachable from any non-completed
// state. started has no client-side trigger today but remains a valid
// state because the backend may report it.
type Status string

const (
	StatusRequested Status = "requested"
	StatusAccepted  Status = "accepted"
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var ranks = map[Status]int{
	StatusRequested: 0,
	StatusAccepted:  1,
	StatusStarted:   2,
	StatusCompleted: 3,
}

// Known reports whether s is one of the five lifecycle states.
func (s Status) Known() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := ranks[s]
	return ok
}

// Terminal reports whether no further transitions are permitted out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Transition applies the monotonic-status rule: an incoming status is
// accepted only if it does not move the ride backward. Cancellation
// applies from any state except completed. Unknown incoming states are
// rejected. The returned bool reports whether the update applied; the
// returned Status is always the state to hold afterwards.
func Transition(current, incoming Status) (Status, bool) {
	if !incoming.Known() {
		return current, false
	}
	if current.Terminal() {
		return current, false
	}
	if incoming == StatusCancelled {
		return StatusCancelled, true
	}
	if ranks[incoming] < ranks[current] {
		return current, false
	}
	return incoming, true
}

// Describe returns the rider-facing status line shown while tracking.
func Describe(s Status) string {
	switch s {
	case StatusRequested:
		return "Looking for a driver..."
	case StatusAccepted:
		return "Driver is on the way!"
	case StatusStarted:
		return "Trip in progress"
	case StatusCompleted:
		return "Trip completed"
	case StatusCancelled:
		return "Ride cancelled"
	default:
		return "Unknown status"
	}
}
