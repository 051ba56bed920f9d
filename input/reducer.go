package input

// Event is a backend-independent key transition for one control.
type Event struct {
	Control Control
	Down    bool
}

// Reducer folds events into the current state. Backends feed it while draining
// their event queues; the engine reads State once per frame.
type Reducer struct {
	state Snapshot
}

func NewReducer() *Reducer {
	return &Reducer{}
}

func (r *Reducer) Apply(ev Event) {
	r.state = r.state.With(ev.Control, ev.Down)
}

func (r *Reducer) Press(c Control) {
	r.Apply(Event{Control: c, Down: true})
}

func (r *Reducer) Reset() {
	r.state = 0
}

func (r *Reducer) State() Snapshot {
	return r.state
}
