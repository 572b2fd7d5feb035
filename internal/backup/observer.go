package backup

// Observer receives the three event streams a running pass emits. Callbacks
// are invoked from the pass's own goroutine; implementations that hand events
// to another loop must do their own marshalling.
type Observer interface {
	// Progress reports overall completion in 0..100, non-decreasing
	// within a pass.
	Progress(percent int)

	// Status reports a human-readable status line.
	Status(message string)

	// Error reports a non-fatal, human-readable error line. Cancellation
	// is reported through Status, not here.
	Error(message string)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) Progress(int)  {}
func (NopObserver) Status(string) {}
func (NopObserver) Error(string)  {}

// CallbackObserver adapts plain functions to the Observer interface.
// Nil fields are skipped.
type CallbackObserver struct {
	OnProgress func(percent int)
	OnStatus   func(message string)
	OnError    func(message string)
}

func (o *CallbackObserver) Progress(percent int) {
	if o.OnProgress != nil {
		o.OnProgress(percent)
	}
}

func (o *CallbackObserver) Status(message string) {
	if o.OnStatus != nil {
		o.OnStatus(message)
	}
}

func (o *CallbackObserver) Error(message string) {
	if o.OnError != nil {
		o.OnError(message)
	}
}

var (
	_ Observer = NopObserver{}
	_ Observer = (*CallbackObserver)(nil)
)
