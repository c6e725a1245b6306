// Package worker runs long operations on background goroutines and
// reports forward-only through a single event stream: zero or more
// progress messages followed by exactly one terminal event, after which
// the stream is closed. Workers are not cancellable once started.
package worker

// EventKind tags an event on a task stream.
type EventKind int

const (
	// Progress carries an informational message; any number may arrive.
	Progress EventKind = iota
	// Done carries the result; terminal.
	Done
	// Failed carries the error; terminal.
	Failed
)

// Event is one signal observed by a task's caller.
type Event[T any] struct {
	Kind    EventKind
	Message string
	Result  T
	Err     error
}

// ProgressFunc lets a task body emit progress messages.
type ProgressFunc func(message string)

// Run starts fn on its own goroutine and returns the event stream. The
// stream delivers fn's progress messages in order, then exactly one Done
// or Failed event, then closes. Callers must drain the channel.
func Run[T any](fn func(progress ProgressFunc) (T, error)) <-chan Event[T] {
	events := make(chan Event[T], 1)

	go func() {
		defer close(events)

		result, err := fn(func(message string) {
			events <- Event[T]{Kind: Progress, Message: message}
		})
		if err != nil {
			events <- Event[T]{Kind: Failed, Err: err}
			return
		}
		events <- Event[T]{Kind: Done, Result: result}
	}()

	return events
}

// Wait drains a stream, forwarding progress messages to onProgress (which
// may be nil), and returns the terminal result.
func Wait[T any](events <-chan Event[T], onProgress func(string)) (T, error) {
	var result T
	var err error
	for ev := range events {
		switch ev.Kind {
		case Progress:
			if onProgress != nil {
				onProgress(ev.Message)
			}
		case Done:
			result = ev.Result
		case Failed:
			err = ev.Err
		}
	}
	return result, err
}
