package reagent

// Reporter observes loop transitions as typed events. Implementations must
// not block: the loop controller emits synchronously and must function
// identically whether events are consumed, fanned out, or discarded.
//
// [EventHub] is the channel-backed Reporter intended for transports; the
// loggers package provides logging Reporters.
type Reporter interface {
	Report(event Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

// Report calls the function.
func (f ReporterFunc) Report(event Event) {
	f(event)
}

// DiscardReporter returns a Reporter that drops every event. It is the loop's
// default, preserving the separation between control logic and delivery.
func DiscardReporter() Reporter {
	return ReporterFunc(func(Event) {})
}

// MultiReporter fans each event out to every given reporter, in order.
func MultiReporter(reporters ...Reporter) Reporter {
	list := append([]Reporter(nil), reporters...)
	return ReporterFunc(func(event Event) {
		for _, r := range list {
			r.Report(event)
		}
	})
}
