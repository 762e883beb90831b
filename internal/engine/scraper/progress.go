package scraper

import "github.com/mgillard/leadtap/internal/model"

// ProgressFunc receives progress events synchronously, in the order the
// corresponding work completes. Emission is fire-and-forget: a panicking
// sink never aborts the run.
type ProgressFunc func(model.ProgressEvent)

type emitter struct {
	fn      ProgressFunc
	current int
	total   int
}

func (e *emitter) emit(phase model.Phase, msg string) {
	if e.fn == nil {
		return
	}
	defer func() {
		// a closed downstream channel or a broken sink is not our problem
		_ = recover()
	}()
	e.fn(model.ProgressEvent{
		Current: e.current,
		Total:   e.total,
		Message: msg,
		Phase:   phase,
	})
}
