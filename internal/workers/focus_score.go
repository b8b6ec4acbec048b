package workers

import (
	"context"
	"time"
)

// scoreRecomputer is the slice of the focus service this worker drives
type scoreRecomputer interface {
	RecomputeScore()
}

// FocusScoreWorker periodically refreshes the attention score and
// break reminder state of the focus tracker
type FocusScoreWorker struct {
	*BaseWorker
	focus scoreRecomputer
}

func NewFocusScoreWorker(focus scoreRecomputer, interval time.Duration) *FocusScoreWorker {
	return &FocusScoreWorker{
		BaseWorker: NewBaseWorker("focus_score", interval, true),
		focus:      focus,
	}
}

func (w *FocusScoreWorker) Run(ctx context.Context) error {
	start := time.Now()
	w.focus.RecomputeScore()
	w.RecordRun(time.Since(start))
	return nil
}
