package compile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/bookbinder/internal/logfields"
)

// RunStages executes stages in order, recording timing and stopping on the
// first error. Failed stages leave previously written files in place: the
// pipeline is idempotent, so re-running it repairs a partial workspace.
func RunStages(ctx context.Context, bs *BuildState, defs []StageDef) error {
	for _, st := range defs {
		select {
		case <-ctx.Done():
			return fmt.Errorf("stage %s canceled: %w", st.Name, ctx.Err())
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[st.Name] = dur

		if err != nil {
			slog.Error("Stage failed",
				logfields.Stage(string(st.Name)),
				logfields.DurationMS(float64(dur.Milliseconds())),
				logfields.Error(err))
			return fmt.Errorf("stage %s: %w", st.Name, err)
		}
		slog.Debug("Stage complete",
			logfields.Stage(string(st.Name)),
			logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}
