package batch

import "context"

// Update is one message of a streamed run. The last message carries the
// summary and the run error, if any.
type Update struct {
	States  []ItemState `json:"items"`
	Summary *Summary    `json:"summary,omitempty"`
	Err     error       `json:"-"`
}

// Stream runs ids on a goroutine and delivers every snapshot on the returned
// channel, which is closed after the final update. Intermediate snapshots are
// dropped once ctx is done; the final update is always sent, so callers must
// drain the channel.
func Stream(ctx context.Context, runner *Runner, ids []int64) <-chan Update {
	updates := make(chan Update, 8)
	go func() {
		defer close(updates)
		send := func(u Update) {
			select {
			case updates <- u:
			case <-ctx.Done():
			}
		}
		summary, err := runner.Run(ctx, ids, func(states []ItemState) {
			send(Update{States: states})
		})
		updates <- Update{States: summary.States, Summary: &summary, Err: err}
	}()
	return updates
}
