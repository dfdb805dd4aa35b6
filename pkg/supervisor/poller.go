package supervisor

import (
	"context"
	"time"
)

// pollInterval is how often the fallback liveness poller re-checks every
// watch's tracked pid. The netlink ingestor is the primary source of
// truth; this poller exists to close the gap for pids the ingestor might
// have missed, for example if it was briefly down for a shutdown-wake
// cycle, or on a system where CONFIG_PROC_EVENTS is unavailable.
const pollInterval = 5 * time.Second

// startPoller runs dispatchPollResult against every currently tracked
// pid on a fixed interval until ctx is cancelled.
func (sv *Supervisor) startPoller(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sv.pollOnce()
			}
		}
	}()
}

func (sv *Supervisor) pollOnce() {
	for _, rec := range sv.registry.all() {
		pid := rec.PID()
		if pid == 0 {
			continue
		}
		sv.dispatchPollResult(pid, processIsLive(pid))
	}
}
