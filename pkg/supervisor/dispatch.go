package supervisor

// dispatchEvent consumes a process-connector notification decoded by the
// ingestor. FORK confirms a spawn the ingestor observed possibly before
// the spawn primitive's own bookkeeping caught up: it only advances a
// record to RUNNING when the forked child's pid matches the pid that
// record's own start action already recorded, so an unrelated fork
// elsewhere on the system can never be mistaken for one of ours. EXIT is
// unconditional: whichever record currently tracks that pid moves to
// STOPPED regardless of what state it was last observed in, since the
// kernel's word that a pid has exited is authoritative.
func (sv *Supervisor) dispatchEvent(ev procEvent) {
	switch ev.kind {
	case procEventFork:
		pid := int(ev.forkPid)
		rec, ok := sv.registry.byPID(pid)
		if !ok {
			return
		}
		if rec.State() != StateRunning {
			rec.setState(StateRunning)
		}

	case procEventExit:
		pid := int(ev.exitPid)
		rec, ok := sv.registry.byPID(pid)
		if !ok {
			return
		}
		if rec.State() != StateStopped {
			rec.setState(StateStopped)
		}
	}
}

// dispatchPollResult consumes a periodic liveness probe result from an
// external poller, keyed by pid rather than by watch name since that's
// what a /proc scan or a kill(pid, 0) probe naturally produces.
func (sv *Supervisor) dispatchPollResult(pid int, running bool) {
	rec, ok := sv.registry.byPID(pid)
	if !ok {
		return
	}
	if running && rec.State() != StateRunning {
		rec.setState(StateRunning)
	} else if !running && rec.State() != StateStopped {
		rec.setState(StateStopped)
	}
}
