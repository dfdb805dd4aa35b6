//go:build linux

package supervisor

import "testing"

func TestReapAvailableWithNoChildren(t *testing.T) {
	sv := newTestSupervisor(t)

	// A process with no unreaped children must return immediately
	// (ECHILD) rather than block or panic.
	sv.reapAvailable()
}
