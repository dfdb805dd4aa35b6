package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// pidFilePath returns the canonical PID file location for a watch:
// <pidDir>/<name>.pid.
func pidFilePath(pidDir, name string) string {
	return filepath.Join(pidDir, name+".pid")
}

// readPidFile parses a PID file's contents. Trailing whitespace and a
// trailing newline are tolerated since nothing in this package writes
// anything else there, but adopted watches may have been left behind by
// a previous supervisor invocation using the same convention.
func readPidFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse pid file %s: %w", path, err)
	}
	return pid, nil
}

// writePidFile records a watch's PID, creating the containing directory
// if this is the first watch to write into it.
func writePidFile(path string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// removePidFile deletes a watch's PID file. A missing file is not an
// error: this is called unconditionally on every transition into
// STOPPED, including ones where a PID file was never written.
func removePidFile(path string) {
	_ = os.Remove(path)
}
