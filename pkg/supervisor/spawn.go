package supervisor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"sync"
	"syscall"
)

// spawnMu serializes the narrow umask(0)-then-Start()-then-restore
// critical section across concurrent spawns from different watches'
// workers. A child's umask(0) only ever affects the forked child in a
// classic fork/exec supervisor, because umask is applied
// strictly between fork() and execvp(). Go's os/exec has no per-child
// umask knob (syscall.SysProcAttr carries no Umask field on Linux), so
// the closest safe rendition is to flip the process-wide umask
// immediately around cmd.Start() and restore it right after, holding
// this mutex so two concurrent spawns can't observe each other's
// transient umask.
var spawnMu sync.Mutex

// spawn forks (via os/exec, which performs fork+exec atomically through
// the runtime) a child that execs the watch's command line, dropping
// privileges and daemonizing file descriptors first, and returns the
// child's PID.
func spawn(r *Record) (int, error) {
	w := r.Watch
	if len(w.Start) == 0 {
		return 0, errors.New("watch has an empty start command")
	}

	exe, err := exec.LookPath(w.Start[0])
	args := w.Start[1:]
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			// Step 7: treat a missing executable as an intentional
			// no-op. A real fork+execvp would have the child observe
			// ENOENT and exit(0) itself; since Go's exec plumbing
			// surfaces LookPath failures before ever forking, the
			// equivalent here is to fork a stand-in child that simply
			// exits 0, so the ingestor still sees a normal EXIT event
			// and the state machine proceeds exactly as it would for
			// any other stopped watch.
			exe = "/bin/sh"
			args = []string{"-c", "exit 0"}
		} else {
			return 0, fmt.Errorf("resolve %s: %w", w.Start[0], err)
		}
	}

	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(), w.Env...)

	if dirExists(w.Dir) {
		cmd.Dir = w.Dir
	} else {
		cmd.Dir = "/"
	}

	attr := &syscall.SysProcAttr{Setsid: true}

	if w.GidSet {
		groups := []uint32{w.Gid}

		if w.UidSet && w.User != "" {
			if extra, err := supplementaryGroups(w.User); err == nil {
				groups = extra
			}
		}

		cred := &syscall.Credential{Gid: w.Gid, Groups: groups}
		if w.UidSet {
			cred.Uid = w.Uid
		}
		attr.Credential = cred
	} else if w.UidSet {
		attr.Credential = &syscall.Credential{Uid: w.Uid, NoSetGroups: true}
	}

	cmd.SysProcAttr = attr

	devNullR, devNullW, devNullRW, err := openStdStreams()
	if err != nil {
		return 0, fmt.Errorf("open /dev/null: %w", err)
	}
	defer devNullR.Close()
	defer devNullW.Close()
	defer devNullRW.Close()

	cmd.Stdin = devNullR
	cmd.Stdout = devNullW
	cmd.Stderr = devNullRW

	spawnMu.Lock()
	prevMask := syscall.Umask(0)
	err = cmd.Start()
	syscall.Umask(prevMask)
	spawnMu.Unlock()

	if err != nil {
		// LookPath already ruled out ENOENT, so any failure remaining
		// here is a fork-level failure: fatal to the supervisor. zap's
		// Fatal logs then calls os.Exit(1).
		r.supervisor.logger.Fatalw("fork failed", "watch", w.Name, "error", err)
	}

	pid := cmd.Process.Pid

	// The child is not our direct responsibility to wait() on: the
	// SIGCHLD reaper (C7) and/or the netlink ingestor (C5) observe its
	// termination and drive the state machine from there. Release lets
	// the runtime forget about it without blocking.
	_ = cmd.Process.Release()

	return pid, nil
}

func dirExists(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// openStdStreams opens /dev/null three times, read-only, write-only,
// then read-write, so the child's fds 0, 1, and 2 land on the streams
// with exactly the access mode each one needs.
func openStdStreams() (r, w, rw *os.File, err error) {
	r, err = os.OpenFile(os.DevNull, os.O_RDONLY, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	w, err = os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		r.Close()
		return nil, nil, nil, err
	}
	rw, err = os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		r.Close()
		w.Close()
		return nil, nil, nil, err
	}
	return r, w, rw, nil
}

// supplementaryGroups resolves the supplementary group list for a
// username, the Go equivalent of initgroups(3), which genuinely takes a
// login name rather than a uid.
func supplementaryGroups(username string) ([]uint32, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return nil, err
	}
	ids, err := u.GroupIds()
	if err != nil {
		return nil, err
	}
	groups := make([]uint32, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			continue
		}
		groups = append(groups, uint32(n))
	}
	return groups, nil
}
