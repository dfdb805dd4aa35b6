// Package loader turns on-disk watch configuration (usernames, group
// names) into the numeric, already-resolved form the
// supervisor core consumes. The core deliberately never performs a user
// or group database lookup itself; this package is where that boundary
// is drawn.
package loader

import (
	"fmt"
	"os/user"
	"strconv"

	"github.com/wardenhq/warden/pkg/config"
	"github.com/wardenhq/warden/pkg/supervisor"
)

// Resolve converts a config.Watch into a supervisor.Watch, resolving
// User/Group names to numeric uid/gid along the way. A watch with
// neither User nor Group set runs with the supervisor's own credentials.
func Resolve(w config.Watch) (*supervisor.Watch, error) {
	if w.Name == "" {
		return nil, fmt.Errorf("watch is missing a name")
	}
	if len(w.Start) == 0 {
		return nil, fmt.Errorf("watch %q has no start command", w.Name)
	}

	out := &supervisor.Watch{
		Name:         w.Name,
		Start:        append([]string(nil), w.Start...),
		Dir:          w.Dir,
		User:         w.User,
		StopSignal:   w.StopSignal,
		StartTimeout: w.StartTimeout,
		OutLog:       w.OutLog,
		ErrLog:       w.ErrLog,
	}

	for k, v := range w.Env {
		out.Env = append(out.Env, k+"="+v)
	}

	if w.User != "" {
		u, err := user.Lookup(w.User)
		if err != nil {
			return nil, fmt.Errorf("watch %q: resolve user %q: %w", w.Name, w.User, err)
		}
		uid, err := strconv.ParseUint(u.Uid, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("watch %q: uid %q not numeric: %w", w.Name, u.Uid, err)
		}
		out.Uid = uint32(uid)
		out.UidSet = true

		if w.Group == "" {
			gid, err := strconv.ParseUint(u.Gid, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("watch %q: gid %q not numeric: %w", w.Name, u.Gid, err)
			}
			out.Gid = uint32(gid)
			out.GidSet = true
		}
	}

	if w.Group != "" {
		g, err := user.LookupGroup(w.Group)
		if err != nil {
			return nil, fmt.Errorf("watch %q: resolve group %q: %w", w.Name, w.Group, err)
		}
		gid, err := strconv.ParseUint(g.Gid, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("watch %q: gid %q not numeric: %w", w.Name, g.Gid, err)
		}
		out.Gid = uint32(gid)
		out.GidSet = true
	}

	return out, nil
}

// ResolveAll resolves every watch in cfg.Watches, stopping at the first
// error since a partially-resolved watch set is not a safe thing to run
// a supervisor against.
func ResolveAll(cfg *config.Config) ([]*supervisor.Watch, error) {
	watches := make([]*supervisor.Watch, 0, len(cfg.Watches))
	for _, w := range cfg.Watches {
		resolved, err := Resolve(w)
		if err != nil {
			return nil, err
		}
		watches = append(watches, resolved)
	}
	return watches, nil
}
