package supervisor

import (
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/wardenhq/warden/pkg/codec"
)

// watchSnapshot is the persisted shape of a Watch, keyed by name in the
// dump database. It mirrors Watch rather than reusing it directly so the
// on-disk format doesn't silently change shape if Watch grows runtime-
// only fields later.
type watchSnapshot struct {
	Name         string
	Start        []string
	Dir          string
	Uid          uint32
	Gid          uint32
	UidSet       bool
	GidSet       bool
	User         string
	Env          []string
	StopSignal   string
	StartTimeout int64
	OutLog       string
	ErrLog       string
}

func toSnapshot(w *Watch) watchSnapshot {
	return watchSnapshot{
		Name: w.Name, Start: w.Start, Dir: w.Dir,
		Uid: w.Uid, Gid: w.Gid, UidSet: w.UidSet, GidSet: w.GidSet,
		User: w.User, Env: w.Env, StopSignal: w.StopSignal,
		StartTimeout: int64(w.StartTimeout), OutLog: w.OutLog, ErrLog: w.ErrLog,
	}
}

func (s watchSnapshot) toWatch() *Watch {
	return &Watch{
		Name: s.Name, Start: s.Start, Dir: s.Dir,
		Uid: s.Uid, Gid: s.Gid, UidSet: s.UidSet, GidSet: s.GidSet,
		User: s.User, Env: s.Env, StopSignal: s.StopSignal,
		StartTimeout: time.Duration(s.StartTimeout),
		OutLog:       s.OutLog, ErrLog: s.ErrLog,
	}
}

// Dump persists every configured watch's declarative definition to a
// badger database at dbPath, keyed by watch name. It does not persist
// runtime state (pid, timestamps): a dump is a configuration snapshot,
// read back by LoadSnapshot.
func (sv *Supervisor) Dump(dbPath string) error {
	db, err := badger.Open(badger.DefaultOptions(dbPath))
	if err != nil {
		return err
	}
	defer db.Close()

	enc, err := codec.GetEncoder()
	if err != nil {
		return err
	}

	return db.Update(func(txn *badger.Txn) error {
		for _, rec := range sv.registry.all() {
			data, err := enc.Marshal(toSnapshot(rec.Watch))
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(rec.Watch.Name), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadSnapshot reads every watch definition out of a dump database,
// without constructing a Supervisor or registering anything: callers
// register the result themselves (the control plane's ActionLoad passes
// each not-yet-known watch to Supervisor.AddWatch).
func LoadSnapshot(dbPath string) ([]*Watch, error) {
	db, err := badger.Open(badger.DefaultOptions(dbPath))
	if err != nil {
		return nil, err
	}
	defer db.Close()

	dec, err := codec.GetDecoder()
	if err != nil {
		return nil, err
	}

	var watches []*Watch

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var snap watchSnapshot
				if err := dec.Unmarshal(val, &snap); err != nil {
					return err
				}
				watches = append(watches, snap.toWatch())
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return watches, err
}
