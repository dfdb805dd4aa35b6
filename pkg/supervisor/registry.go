package supervisor

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// registry is the ordered, name-keyed set of records a Supervisor owns.
// Insertion order is preserved so status listings and dumps come back in
// the order watches were configured, not map iteration order.
type registry struct {
	watches *orderedmap.OrderedMap[string, *Record]
}

func newRegistry() *registry {
	return &registry{watches: orderedmap.New[string, *Record]()}
}

func (r *registry) add(rec *Record) {
	r.watches.Set(rec.Watch.Name, rec)
}

func (r *registry) get(name string) (*Record, bool) {
	return r.watches.Get(name)
}

// byPID scans every record for one whose currently tracked PID matches.
// A linear scan is acceptable here: a supervisor manages a handful of
// watches, not thousands.
func (r *registry) byPID(pid int) (*Record, bool) {
	for pair := r.watches.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.PID() == pid {
			return pair.Value, true
		}
	}
	return nil, false
}

func (r *registry) all() []*Record {
	out := make([]*Record, 0, r.watches.Len())
	for pair := r.watches.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

func (r *registry) names() []string {
	out := make([]string, 0, r.watches.Len())
	for pair := r.watches.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
