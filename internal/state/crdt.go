package state

import (
	"sort"
	"sync"

	"InpaintBoard/internal/logging"
)

// Replica is a grow-only set of stroke operations shared between peers.
// Ops are keyed by Op.Key so that a stroke relayed several times is applied
// once. Replica is safe for concurrent use; network readers call Merge from
// their own goroutines.
type Replica struct {
	clock *Clock
	mu    sync.RWMutex
	ops   map[string]Op
}

func NewReplica(clock *Clock) *Replica {
	return &Replica{clock: clock, ops: make(map[string]Op)}
}

func (r *Replica) Clock() *Clock { return r.clock }

// Local stamps an op produced by this site and records it.
func (r *Replica) Local(op Op) Op {
	op = r.clock.Stamp(op)
	r.mu.Lock()
	r.ops[op.Key()] = op
	r.mu.Unlock()
	logging.Logger().Debug("replica: local op", "key", op.Key(), "lamport", op.Lamport)
	return op
}

// Merge records a remote op and reports whether it was new.
func (r *Replica) Merge(op Op) bool {
	key := op.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ops[key]; exists {
		logging.Logger().Debug("replica: duplicate op", "key", key)
		return false
	}
	r.clock.Observe(op.Lamport)
	r.ops[key] = op
	logging.Logger().Debug("replica: remote op", "key", key, "site", op.Site)
	return true
}

// Ops returns every recorded op ordered by Lamport time, ties broken by site.
// A late joiner replays them in this order.
func (r *Replica) Ops() []Op {
	r.mu.RLock()
	out := make([]Op, 0, len(r.ops))
	for _, op := range r.ops {
		out = append(out, op)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lamport != out[j].Lamport {
			return out[i].Lamport < out[j].Lamport
		}
		return out[i].Site < out[j].Site
	})
	return out
}

// Len returns the number of ops recorded.
func (r *Replica) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ops)
}
