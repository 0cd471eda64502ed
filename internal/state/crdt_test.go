package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplicaDeduplicates(t *testing.T) {
	r := NewReplica(NewClock())
	op := Op{Type: OpInsertStroke, Stroke: &Stroke{ID: "x"}, Lamport: 7, Site: "peer"}

	assert.True(t, r.Merge(op))
	assert.False(t, r.Merge(op))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, uint64(7), r.Clock().Now())
}

func TestReplicaLocalStamps(t *testing.T) {
	c := NewClock()
	r := NewReplica(c)
	c.Observe(10)

	op := r.Local(Op{Type: OpInsertStroke, Stroke: &Stroke{ID: "y"}})
	assert.Equal(t, uint64(11), op.Lamport)
	assert.Equal(t, c.Site(), op.Site)
}

func TestReplicaOpsOrdered(t *testing.T) {
	r := NewReplica(NewClock())
	r.Merge(Op{Type: OpInsertStroke, Stroke: &Stroke{ID: "c"}, Lamport: 3, Site: "b"})
	r.Merge(Op{Type: OpInsertStroke, Stroke: &Stroke{ID: "a"}, Lamport: 1, Site: "z"})
	r.Merge(Op{Type: OpInsertStroke, Stroke: &Stroke{ID: "b"}, Lamport: 3, Site: "a"})

	ops := r.Ops()
	require.Len(t, ops, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{ops[0].Stroke.ID, ops[1].Stroke.ID, ops[2].Stroke.ID})
}

func TestClockObserveNeverGoesBack(t *testing.T) {
	c := NewClock()
	c.Observe(5)
	c.Observe(2)
	assert.Equal(t, uint64(5), c.Now())
	assert.Equal(t, uint64(6), c.Tick())
}
