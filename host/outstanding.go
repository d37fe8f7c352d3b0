package host

import (
	"sync"

	"github.com/chazu/loom/protocol"
)

// outstandingTable is the sparse, monotonic-id table of in-flight outbound
// callback requests described in spec §3: each slot records where the
// matching inbound response must be delivered once it arrives. It is a
// growable vector with tombstones rather than a map, matching the intended
// shape for dense, monotonically assigned ids; reusing the freed index on
// the next insert keeps the vector from growing unbounded under steady
// request/response traffic.
type outstandingTable struct {
	mu    sync.Mutex
	slots []chan<- *protocol.InboundMessage
	free  []uint32
	next  uint32
}

// newOutstandingTable constructs an empty table.
func newOutstandingTable() *outstandingTable {
	return &outstandingTable{}
}

// insert records sink under an id no other outstanding request holds and
// returns it: the most recently freed id if there is one, otherwise the
// next never-used id.
func (t *outstandingTable) insert(sink chan<- *protocol.InboundMessage) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[id] = sink
		return id
	}

	id := t.next
	t.next++
	t.slots = append(t.slots, sink)
	return id
}

// takeAndFree resolves id and frees its slot atomically, as required when
// routing a matching response: the slot must disappear exactly once, even
// under concurrent routing attempts.
func (t *outstandingTable) takeAndFree(id uint32) (chan<- *protocol.InboundMessage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if int(id) >= len(t.slots) {
		return nil, false
	}
	sink := t.slots[id]
	if sink == nil {
		return nil, false
	}
	t.slots[id] = nil
	t.free = append(t.free, id)
	return sink, true
}
