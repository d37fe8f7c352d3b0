package host

import (
	"testing"

	"github.com/chazu/loom/protocol"
)

func TestOutstandingInsertTakeAndFree(t *testing.T) {
	table := newOutstandingTable()
	sink := make(chan *protocol.InboundMessage, 1)

	id := table.insert(sink)
	got, ok := table.takeAndFree(id)
	if !ok {
		t.Fatal("want ok")
	}
	if got != (chan<- *protocol.InboundMessage)(sink) {
		t.Error("resolved sink does not match inserted sink")
	}
}

func TestOutstandingTakeAndFreeMissingIsNotFound(t *testing.T) {
	table := newOutstandingTable()
	if _, ok := table.takeAndFree(42); ok {
		t.Fatal("want not found for id never inserted")
	}
}

func TestOutstandingTakeAndFreeIsOneShot(t *testing.T) {
	table := newOutstandingTable()
	sink := make(chan *protocol.InboundMessage, 1)
	id := table.insert(sink)

	if _, ok := table.takeAndFree(id); !ok {
		t.Fatal("want ok on first take")
	}
	if _, ok := table.takeAndFree(id); ok {
		t.Fatal("want not found on second take of the same id")
	}
}

func TestOutstandingIdsAreUniqueAndMonotonicUntilFreed(t *testing.T) {
	table := newOutstandingTable()
	sink := make(chan *protocol.InboundMessage, 1)

	id1 := table.insert(sink)
	id2 := table.insert(sink)
	id3 := table.insert(sink)
	if id1 == id2 || id2 == id3 || id1 == id3 {
		t.Fatalf("ids not distinct: %d %d %d", id1, id2, id3)
	}
	if !(id1 < id2 && id2 < id3) {
		t.Fatalf("ids not monotonic: %d %d %d", id1, id2, id3)
	}
}

func TestOutstandingFreedSlotMayBeReused(t *testing.T) {
	table := newOutstandingTable()
	sink := make(chan *protocol.InboundMessage, 1)

	id1 := table.insert(sink)
	table.takeAndFree(id1)
	id2 := table.insert(sink)
	if id2 != id1 {
		t.Errorf("id2 = %d, want reused id %d", id2, id1)
	}
}
