package node

import (
	"github.com/kaspanet/ledgersim/app/appmessage"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
)

type seenKey struct {
	command appmessage.MessageCommand
	hash    externalapi.DomainHash
}

type seenSlot struct {
	key      seenKey
	sequence uint64
}

// seenCache remembers the most recent capacity message hashes a node
// accepted. Once full, the oldest entry is evicted first. A slot only evicts
// the entry it was written for, so a key removed and added again keeps its
// newer position.
type seenCache struct {
	entries  map[seenKey]uint64
	order    []seenSlot
	next     int
	capacity int
	sequence uint64
}

func newSeenCache(capacity int) *seenCache {
	if capacity < 1 {
		capacity = 1
	}
	return &seenCache{
		entries:  make(map[seenKey]uint64, capacity),
		order:    make([]seenSlot, 0, capacity),
		capacity: capacity,
	}
}

func (c *seenCache) has(key seenKey) bool {
	_, ok := c.entries[key]
	return ok
}

func (c *seenCache) add(key seenKey) {
	if c.has(key) {
		return
	}
	c.sequence++
	slot := seenSlot{key: key, sequence: c.sequence}
	if len(c.order) < c.capacity {
		c.order = append(c.order, slot)
	} else {
		evicted := c.order[c.next]
		if c.entries[evicted.key] == evicted.sequence {
			delete(c.entries, evicted.key)
		}
		c.order[c.next] = slot
		c.next = (c.next + 1) % c.capacity
	}
	c.entries[key] = c.sequence
}

// remove forgets key. Its ring slot stays until overwritten.
func (c *seenCache) remove(key seenKey) {
	delete(c.entries, key)
}

func (c *seenCache) len() int {
	return len(c.entries)
}
