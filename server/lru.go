package server

// lruList is an intrusive doubly-linked list of live connections, head =
// most recently active, anchored at the Server. Nodes are owned by the
// Server; only it may unlink and destroy them (spec §9's "avoid shared
// ownership: only the server may destroy a node").
type lruList struct {
	head *connection
	tail *connection
}

// pushFront links c at the head of the list. c must not already be linked.
func (l *lruList) pushFront(c *connection) {
	c.lruPrev = nil
	c.lruNext = l.head
	if l.head != nil {
		l.head.lruPrev = c
	}
	l.head = c
	if l.tail == nil {
		l.tail = c
	}
}

// remove unlinks c from the list. c must currently be linked.
func (l *lruList) remove(c *connection) {
	if c.lruPrev != nil {
		c.lruPrev.lruNext = c.lruNext
	} else {
		l.head = c.lruNext
	}
	if c.lruNext != nil {
		c.lruNext.lruPrev = c.lruPrev
	} else {
		l.tail = c.lruPrev
	}
	c.lruPrev = nil
	c.lruNext = nil
}

// moveToFront re-links c at the head; used on every RX/TX event for a
// connection (spec §4.4's MarkActive).
func (l *lruList) moveToFront(c *connection) {
	if l.head == c {
		return
	}
	l.remove(c)
	l.pushFront(c)
}

// oldest returns the least-recently-active connection, or nil if the list
// is empty. Used by CheckTimeout to find idle-eviction candidates.
func (l *lruList) oldest() *connection {
	return l.tail
}
