package cache

// lruList is an intrusive doubly-linked list of cache entries.
// The list is not thread-safe; callers must handle synchronization.
//
// The head is the most recently used entry, the tail the least recently used.
type lruList struct {
	head *entry
	tail *entry
	len  int
}

// Len returns the number of entries in the list.
func (l *lruList) Len() int {
	return l.len
}

// PushFront adds e at the front (most recently used).
func (l *lruList) PushFront(e *entry) {
	e.prev = nil
	e.next = l.head
	if l.head != nil {
		l.head.prev = e
	} else {
		l.tail = e
	}
	l.head = e
	l.len++
}

// MoveToFront moves an entry already in the list to the front.
func (l *lruList) MoveToFront(e *entry) {
	if e == l.head {
		return
	}
	l.unlink(e)
	l.PushFront(e)
}

// Remove unlinks e from the list.
func (l *lruList) Remove(e *entry) {
	l.unlink(e)
}

// Oldest returns the least recently used entry, or nil if the list is empty.
func (l *lruList) Oldest() *entry {
	return l.tail
}

// Clear empties the list. Entries are left for the garbage collector.
func (l *lruList) Clear() {
	l.head = nil
	l.tail = nil
	l.len = 0
}

// unlink removes e from the list and clears its links.
func (l *lruList) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev = nil
	e.next = nil
	l.len--
}
