// This file implements FIFO eviction.

package eviction

// fifo evicts in first-insertion order. Overwriting a key keeps its place.
type fifo struct {
	keys order
}

func newFIFO() *fifo {
	return &fifo{keys: newOrder()}
}

// OnGet is ignored: FIFO does not care about reads.
func (f *fifo) OnGet(string) {}

func (f *fifo) OnPut(k string) { f.keys.push(k) }

func (f *fifo) Remove(k string) { f.keys.remove(k) }

func (f *fifo) Evict() string { return f.keys.pop() }

func (f *fifo) Reset() { f.keys.reset() }
