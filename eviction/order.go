package eviction

import "container/list"

// order is a doubly-linked list of keys with an index for O(1) lookup.
// Front is the next victim.
type order struct {
	ll    *list.List
	index map[string]*list.Element
}

func newOrder() order {
	return order{ll: list.New(), index: make(map[string]*list.Element)}
}

// push appends k at the back. It reports false if k was already tracked.
func (o *order) push(k string) bool {
	if _, ok := o.index[k]; ok {
		return false
	}
	o.index[k] = o.ll.PushBack(k)
	return true
}

// touch moves a tracked key to the back.
func (o *order) touch(k string) {
	if e, ok := o.index[k]; ok {
		o.ll.MoveToBack(e)
	}
}

func (o *order) remove(k string) {
	if e, ok := o.index[k]; ok {
		o.ll.Remove(e)
		delete(o.index, k)
	}
}

func (o *order) pop() string {
	e := o.ll.Front()
	if e == nil {
		return ""
	}
	k := e.Value.(string)
	o.ll.Remove(e)
	delete(o.index, k)
	return k
}

func (o *order) reset() {
	o.ll.Init()
	o.index = make(map[string]*list.Element)
}
