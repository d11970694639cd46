package logic

// PersistCache short-circuits repeated lookups of the same remote ID within
// one ingestion call. A batch of 50 statuses by one author resolves and
// persists the author once. Not safe for concurrent use; confined to a single
// reconciliation call tree and discarded when the call returns. A cache miss
// means "ask the store", never "assume missing".
type PersistCache[T any] struct {
	dict map[string]*T
}

func NewPersistCache[T any]() *PersistCache[T] {
	return &PersistCache[T]{dict: map[string]*T{}}
}

func (c *PersistCache[T]) Lookup(id string) *T {
	return c.dict[id]
}

func (c *PersistCache[T]) Store(id string, val *T) {
	c.dict[id] = val
}

func (c *PersistCache[T]) Len() int {
	return len(c.dict)
}
