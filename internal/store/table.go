package store

// table is a keyed collection of one entity type with monotonic id
// allocation. Ids are never reused or reassigned, including after
// deletes. The chat, message, status and view tables all share this one
// implementation rather than carrying per-entity copies of it.
type table[T any] struct {
	rows   map[int64]T
	lastID int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int64]T)}
}

// insert allocates the next id, asks build for the row to store under
// it and returns the stored row.
func (t *table[T]) insert(build func(id int64) T) T {
	t.lastID++
	row := build(t.lastID)
	t.rows[t.lastID] = row
	return row
}

func (t *table[T]) get(id int64) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) put(id int64, row T) {
	t.rows[id] = row
}

func (t *table[T]) remove(id int64) {
	delete(t.rows, id)
}

func (t *table[T]) len() int {
	return len(t.rows)
}
