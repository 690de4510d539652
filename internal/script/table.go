// Package script provides the surface the object core needs from the
// scripting host: opaque per-instance value tables and an error reporter
// for behavior call failures. Behaviors themselves are plain Go functions
// registered as class or instance field values.
package script

// Table is an opaque per-instance value store. A fresh table is created
// for every activation and released on deactivation; holders must not
// use a table after Release.
type Table struct {
	vals map[string]any
}

// NewTable creates an empty instance table.
func NewTable() *Table {
	return &Table{vals: make(map[string]any, 8)}
}

// Get returns the value stored under key, or nil when absent.
func (t *Table) Get(key string) any {
	if t == nil || t.vals == nil {
		return nil
	}
	return t.vals[key]
}

// Set stores value under key. Setting nil removes the key, mirroring
// nil-assignment semantics of the scripting host.
func (t *Table) Set(key string, value any) {
	if t == nil || t.vals == nil {
		return
	}
	if value == nil {
		delete(t.vals, key)
		return
	}
	t.vals[key] = value
}

// Delete removes key from the table.
func (t *Table) Delete(key string) {
	if t == nil || t.vals == nil {
		return
	}
	delete(t.vals, key)
}

// Len returns the number of stored values.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.vals)
}

// Keys returns all stored keys (unordered).
func (t *Table) Keys() []string {
	if t == nil || len(t.vals) == 0 {
		return nil
	}
	keys := make([]string, 0, len(t.vals))
	for k := range t.vals {
		keys = append(keys, k)
	}
	return keys
}

// Release drops all values. The table must not be used afterwards.
func (t *Table) Release() {
	if t == nil {
		return
	}
	t.vals = nil
}
