package wexpr

// ReferenceTable is an ordered name-to-expression store.
//
// The parser uses one internally for [name] alias bindings; callers can
// supply their own via [WithReferenceTable] as a fallback consulted when a
// *[name] splice is not found among the document's own aliases. The table
// owns the expressions stored in it.
type ReferenceTable struct {
	keys   []string
	values map[string]*Expression

	// createUnknownKey, when set, synthesizes an expression for a key the
	// table does not hold. Consulted as the final resort during lookup.
	createUnknownKey func(name string) *Expression
}

// NewReferenceTable creates an empty reference table.
func NewReferenceTable() *ReferenceTable {
	return &ReferenceTable{
		values: make(map[string]*Expression),
	}
}

// SetUnknownKeyCreator installs a callback that lazily produces an
// expression for names the table does not contain. The produced expression
// is stored in the table and owned by it.
func (rt *ReferenceTable) SetUnknownKeyCreator(create func(name string) *Expression) {
	rt.createUnknownKey = create
}

// Set stores value under name, taking ownership and overwriting any
// existing entry. The first insertion position of a name determines its
// index order.
func (rt *ReferenceTable) Set(name string, value *Expression) {
	if _, exists := rt.values[name]; !exists {
		rt.keys = append(rt.keys, name)
	}

	rt.values[name] = value
}

// Get returns the expression stored under name. Unknown names are handed to
// the unknown-key creator if one is installed; its non-nil result is stored
// and returned. Otherwise Get returns nil.
func (rt *ReferenceTable) Get(name string) *Expression {
	if v, ok := rt.values[name]; ok {
		return v
	}

	if rt.createUnknownKey != nil {
		if v := rt.createUnknownKey(name); v != nil {
			rt.Set(name, v)

			return v
		}
	}

	return nil
}

// Remove deletes the entry stored under name, if any.
func (rt *ReferenceTable) Remove(name string) {
	if _, ok := rt.values[name]; !ok {
		return
	}

	delete(rt.values, name)

	for i, k := range rt.keys {
		if k == name {
			rt.keys = append(rt.keys[:i], rt.keys[i+1:]...)

			break
		}
	}
}

// Count returns the number of entries.
func (rt *ReferenceTable) Count() int {
	return len(rt.keys)
}

// IndexOf returns the index of name, or [ReferenceTable.Count] when absent.
func (rt *ReferenceTable) IndexOf(name string) int {
	for i, k := range rt.keys {
		if k == name {
			return i
		}
	}

	return len(rt.keys)
}

// KeyAt returns the name at index i, or "" when out of range.
func (rt *ReferenceTable) KeyAt(i int) string {
	if i < 0 || i >= len(rt.keys) {
		return ""
	}

	return rt.keys[i]
}

// ValueAt returns the expression at index i, or nil when out of range.
func (rt *ReferenceTable) ValueAt(i int) *Expression {
	if i < 0 || i >= len(rt.keys) {
		return nil
	}

	return rt.values[rt.keys[i]]
}
