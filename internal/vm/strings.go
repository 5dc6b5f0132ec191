package vm

// StringTable canonicalizes strings so equal contents share one heap
// object. String literals and concatenation results pass through it.
type StringTable struct {
	strings map[string]*StringObject
}

// NewStringTable creates an empty intern table
func NewStringTable() *StringTable {
	return &StringTable{strings: make(map[string]*StringObject)}
}

// Intern returns the canonical StringObject for s, creating it on
// first use.
func (t *StringTable) Intern(s string) *StringObject {
	if obj, ok := t.strings[s]; ok {
		return obj
	}
	obj := &StringObject{Value: s}
	t.strings[s] = obj
	return obj
}
