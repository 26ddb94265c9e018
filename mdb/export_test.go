package mdb

// Corrupt replaces the resource behind a token, or registers one, so tests
// can reach the corruption paths.
func (b *Binding) Corrupt(kind HandleKind, tok string, res any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.namespace(kind).table[tok] = &record{res: res}
}
