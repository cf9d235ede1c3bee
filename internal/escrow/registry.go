package escrow

import "sync"

// Registry owns the append-only collection of escrow records. Records are
// mutated in place through the pointers it hands out; the engine provides
// the mutual exclusion around those mutations. Records are never deleted,
// the collection is the audit trail of every engagement ever created.
type Registry struct {
	mu      sync.RWMutex
	escrows []*Escrow
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Append stores a new record and assigns it the next sequential id.
// Ids start at 1; 0 is never a valid id.
func (r *Registry) Append(e *Escrow) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.escrows = append(r.escrows, e)
	e.ID = uint64(len(r.escrows))
	return e.ID
}

// get returns the live record. Callers that mutate it must hold the
// engine's operation lock.
func (r *Registry) get(id uint64) (*Escrow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == 0 || id > uint64(len(r.escrows)) {
		return nil, ErrNotFound
	}
	return r.escrows[id-1], nil
}

// Snapshot returns a deep copy of the record for read-only use.
func (r *Registry) Snapshot(id uint64) (Escrow, error) {
	rec, err := r.get(id)
	if err != nil {
		return Escrow{}, err
	}
	return rec.clone(), nil
}

// Count reports how many escrows have been created.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.escrows)
}
