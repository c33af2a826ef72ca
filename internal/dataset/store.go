package dataset

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Store owns the current dataset. Writers replace the dataset pointer under
// the write lock; readers take a Snapshot and never observe a partial update.
type Store struct {
	mu      sync.RWMutex
	ds      *Dataset
	version uint64
}

func NewStore() *Store { return &Store{} }

// Replace installs a freshly imported dataset.
func (s *Store) Replace(ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	s.version++
}

// Snapshot returns the current dataset, or false when nothing is loaded.
// The returned value must be treated as read-only.
func (s *Store) Snapshot() (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds, s.ds != nil
}

// Recompute derives a new active view from the full row set and installs it.
// fn runs under the write lock.
func (s *Store) Recompute(fn func(rows [][]Value) [][]Value) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ds == nil {
		return false
	}
	s.ds = s.ds.WithActive(fn(s.ds.Rows))
	s.version++
	return true
}

// Version increments on every Replace and Recompute.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Fingerprint hashes headers, all rows and the rows of the active view, so
// two filters selecting different rows of equal count hash differently.
func Fingerprint(ds *Dataset) uint64 {
	if ds == nil {
		return 0
	}
	h := xxhash.New()
	var buf [8]byte
	for _, name := range ds.Headers {
		_, _ = h.WriteString(name)
		_, _ = h.Write([]byte{0})
	}
	hashRows(h, ds.Rows)
	_, _ = h.Write([]byte{0x1d})
	binary.LittleEndian.PutUint64(buf[:], uint64(len(ds.Active)))
	_, _ = h.Write(buf[:])
	hashRows(h, ds.Active)
	return h.Sum64()
}

func hashRows(h *xxhash.Digest, rows [][]Value) {
	var buf [8]byte
	for _, row := range rows {
		for _, v := range row {
			_, _ = h.Write([]byte{byte(v.kind)})
			switch v.kind {
			case ValueString:
				_, _ = h.WriteString(v.s)
			case ValueNumber:
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.f))
				_, _ = h.Write(buf[:])
			}
			_, _ = h.Write([]byte{0x1f})
		}
		_, _ = h.Write([]byte{0x1e})
	}
}
