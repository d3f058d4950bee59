package ratio

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"
)

// Fingerprint hashes rows and markers into a stable cache key.
func Fingerprint(rows []LineItem, markers Markers) string {
	markers = markers.WithDefaults()
	h := sha256.New()
	var buf [8]byte
	writeString := func(s string) {
		binary.BigEndian.PutUint64(buf[:], uint64(len(s)))
		h.Write(buf[:])
		h.Write([]byte(s))
	}
	writeFloat := func(f float64) {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	writeString(markers.TotalAssets)
	writeString(markers.ShortTermAssets)
	writeString(markers.ShortTermLiabilities)
	for _, r := range rows {
		writeString(r.Label)
		writeFloat(r.Prior)
		writeFloat(r.Current)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Memo caches Process results by Fingerprint. It is safe for concurrent use.
// A cached table is returned as a copy so callers cannot alter the entry.
type Memo struct {
	mu      sync.Mutex
	entries map[string]Table
	order   []string
	limit   int
}

// NewMemo creates a memo holding at most limit tables (oldest evicted first).
func NewMemo(limit int) *Memo {
	if limit <= 0 {
		limit = 32
	}
	return &Memo{entries: make(map[string]Table), limit: limit}
}

// Process returns the cached table for rows, computing it on a miss.
// Validation failures are not cached.
func (m *Memo) Process(rows []LineItem, markers Markers) (Table, error) {
	if m == nil {
		return Process(rows, markers)
	}
	key := Fingerprint(rows, markers)

	m.mu.Lock()
	if t, ok := m.entries[key]; ok {
		m.mu.Unlock()
		return clone(t), nil
	}
	m.mu.Unlock()

	t, err := Process(rows, markers)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		m.entries[key] = clone(t)
		m.order = append(m.order, key)
		if len(m.order) > m.limit {
			delete(m.entries, m.order[0])
			m.order = m.order[1:]
		}
	}
	return t, nil
}

// Get returns the memoized table for a Fingerprint key.
func (m *Memo) Get(key string) (Table, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return clone(t), true
}

// Len returns the number of cached tables.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func clone(t Table) Table {
	out := make(Table, len(t))
	copy(out, t)
	return out
}
