package inventory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// memStore mirrors the pg repo semantics: implicit zero row, atomic
// check-then-write per key.
type memStore struct {
	mu   sync.Mutex
	recs map[string]int
}

func newMemStore() *memStore { return &memStore{recs: map[string]int{}} }

func storeKey(barcode, warehouseID string) string { return barcode + "|" + warehouseID }

func (m *memStore) Get(_ context.Context, barcode, warehouseID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Record{
		Barcode:     barcode,
		WarehouseID: warehouseID,
		Quantity:    m.recs[storeKey(barcode, warehouseID)],
	}, nil
}

func (m *memStore) Apply(_ context.Context, barcode, warehouseID string, action Action, qty int) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := storeKey(barcode, warehouseID)
	next := m.recs[k] + action.Delta(qty)
	if next < 0 {
		return Record{}, ErrInsufficientStock
	}
	m.recs[k] = next
	return Record{Barcode: barcode, WarehouseID: warehouseID, Quantity: next, UpdatedAt: time.Now()}, nil
}

func (m *memStore) seed(barcode, warehouseID string, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[storeKey(barcode, warehouseID)] = qty
}

func (m *memStore) quantity(barcode, warehouseID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recs[storeKey(barcode, warehouseID)]
}

type publishedMsg struct {
	Key   []byte
	Value []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []publishedMsg
}

func (p *fakePublisher) Publish(key, value []byte, _ ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, publishedMsg{Key: key, Value: value})
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

func (p *fakePublisher) last() publishedMsg {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.msgs[len(p.msgs)-1]
}

type fakeSeq struct{ n atomic.Int64 }

func (s *fakeSeq) Next(context.Context, string) (int64, error) { return s.n.Add(1), nil }

type memSeqs struct {
	mu   sync.Mutex
	last map[string]int64
}

func newMemSeqs() *memSeqs { return &memSeqs{last: map[string]int64{}} }

func (s *memSeqs) LastApplied(_ context.Context, origin string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[origin], nil
}

func (s *memSeqs) SetLastApplied(_ context.Context, origin string, seq int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[origin] = seq
	return nil
}

type memAudit struct {
	mu   sync.Mutex
	rows []ChangeEvent
}

func (a *memAudit) Append(_ context.Context, ev ChangeEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows = append(a.rows, ev)
	return nil
}

func (a *memAudit) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.rows)
}
