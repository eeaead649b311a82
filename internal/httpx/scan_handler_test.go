package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/andriwardana/warehouse-sync.git/internal/inventory"
	kafkago "github.com/segmentio/kafka-go"
)

type memLedger struct {
	mu   sync.Mutex
	recs map[string]int // barcode|warehouse -> qty
}

func newMemLedger() *memLedger { return &memLedger{recs: map[string]int{}} }

func (m *memLedger) key(b, w string) string { return b + "|" + w }

func (m *memLedger) Get(_ context.Context, barcode, warehouseID string) (inventory.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return inventory.Record{Barcode: barcode, WarehouseID: warehouseID, Quantity: m.recs[m.key(barcode, warehouseID)]}, nil
}

func (m *memLedger) Apply(_ context.Context, barcode, warehouseID string, action inventory.Action, qty int) (inventory.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(barcode, warehouseID)
	next := m.recs[k] + action.Delta(qty)
	if next < 0 {
		return inventory.Record{}, inventory.ErrInsufficientStock
	}
	m.recs[k] = next
	return inventory.Record{Barcode: barcode, WarehouseID: warehouseID, Quantity: next}, nil
}

func (m *memLedger) List(_ context.Context, warehouseID string) ([]inventory.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []inventory.Record
	for k, q := range m.recs {
		parts := strings.SplitN(k, "|", 2)
		if parts[1] != warehouseID {
			continue
		}
		out = append(out, inventory.Record{Barcode: parts[0], WarehouseID: warehouseID, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Barcode < out[j].Barcode })
	return out, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(_, _ []byte, _ ...kafkago.Header) {}

func newTestHandler() (*ScanHandler, *memLedger, *memLedger) {
	local := newMemLedger()
	replica := newMemLedger()
	gw := &inventory.Gateway{
		Catalog:   inventory.DefaultMapping,
		Store:     local,
		Publisher: nopPublisher{},
		Warehouse: "warehouse1",
	}
	h := &ScanHandler{
		Gateway:   gw,
		Local:     local,
		Replica:   replica,
		Warehouse: "warehouse1",
		Peer:      "warehouse2",
	}
	return h, local, replica
}

func doRequest(h *ScanHandler, method, path, body string) *httptest.ResponseRecorder {
	router := NewRouter()
	h.Register(router)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestScan_DefaultsToSingleRestock(t *testing.T) {
	h, local, _ := newTestHandler()

	rec := doRequest(h, http.MethodPost, "/scan", `{"barcode":"012345678905"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" || resp.Action != "RESTOCK" || resp.Quantity != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.BarcodeType != "UPC-A" {
		t.Errorf("barcode_type = %s", resp.BarcodeType)
	}
	if got, _ := local.Get(context.Background(), "012345678905", "warehouse1"); got.Quantity != 1 {
		t.Errorf("stored quantity = %d", got.Quantity)
	}
}

func TestScan_ExplicitSale(t *testing.T) {
	h, local, _ := newTestHandler()
	_, _ = local.Apply(context.Background(), "012345678905", "warehouse1", inventory.ActionRestock, 10)

	rec := doRequest(h, http.MethodPost, "/scan", `{"barcode":"012345678905","action":"SALE","quantity":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp ScanResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "success" || resp.Action != "SALE" || resp.Quantity != 9 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestScan_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		code int
	}{
		{"invalid json", `{"barcode":`, http.StatusBadRequest},
		{"missing barcode", `{}`, http.StatusBadRequest},
		{"unknown action", `{"barcode":"012345678905","action":"YEET"}`, http.StatusBadRequest},
		{"negative sale", `{"barcode":"012345678905","action":"SALE","quantity":-3}`, http.StatusBadRequest},
		{"unknown barcode", `{"barcode":"999999999999"}`, http.StatusNotFound},
		{"oversell", `{"barcode":"012345678905","action":"SALE","quantity":5}`, http.StatusConflict},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h, _, _ := newTestHandler()
			rec := doRequest(h, http.MethodPost, "/scan", c.body)
			if rec.Code != c.code {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, c.code, rec.Body)
			}
			var resp ScanResponse
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp.Status != "error" || resp.Error == "" {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

func TestListInventory(t *testing.T) {
	h, local, _ := newTestHandler()
	_, _ = local.Apply(context.Background(), "110650", "warehouse1", inventory.ActionRestock, 4)
	_, _ = local.Apply(context.Background(), "012345678905", "warehouse1", inventory.ActionRestock, 2)

	rec := doRequest(h, http.MethodGet, "/inventory", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var recs []inventory.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 2 || recs[0].Barcode != "012345678905" || recs[1].Quantity != 4 {
		t.Errorf("recs = %+v", recs)
	}
}

func TestGetInventory_NormalizesBarcode(t *testing.T) {
	h, local, _ := newTestHandler()
	_, _ = local.Apply(context.Background(), "110650", "warehouse1", inventory.ActionRestock, 4)

	rec := doRequest(h, http.MethodGet, "/inventory/110650-2311164", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got inventory.Record
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Barcode != "110650" || got.Quantity != 4 {
		t.Errorf("record = %+v", got)
	}
}

func TestListReplica_OnlyPeer(t *testing.T) {
	h, _, replica := newTestHandler()
	_, _ = replica.Apply(context.Background(), "110650", "warehouse2", inventory.ActionRestock, 7)

	rec := doRequest(h, http.MethodGet, "/replica/warehouse2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var recs []inventory.Record
	_ = json.Unmarshal(rec.Body.Bytes(), &recs)
	if len(recs) != 1 || recs[0].Quantity != 7 {
		t.Errorf("recs = %+v", recs)
	}

	if rec := doRequest(h, http.MethodGet, "/replica/warehouse9", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown replica status = %d, want 404", rec.Code)
	}
}
