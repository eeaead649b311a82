package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/andriwardana/warehouse-sync.git/internal/inventory"
	"github.com/go-chi/chi/v5"
)

// InventoryReader is the read side of a ledger, local or replica.
type InventoryReader interface {
	Get(ctx context.Context, barcode, warehouseID string) (inventory.Record, error)
	List(ctx context.Context, warehouseID string) ([]inventory.Record, error)
}

type ScanHandler struct {
	Gateway   *inventory.Gateway
	Local     InventoryReader
	Replica   InventoryReader
	Warehouse string
	Peer      string
}

type ScanRequest struct {
	Barcode  string `json:"barcode"`
	Action   string `json:"action,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

type ScanResponse struct {
	Status      string `json:"status"`
	Action      string `json:"action,omitempty"`
	BarcodeType string `json:"barcode_type,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (h *ScanHandler) Register(r *chi.Mux) {
	r.Post("/scan", h.scan)
	r.Get("/inventory", h.listLocal)
	r.Get("/inventory/{barcode}", h.getLocal)
	r.Get("/replica/{warehouse}", h.listReplica)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func scanError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ScanResponse{Status: "error", Error: msg})
}

func (h *ScanHandler) scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		scanError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Barcode == "" {
		scanError(w, http.StatusBadRequest, "invalid barcode provided")
		return
	}

	// a bare scan means one unit arriving on the shelf
	action := inventory.ActionRestock
	qty := 1
	if req.Action != "" {
		a, ok := inventory.ParseAction(req.Action)
		if !ok {
			scanError(w, http.StatusBadRequest, "unknown action")
			return
		}
		action = a
	}
	if req.Quantity != 0 {
		qty = req.Quantity
	}
	if action != inventory.ActionAdjust && qty <= 0 {
		scanError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Gateway.Handle(ctx, req.Barcode, action, qty)
	switch {
	case errors.Is(err, inventory.ErrUnknownBarcode):
		scanError(w, http.StatusNotFound, "unknown barcode")
		return
	case errors.Is(err, inventory.ErrInsufficientStock):
		scanError(w, http.StatusConflict, "insufficient stock")
		return
	case err != nil:
		scanError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ScanResponse{
		Status:      "success",
		Action:      string(res.Action),
		BarcodeType: res.BarcodeType,
		Barcode:     res.Record.Barcode,
		Quantity:    res.Record.Quantity,
	})
}

func (h *ScanHandler) listLocal(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Local, h.Warehouse)
}

func (h *ScanHandler) listReplica(w http.ResponseWriter, r *http.Request) {
	warehouse := chi.URLParam(r, "warehouse")
	if warehouse != h.Peer {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no replica for " + warehouse})
		return
	}
	h.list(w, r, h.Replica, warehouse)
}

func (h *ScanHandler) list(w http.ResponseWriter, r *http.Request, reader InventoryReader, warehouse string) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	recs, err := reader.List(ctx, warehouse)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []inventory.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *ScanHandler) getLocal(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")
	if barcode == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing barcode"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rec, err := h.Local.Get(ctx, inventory.NormalizeBarcode(barcode), h.Warehouse)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
