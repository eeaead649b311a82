package inventory

import "time"

type Product struct {
	Barcode string
	Name    string
}

// Record is one (barcode, warehouse) quantity row. Quantity is never
// negative; a row that was never scanned reads back as quantity 0.
type Record struct {
	Barcode     string
	WarehouseID string
	Quantity    int
	UpdatedAt   time.Time
}
