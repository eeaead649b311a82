package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// Store is the quantity ledger contract shared by the authoritative
// store and the replica mirror.
type Store interface {
	Get(ctx context.Context, barcode, warehouseID string) (Record, error)
	Apply(ctx context.Context, barcode, warehouseID string, action Action, qty int) (Record, error)
}

// Repo is the pgx-backed ledger. Table is "inventory" for the
// authoritative store and "replica_inventory" for the mirror of the
// peer warehouse; both carry the same columns.
type Repo struct {
	DB    *pgxpool.Pool
	Table string
}

func NewRepo(db *pgxpool.Pool) *Repo        { return &Repo{DB: db, Table: "inventory"} }
func NewReplicaRepo(db *pgxpool.Pool) *Repo { return &Repo{DB: db, Table: "replica_inventory"} }

// Get returns a zero-quantity record when the row is absent, not an error.
func (r *Repo) Get(ctx context.Context, barcode, warehouseID string) (Record, error) {
	rec := Record{Barcode: barcode, WarehouseID: warehouseID}
	err := r.DB.QueryRow(ctx,
		fmt.Sprintf(`SELECT quantity, updated_at FROM %s WHERE barcode=$1 AND warehouse_id=$2`, r.Table),
		barcode, warehouseID).Scan(&rec.Quantity, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Apply: insert the row at 0 if missing, lock it (FOR UPDATE), check,
// write — all in one tx. Concurrent applies on the same key serialize
// on the row lock; a rejected decrement commits nothing.
func (r *Repo) Apply(ctx context.Context, barcode, warehouseID string, action Action, qty int) (Record, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s(barcode, warehouse_id, quantity)
		VALUES ($1,$2,0)
		ON CONFLICT (barcode, warehouse_id) DO NOTHING`, r.Table),
		barcode, warehouseID); err != nil {
		return Record{}, err
	}

	var current int
	if err := tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT quantity FROM %s WHERE barcode=$1 AND warehouse_id=$2 FOR UPDATE`, r.Table),
		barcode, warehouseID).Scan(&current); err != nil {
		return Record{}, err
	}

	next := current + action.Delta(qty)
	if next < 0 {
		return Record{}, ErrInsufficientStock
	}

	rec := Record{Barcode: barcode, WarehouseID: warehouseID, Quantity: next}
	if err := tx.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s SET quantity=$3, updated_at=now()
		WHERE barcode=$1 AND warehouse_id=$2
		RETURNING updated_at`, r.Table),
		barcode, warehouseID, next).Scan(&rec.UpdatedAt); err != nil {
		return Record{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *Repo) List(ctx context.Context, warehouseID string) ([]Record, error) {
	rows, err := r.DB.Query(ctx,
		fmt.Sprintf(`SELECT barcode, warehouse_id, quantity, updated_at FROM %s
		             WHERE warehouse_id=$1 ORDER BY barcode`, r.Table),
		warehouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Barcode, &rec.WarehouseID, &rec.Quantity, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CatalogRepo resolves barcodes from the products table.
type CatalogRepo struct{ DB *pgxpool.Pool }

func (r *CatalogRepo) Resolve(ctx context.Context, barcode string) (Product, error) {
	code := NormalizeBarcode(barcode)
	var p Product
	err := r.DB.QueryRow(ctx, `SELECT barcode, name FROM products WHERE barcode=$1`, code).
		Scan(&p.Barcode, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrUnknownBarcode
	}
	if err != nil {
		return Product{}, fmt.Errorf("resolve %s: %w", code, err)
	}
	return p, nil
}
