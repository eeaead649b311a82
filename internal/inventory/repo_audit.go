package inventory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepo appends every received event in receipt order. No
// uniqueness: a replayed delivery gets its own row.
type AuditRepo struct{ DB *pgxpool.Pool }

func (r *AuditRepo) Append(ctx context.Context, ev ChangeEvent) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO audit_log(origin, barcode, product_name, quantity, action)
		VALUES ($1,$2,$3,$4,$5)`,
		ev.Origin, ev.Data.Barcode, ev.Data.ProductName, ev.Data.Quantity, string(ev.Action))
	return err
}
