package inventory

import (
	"context"
	"log"
	"time"

	kafkax "github.com/andriwardana/warehouse-sync.git/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher hands a serialized event to the relay. Matches the async
// kafka producer: the call never blocks the scan path.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// SeqSource issues the monotonically increasing publish sequence per
// origin warehouse.
type SeqSource interface {
	Next(ctx context.Context, origin string) (int64, error)
}

type ScanResult struct {
	Action      Action
	BarcodeType string
	Record      Record
}

// Gateway is the scan ingestion path: resolve -> apply locally ->
// publish. All handles are injected so the camera HTTP adapter and the
// hardware scanner share one instance.
type Gateway struct {
	Catalog   Catalog
	Store     Store
	Publisher Publisher
	Seq       SeqSource
	Warehouse string
}

// Handle applies one scan. The publish leg is fire-and-forget: once the
// local write commits the scan has succeeded, and a relay outage must
// not fail or roll back the response.
func (g *Gateway) Handle(ctx context.Context, barcode string, action Action, qty int) (ScanResult, error) {
	p, err := g.Catalog.Resolve(ctx, barcode)
	if err != nil {
		return ScanResult{}, err
	}

	rec, err := g.Store.Apply(ctx, p.Barcode, g.Warehouse, action, qty)
	if err != nil {
		return ScanResult{}, err
	}

	g.publish(ctx, p, action, qty)

	return ScanResult{Action: action, BarcodeType: BarcodeType(barcode), Record: rec}, nil
}

func (g *Gateway) publish(ctx context.Context, p Product, action Action, qty int) {
	var seq int64
	if g.Seq != nil {
		s, err := g.Seq.Next(ctx, g.Warehouse)
		if err != nil {
			// unsequenced events are still applied by the peer
			log.Printf("seq for %s: %v, publishing unsequenced", g.Warehouse, err)
		} else {
			seq = s
		}
	}

	ev := ChangeEvent{
		Action:     action,
		EventID:    uuid.NewString(),
		Seq:        seq,
		Origin:     g.Warehouse,
		ObservedAt: time.Now().UTC(),
		Data:       ChangeData{Barcode: p.Barcode, ProductName: p.Name, Quantity: qty},
	}
	g.Publisher.Publish(PartitionKey(p.Barcode), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-origin", Value: []byte(g.Warehouse)},
		kafkago.Header{Key: "x-action", Value: []byte(action)},
	)
}
