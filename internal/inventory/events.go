package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ChangeEvent is the unit of replication: one applied local mutation,
// serialized and relayed to the peer warehouse. The data block is the
// stable wire contract; seq/origin/event_id were added on top so the
// subscriber can drop replayed deliveries (seq 0 = unsequenced sender,
// applied unconditionally).
type ChangeEvent struct {
	Action     Action     `json:"action"`
	EventID    string     `json:"event_id,omitempty"`
	Seq        int64      `json:"seq,omitempty"`
	Origin     string     `json:"origin,omitempty"`
	ObservedAt time.Time  `json:"observed_at,omitempty"`
	Data       ChangeData `json:"data"`
}

type ChangeData struct {
	Barcode     string `json:"barcode"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

func DecodeChangeEvent(b []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if _, ok := ParseAction(string(ev.Action)); !ok {
		return ChangeEvent{}, fmt.Errorf("unknown action %q", ev.Action)
	}
	if ev.Data.Barcode == "" {
		return ChangeEvent{}, errors.New("event without barcode")
	}
	if ev.Action != ActionAdjust && ev.Data.Quantity <= 0 {
		return ChangeEvent{}, fmt.Errorf("invalid quantity %d for %s", ev.Data.Quantity, ev.Action)
	}
	return ev, nil
}

// UpdatesTopic is where a warehouse announces its own changes; the peer
// subscribes to it.
func UpdatesTopic(warehouse string) string { return warehouse + "/inventory/updates" }

// Partition key = barcode, so events for one item keep their order.
func PartitionKey(barcode string) []byte { return []byte(barcode) }
