package inventory

import (
	"context"
	"errors"
	"log"

	kafkago "github.com/segmentio/kafka-go"
)

// AuditLog records every well-formed event the subscriber receives.
type AuditLog interface {
	Append(ctx context.Context, ev ChangeEvent) error
}

// SeqTracker remembers the last applied publish sequence per origin so
// replayed deliveries are dropped instead of double-counted.
type SeqTracker interface {
	LastApplied(ctx context.Context, origin string) (int64, error)
	SetLastApplied(ctx context.Context, origin string, seq int64) error
}

// Subscriber applies the peer warehouse's relayed changes to the local
// replica mirror. It runs on its own consumer loop, fully independent
// of the scan path.
type Subscriber struct {
	Replica Store
	Audit   AuditLog
	Seqs    SeqTracker
	Origin  string // the remote warehouse this subscription mirrors
}

// HandleUpdate is the consumer handler for the origin's updates topic.
// Returning nil commits the offset; malformed payloads are consumed and
// discarded so one bad message never stalls the stream.
func (s *Subscriber) HandleUpdate(ctx context.Context, m kafkago.Message) error {
	ev, err := DecodeChangeEvent(m.Value)
	if err != nil {
		log.Printf("discard malformed event from %s: %v", s.Origin, err)
		return nil
	}

	if ev.Seq > 0 && s.Seqs != nil {
		last, err := s.Seqs.LastApplied(ctx, s.Origin)
		if err != nil {
			return err
		}
		if ev.Seq <= last {
			log.Printf("skip replayed event seq=%d last=%d origin=%s", ev.Seq, last, s.Origin)
			return nil
		}
	}

	if _, err := s.Replica.Apply(ctx, ev.Data.Barcode, s.Origin, ev.Action, ev.Data.Quantity); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			// the mirror never saw the stock being sold (fresh replica);
			// keep the row at zero rather than go negative
			log.Printf("replica %s: %s %s would underflow, skipped", s.Origin, ev.Action, ev.Data.Barcode)
		} else {
			return err // storage trouble: leave the offset uncommitted
		}
	}

	if err := s.Audit.Append(ctx, ev); err != nil {
		return err
	}

	if ev.Seq > 0 && s.Seqs != nil {
		if err := s.Seqs.SetLastApplied(ctx, s.Origin, ev.Seq); err != nil {
			return err
		}
	}
	return nil
}
