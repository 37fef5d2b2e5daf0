package db

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wardstats/wardstats/internal/model"
)

// ChannelSource implements pgx.CopyFromSource by reading records from a
// channel, tagging each with the load batch id.
type ChannelSource struct {
	ch      <-chan *model.Record
	batchID uuid.UUID
	current *model.Record
}

// NewChannelSource creates a CopyFromSource backed by a channel.
func NewChannelSource(ch <-chan *model.Record, batchID uuid.UUID) *ChannelSource {
	return &ChannelSource{ch: ch, batchID: batchID}
}

// Next advances to the next record. Returns false when the channel is closed.
func (s *ChannelSource) Next() bool {
	rec, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = rec
	return true
}

// Values returns the current record's values in model.CopyColumns order.
func (s *ChannelSource) Values() ([]any, error) {
	return s.current.CopyValues(s.batchID), nil
}

// Err always returns nil; the producer reports its own errors.
func (s *ChannelSource) Err() error {
	return nil
}

var _ pgx.CopyFromSource = (*ChannelSource)(nil)
