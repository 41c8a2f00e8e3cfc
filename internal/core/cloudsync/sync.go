// Package cloudsync mirrors the ledger workbook to a remote copy so an ephemeral
// instance can start from, and publish to, shared state. There is no locking
// across instances: the last upload wins.
//
// The Firestore copy is split into ChunkSize pieces because a single document
// holds at most 1 MiB and the workbook grows by a sheet every cycle.
package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chitfund-service/internal/core/workbook"
)

// ErrRemoteMissing is returned by Down when no remote copy exists yet.
var ErrRemoteMissing = errors.New("no remote workbook")

// Syncer moves the whole workbook between the local file and the remote copy.
type Syncer interface {
	Down(ctx context.Context) error
	Up(ctx context.Context) error
}

// Noop is used when cloud sync is disabled.
type Noop struct{}

func (Noop) Down(ctx context.Context) error { return nil }
func (Noop) Up(ctx context.Context) error   { return nil }

// ChunkSize bounds the bytes stored per Firestore document. Firestore caps a
// document at 1 MiB, so the workbook is split across a "chunks" subcollection
// and the manifest document only records how many chunks make up the file.
const ChunkSize = 900 << 10

// manifest is the document named by the sync configuration. Data is only set by
// uploads that predate chunking and is read when Chunks is zero.
type manifest struct {
	Chunks    int       `firestore:"chunks"`
	Size      int       `firestore:"size"`
	Data      []byte    `firestore:"data,omitempty"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type chunk struct {
	Data []byte `firestore:"data"`
}

// FirestoreSyncer keeps the workbook bytes in a manifest document plus chunk
// documents below it.
type FirestoreSyncer struct {
	doc    *firestore.DocumentRef
	source *workbook.Source
}

func NewFirestoreSyncer(client *firestore.Client, collection, document string, source *workbook.Source) *FirestoreSyncer {
	return &FirestoreSyncer{doc: client.Collection(collection).Doc(document), source: source}
}

func (s *FirestoreSyncer) chunkRef(i int) *firestore.DocumentRef {
	return s.doc.Collection("chunks").Doc(fmt.Sprintf("%04d", i))
}

func (s *FirestoreSyncer) Down(ctx context.Context) error {
	snap, err := s.doc.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return ErrRemoteMissing
	}
	if err != nil {
		return fmt.Errorf("failed to fetch remote workbook: %w", err)
	}
	var m manifest
	if err := snap.DataTo(&m); err != nil {
		return fmt.Errorf("failed to decode remote workbook: %w", err)
	}

	data := m.Data
	if m.Chunks > 0 {
		parts := make([][]byte, m.Chunks)
		for i := range parts {
			cs, err := s.chunkRef(i).Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch workbook chunk %d: %w", i, err)
			}
			var c chunk
			if err := cs.DataTo(&c); err != nil {
				return fmt.Errorf("failed to decode workbook chunk %d: %w", i, err)
			}
			parts[i] = c.Data
		}
		if data, err = join(parts, m.Size); err != nil {
			return err
		}
	}
	if len(data) == 0 {
		return ErrRemoteMissing
	}
	return s.source.Replace(data)
}

// Up writes the chunks first and the manifest last, so a reader never sees a
// manifest pointing at chunks that were not written. Chunks left over from a
// larger earlier upload are ignored.
func (s *FirestoreSyncer) Up(ctx context.Context) error {
	data, err := s.source.Bytes()
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}
	parts := split(data, ChunkSize)
	for i, p := range parts {
		if _, err := s.chunkRef(i).Set(ctx, chunk{Data: p}); err != nil {
			return fmt.Errorf("failed to upload workbook chunk %d: %w", i, err)
		}
	}
	m := manifest{Chunks: len(parts), Size: len(data), UpdatedAt: time.Now().UTC()}
	if _, err := s.doc.Set(ctx, m); err != nil {
		return fmt.Errorf("failed to upload workbook: %w", err)
	}
	return nil
}

func split(data []byte, size int) [][]byte {
	var parts [][]byte
	for len(data) > size {
		parts = append(parts, data[:size])
		data = data[size:]
	}
	if len(data) > 0 {
		parts = append(parts, data)
	}
	return parts
}

func join(parts [][]byte, size int) ([]byte, error) {
	out := make([]byte, 0, size)
	for _, p := range parts {
		out = append(out, p...)
	}
	if len(out) != size {
		return nil, fmt.Errorf("remote workbook is %d bytes, manifest says %d", len(out), size)
	}
	return out, nil
}

// Bootstrap pulls the remote copy and falls back to the seed workbook when the
// local file is still missing. Failures are logged, never returned.
func Bootstrap(ctx context.Context, s Syncer, source *workbook.Source, seed string, logger *zap.Logger) {
	if err := s.Down(ctx); err != nil {
		logger.Warn("workbook download failed", zap.Error(err))
	}
	if source.Exists() || seed == "" {
		return
	}
	if err := source.CopyFrom(seed); err != nil {
		logger.Warn("could not copy seed workbook", zap.String("seed", seed), zap.Error(err))
		return
	}
	logger.Info("workbook seeded", zap.String("seed", seed), zap.String("path", source.Path()))
}
