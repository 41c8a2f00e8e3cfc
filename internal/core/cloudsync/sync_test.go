package cloudsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chitfund-service/internal/core/workbook"
)

type fakeSyncer struct {
	downs int
	write []byte
	dst   *workbook.Source
}

func (f *fakeSyncer) Down(ctx context.Context) error {
	f.downs++
	if f.write == nil {
		return ErrRemoteMissing
	}
	return f.dst.Replace(f.write)
}

func (f *fakeSyncer) Up(ctx context.Context) error { return errors.New("not used") }

func TestBootstrapPrefersRemote(t *testing.T) {
	dir := t.TempDir()
	src := workbook.NewSource(filepath.Join(dir, "data.xlsx"))
	seed := filepath.Join(dir, "seed.xlsx")
	require.NoError(t, os.WriteFile(seed, []byte("seed"), 0644))

	s := &fakeSyncer{write: []byte("remote"), dst: src}
	Bootstrap(context.Background(), s, src, seed, zap.NewNop())

	data, err := src.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))
	assert.Equal(t, 1, s.downs)
}

func TestBootstrapFallsBackToSeed(t *testing.T) {
	dir := t.TempDir()
	src := workbook.NewSource(filepath.Join(dir, "tmp", "data.xlsx"))
	seed := filepath.Join(dir, "seed.xlsx")
	require.NoError(t, os.WriteFile(seed, []byte("seed"), 0644))

	Bootstrap(context.Background(), &fakeSyncer{dst: src}, src, seed, zap.NewNop())

	data, err := src.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "seed", string(data))
}

func TestBootstrapMissingSeed(t *testing.T) {
	src := workbook.NewSource(filepath.Join(t.TempDir(), "data.xlsx"))
	assert.NotPanics(t, func() {
		Bootstrap(context.Background(), Noop{}, src, filepath.Join(t.TempDir(), "none.xlsx"), zap.NewNop())
	})
	assert.False(t, src.Exists())

	assert.NoError(t, Noop{}.Up(context.Background()))
}

func TestSplitAndJoin(t *testing.T) {
	data := make([]byte, 2*ChunkSize+17)
	for i := range data {
		data[i] = byte(i % 251)
	}

	parts := split(data, ChunkSize)
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], ChunkSize)
	assert.Len(t, parts[2], 17)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), ChunkSize)
	}

	joined, err := join(parts, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, joined)

	_, err = join(parts[:2], len(data))
	assert.Error(t, err)

	assert.Len(t, split(data[:ChunkSize], ChunkSize), 1)
	assert.Empty(t, split(nil, ChunkSize))
}
