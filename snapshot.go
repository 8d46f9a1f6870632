package curvego

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// snapshot is the on-wire form of an engine: the indexed records plus the
// configuration needed to rebuild. Derived state (features, tree, normalized
// series) is never persisted; loading re-runs the normal build so the index
// is always reconstructed from scratch.
type snapshot struct {
	Version        int
	SequenceLength int
	ShapePoints    int
	FeatureScale   float64
	Records        []Record
}

const snapshotVersion = 1

// SaveSnapshot writes the engine's corpus and configuration to w as a
// zstd-compressed gob stream.
func (e *Engine) SaveSnapshot(w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("curvego: create snapshot writer: %w", err)
	}

	records := make([]Record, len(e.entries))
	for i, ent := range e.entries {
		records[i] = ent.rec
	}

	snap := snapshot{
		Version:        snapshotVersion,
		SequenceLength: e.opts.sequenceLength,
		ShapePoints:    e.opts.shapePoints,
		FeatureScale:   e.opts.featureScale,
		Records:        records,
	}

	if err := gob.NewEncoder(zw).Encode(snap); err != nil {
		zw.Close()
		return fmt.Errorf("curvego: encode snapshot: %w", err)
	}
	return zw.Close()
}

// LoadSnapshot reads a snapshot from r and builds a fresh engine from it.
// Additional options are applied after the snapshot's configuration, so a
// caller can attach a logger, metrics, or a resource controller on load.
func LoadSnapshot(ctx context.Context, r io.Reader, optFns ...Option) (*Engine, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("curvego: open snapshot reader: %w", err)
	}
	defer zr.Close()

	var snap snapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("curvego: decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("curvego: unsupported snapshot version %d", snap.Version)
	}

	opts := make([]Option, 0, len(optFns)+3)
	opts = append(opts,
		WithSequenceLength(snap.SequenceLength),
		WithShapePoints(snap.ShapePoints),
		WithFeatureScale(snap.FeatureScale),
	)
	opts = append(opts, optFns...)

	return New(ctx, snap.Records, opts...)
}
