package history

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/gekko3d/sculpt/core"
	"github.com/klauspost/compress/zstd"
)

var ErrCorrupt = errors.New("history snapshot corrupt")

const recordSize = 17

// Snapshot is an immutable copy of a field's persisted voxels, zstd compressed with
// an xxhash checksum of the uncompressed payload.
type Snapshot struct {
	payload []byte
	sum     uint64
	count   int
}

func (s Snapshot) Len() int         { return s.count }
func (s Snapshot) Checksum() uint64 { return s.sum }
func (s Snapshot) Size() int        { return len(s.payload) }

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func codec() (*zstd.Encoder, *zstd.Decoder, error) {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
	return encoder, decoder, codecErr
}

// Capture snapshots the field's persisted projection.
func Capture(field *core.Field) (Snapshot, error) {
	return Encode(field.ToPersisted())
}

func Encode(ps []core.Persisted) (Snapshot, error) {
	enc, _, err := codec()
	if err != nil {
		return Snapshot{}, fmt.Errorf("zstd init: %w", err)
	}

	raw := make([]byte, 4+len(ps)*recordSize)
	binary.LittleEndian.PutUint32(raw, uint32(len(ps)))
	off := 4
	for _, p := range ps {
		binary.LittleEndian.PutUint32(raw[off:], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(raw[off+4:], math.Float32bits(p.Y))
		binary.LittleEndian.PutUint32(raw[off+8:], math.Float32bits(p.Z))
		binary.LittleEndian.PutUint32(raw[off+12:], uint32(p.Color))
		raw[off+16] = byte(p.Material)
		off += recordSize
	}

	return Snapshot{
		payload: enc.EncodeAll(raw, nil),
		sum:     xxhash.Sum64(raw),
		count:   len(ps),
	}, nil
}

// Restore decodes the snapshot, verifying its checksum.
func (s Snapshot) Restore() ([]core.Persisted, error) {
	_, dec, err := codec()
	if err != nil {
		return nil, fmt.Errorf("zstd init: %w", err)
	}
	raw, err := dec.DecodeAll(s.payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if xxhash.Sum64(raw) != s.sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	r := bytes.NewReader(raw)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if int(n) != s.count || len(raw) != 4+int(n)*recordSize {
		return nil, fmt.Errorf("%w: expected %d voxels", ErrCorrupt, s.count)
	}

	out := make([]core.Persisted, n)
	off := 4
	for i := range out {
		out[i] = core.Persisted{
			X:        math.Float32frombits(binary.LittleEndian.Uint32(raw[off:])),
			Y:        math.Float32frombits(binary.LittleEndian.Uint32(raw[off+4:])),
			Z:        math.Float32frombits(binary.LittleEndian.Uint32(raw[off+8:])),
			Color:    core.Color(binary.LittleEndian.Uint32(raw[off+12:])),
			Material: core.Material(raw[off+16]),
		}
		off += recordSize
	}
	return out, nil
}
