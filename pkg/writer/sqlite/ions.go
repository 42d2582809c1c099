package sqlite

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// Each ion is stored as terminus, complementary flag, number and three
// little-endian float64 values.
const ionRecordSize = 1 + 1 + 4 + 3*8

var (
	ionEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	ionDecoder, _ = zstd.NewReader(nil)
)

// EncodeIons packs matched ions into a zstd-compressed blob. An empty ion
// list encodes as nil.
func EncodeIons(ions []core.MatchedIon) ([]byte, error) {
	if len(ions) == 0 {
		return nil, nil
	}
	buf := make([]byte, len(ions)*ionRecordSize)
	for i, ion := range ions {
		rec := buf[i*ionRecordSize:]
		rec[0] = byte(ion.Terminus)
		if ion.Complementary {
			rec[1] = 1
		}
		binary.LittleEndian.PutUint32(rec[2:], uint32(ion.Number))
		binary.LittleEndian.PutUint64(rec[6:], math.Float64bits(ion.TheoreticalMass))
		binary.LittleEndian.PutUint64(rec[14:], math.Float64bits(ion.ObservedMass))
		binary.LittleEndian.PutUint64(rec[22:], math.Float64bits(ion.Intensity))
	}
	return ionEncoder.EncodeAll(buf, nil), nil
}

// DecodeIons reverses EncodeIons.
func DecodeIons(blob []byte) ([]core.MatchedIon, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	buf, err := ionDecoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress ions: %w", err)
	}
	if len(buf)%ionRecordSize != 0 {
		return nil, fmt.Errorf("ion blob has %d bytes, not a multiple of %d", len(buf), ionRecordSize)
	}
	ions := make([]core.MatchedIon, len(buf)/ionRecordSize)
	for i := range ions {
		rec := buf[i*ionRecordSize:]
		ions[i] = core.MatchedIon{
			Terminus:        core.Terminus(rec[0]),
			Complementary:   rec[1] == 1,
			Number:          int(binary.LittleEndian.Uint32(rec[2:])),
			TheoreticalMass: math.Float64frombits(binary.LittleEndian.Uint64(rec[6:])),
			ObservedMass:    math.Float64frombits(binary.LittleEndian.Uint64(rec[14:])),
			Intensity:       math.Float64frombits(binary.LittleEndian.Uint64(rec[22:])),
		}
	}
	return ions, nil
}
