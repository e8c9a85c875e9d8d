package arraystore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/x448/float16"

	"github.com/hupe1980/veffgo/internal/hash"
)

// Compression selects the block compression of chunk payloads.
type Compression uint8

const (
	// CompressionNone stores payloads raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd (better ratio). This is the default.
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Chunk layout:
//
//	[0:4]   magic "VFCK"
//	[4]     format version
//	[5]     dtype
//	[6]     compression
//	[7]     reserved
//	[8:12]  rows
//	[12:16] raw payload length
//	[16:20] stored payload length (0 = stored raw)
//	[20:24] CRC32-C of the raw payload
//	[24:]   payload
const (
	chunkHeaderSize = 24
	chunkVersion    = 1
)

var chunkMagic = [4]byte{'V', 'F', 'C', 'K'}

// ErrCorruptChunk is returned when a chunk fails validation on read.
var ErrCorruptChunk = errors.New("arraystore: corrupt chunk")

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

type chunkHeader struct {
	dtype       DType
	compression Compression
	rows        uint32
	rawLen      uint32
	storedLen   uint32
	checksum    uint32
}

// encodeChunk serializes t into a self-describing chunk. Compressed output
// that does not shrink the payload below 90% is discarded.
func encodeChunk(t *Tensor, c Compression) ([]byte, error) {
	raw, err := encodePayload(t)
	if err != nil {
		return nil, err
	}
	if uint64(len(raw)) > math.MaxUint32 || uint64(t.Rows()) > math.MaxUint32 {
		return nil, fmt.Errorf("arraystore: chunk too large (%d bytes)", len(raw))
	}

	var packed []byte
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, err
		}
		packed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		packed = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("arraystore: unknown compression %d", c)
	}

	h := chunkHeader{
		dtype:       t.dtype,
		compression: c,
		rows:        uint32(t.Rows()),
		rawLen:      uint32(len(raw)),
		checksum:    hash.CRC32C(raw),
	}
	payload := raw
	if len(packed) > 0 && float64(len(packed)) <= float64(len(raw))*0.9 {
		h.storedLen = uint32(len(packed))
		payload = packed
	} else {
		h.compression = CompressionNone
	}

	out := make([]byte, chunkHeaderSize, chunkHeaderSize+len(payload))
	copy(out[0:4], chunkMagic[:])
	out[4] = chunkVersion
	out[5] = byte(h.dtype)
	out[6] = byte(h.compression)
	binary.LittleEndian.PutUint32(out[8:], h.rows)
	binary.LittleEndian.PutUint32(out[12:], h.rawLen)
	binary.LittleEndian.PutUint32(out[16:], h.storedLen)
	binary.LittleEndian.PutUint32(out[20:], h.checksum)
	return append(out, payload...), nil
}

// decodeChunk validates b and returns its tensor with the given trailing
// shape.
func decodeChunk(b []byte, trailing []int) (*Tensor, error) {
	if len(b) < chunkHeaderSize || [4]byte(b[0:4]) != chunkMagic {
		return nil, fmt.Errorf("%w: bad header", ErrCorruptChunk)
	}
	if b[4] != chunkVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptChunk, b[4])
	}
	h := chunkHeader{
		dtype:       DType(b[5]),
		compression: Compression(b[6]),
		rows:        binary.LittleEndian.Uint32(b[8:]),
		rawLen:      binary.LittleEndian.Uint32(b[12:]),
		storedLen:   binary.LittleEndian.Uint32(b[16:]),
		checksum:    binary.LittleEndian.Uint32(b[20:]),
	}
	payload := b[chunkHeaderSize:]

	var raw []byte
	if h.storedLen == 0 {
		raw = payload
	} else {
		if int(h.storedLen) != len(payload) {
			return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorruptChunk, len(payload), h.storedLen)
		}
		raw = make([]byte, h.rawLen)
		switch h.compression {
		case CompressionLZ4:
			n, err := lz4.UncompressBlock(payload, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCorruptChunk, err)
			}
			raw = raw[:n]
		case CompressionZSTD:
			dec := getZstdDecoder()
			out, err := dec.DecodeAll(payload, raw[:0])
			zstdDecoderPool.Put(dec)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCorruptChunk, err)
			}
			raw = out
		default:
			return nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptChunk, h.compression)
		}
	}
	if len(raw) != int(h.rawLen) || hash.CRC32C(raw) != h.checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptChunk)
	}
	return decodePayload(h.dtype, int(h.rows), trailing, raw)
}

func encodePayload(t *Tensor) ([]byte, error) {
	switch v := t.data.(type) {
	case []float64:
		out := make([]byte, 0, 8*len(v))
		for _, x := range v {
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(x))
		}
		return out, nil
	case []float32:
		out := make([]byte, 0, 4*len(v))
		for _, x := range v {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(x))
		}
		return out, nil
	case []float16.Float16:
		out := make([]byte, 0, 2*len(v))
		for _, x := range v {
			out = binary.LittleEndian.AppendUint16(out, x.Bits())
		}
		return out, nil
	case []int64:
		out := make([]byte, 0, 8*len(v))
		for _, x := range v {
			out = binary.LittleEndian.AppendUint64(out, uint64(x))
		}
		return out, nil
	case []int32:
		out := make([]byte, 0, 4*len(v))
		for _, x := range v {
			out = binary.LittleEndian.AppendUint32(out, uint32(x))
		}
		return out, nil
	case []uint8:
		return append([]byte(nil), v...), nil
	case []string:
		var out []byte
		for _, s := range v {
			out = binary.AppendUvarint(out, uint64(len(s)))
			out = append(out, s...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("arraystore: unsupported tensor data %T", t.data)
}

func decodePayload(dtype DType, rows int, trailing []int, raw []byte) (*Tensor, error) {
	shape := append([]int{rows}, trailing...)
	n := 1
	for _, d := range shape {
		n *= d
	}
	if size := dtype.Size(); size > 0 && len(raw) != n*size {
		return nil, fmt.Errorf("%w: %d bytes for %d %s elements", ErrCorruptChunk, len(raw), n, dtype)
	}

	switch dtype {
	case Float64:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
		}
		return FromSlice(out, shape...)
	case Float32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
		return FromSlice(out, shape...)
	case Float16:
		out := make([]float16.Float16, n)
		for i := range out {
			out[i] = float16.Frombits(binary.LittleEndian.Uint16(raw[2*i:]))
		}
		return FromSlice(out, shape...)
	case Int64:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(raw[8*i:]))
		}
		return FromSlice(out, shape...)
	case Int32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(raw[4*i:]))
		}
		return FromSlice(out, shape...)
	case Uint8:
		return FromSlice(append([]uint8(nil), raw...), shape...)
	case String:
		out := make([]string, 0, n)
		for len(raw) > 0 {
			l, k := binary.Uvarint(raw)
			if k <= 0 || uint64(len(raw)-k) < l {
				return nil, fmt.Errorf("%w: truncated string", ErrCorruptChunk)
			}
			out = append(out, string(raw[k:k+int(l)]))
			raw = raw[k+int(l):]
		}
		if len(out) != n {
			return nil, fmt.Errorf("%w: %d strings, want %d", ErrCorruptChunk, len(out), n)
		}
		return FromSlice(out, shape...)
	}
	return nil, fmt.Errorf("%w: unknown dtype %d", ErrCorruptChunk, uint8(dtype))
}
