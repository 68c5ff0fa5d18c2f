package memstore

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/batchatco/go-nc4meta/netcdf/store"
	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"
)

// Codec is the compression applied to a snapshot body.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecZstd
	CodecLZ4
)

// Snapshot layout:
//
//	magic[8] codec[1] reserved[3] rawLen[8] body[...] blake3[32]
//
// The checksum covers everything before it.
var magic = []byte("\x89NC4MEM\n")

const (
	headerSize = 20
	sumSize    = 32
)

var (
	encMode     cbor.EncMode
	decMode     cbor.DecMode
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("memstore: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("memstore: CBOR decoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("memstore: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("memstore: zstd decoder initialization failed: " + err.Error())
	}
}

func checksum(b []byte) []byte {
	h := blake3.New()
	h.Write(b)
	return h.Sum(nil)
}

func encodeSnapshot(c *container, codec Codec) ([]byte, error) {
	raw, err := encMode.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("memstore: encode: %w", err)
	}
	body, codec, err := compress(raw, codec)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, headerSize+len(body)+sumSize)
	out = append(out, magic...)
	out = append(out, byte(codec), 0, 0, 0)
	out = binary.LittleEndian.AppendUint64(out, uint64(len(raw)))
	out = append(out, body...)
	return append(out, checksum(out)...), nil
}

func decodeSnapshot(b []byte) (*container, error) {
	if len(b) < headerSize+sumSize || !bytes.Equal(b[:len(magic)], magic) {
		return nil, store.ErrBadContainer
	}
	payload, sum := b[:len(b)-sumSize], b[len(b)-sumSize:]
	if !bytes.Equal(checksum(payload), sum) {
		return nil, store.ErrChecksum
	}
	codec := Codec(payload[len(magic)])
	rawLen := binary.LittleEndian.Uint64(payload[12:headerSize])
	raw, err := decompress(payload[headerSize:], codec, int(rawLen))
	if err != nil {
		return nil, err
	}
	c := &container{}
	if err := decMode.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("memstore: decode: %w", err)
	}
	if c.Objects == nil || c.Objects[c.Root] == nil {
		return nil, store.ErrBadContainer
	}
	return c, nil
}

// compress falls back to CodecNone when lz4 finds the input incompressible.
func compress(raw []byte, codec Codec) ([]byte, Codec, error) {
	switch codec {
	case CodecNone:
		return raw, codec, nil
	case CodecZstd:
		return zstdEncoder.EncodeAll(raw, nil), codec, nil
	case CodecLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, dst, nil)
		if err != nil {
			return nil, codec, fmt.Errorf("memstore: lz4 compress: %w", err)
		}
		if n == 0 || n >= len(raw) {
			return raw, CodecNone, nil
		}
		return dst[:n], codec, nil
	}
	return nil, codec, store.ErrUnknownCodec
}

func decompress(body []byte, codec Codec, rawLen int) ([]byte, error) {
	switch codec {
	case CodecNone:
		return body, nil
	case CodecZstd:
		raw, err := zstdDecoder.DecodeAll(body, make([]byte, 0, rawLen))
		if err != nil {
			return nil, fmt.Errorf("memstore: zstd decompress: %w", err)
		}
		return raw, nil
	case CodecLZ4:
		raw := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(body, raw)
		if err != nil {
			return nil, fmt.Errorf("memstore: lz4 decompress: %w", err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("memstore: lz4 decompress: got %d bytes, expected %d", n, rawLen)
		}
		return raw, nil
	}
	return nil, store.ErrUnknownCodec
}
