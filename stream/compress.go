package stream

import (
	"bytes"
	"io"
	"strconv"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdErr     error
)

func initZstd() {
	zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

// Compress returns the zstd encoding of data.
func Compress(data []byte) ([]byte, error) {
	zstdOnce.Do(initZstd)
	if zstdErr != nil {
		return nil, errors.Wrap(zstdErr, "zstd init")
	}
	return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// Decompress decodes zstd data, refusing output larger than max bytes.
// Decoding stops at max+1 bytes of output whatever the frame declares.
func Decompress(data []byte, max int) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data),
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true))
	if err != nil {
		return nil, errors.Wrap(err, "zstd init")
	}
	defer dec.Close()

	out, err := io.ReadAll(io.LimitReader(dec, int64(max)+1))
	if err != nil {
		return nil, errors.Wrap(err, "zstd decode")
	}
	if len(out) > max {
		return nil, ErrPayloadTooLarge.New("more than "+strconv.Itoa(max), max)
	}
	return out, nil
}
