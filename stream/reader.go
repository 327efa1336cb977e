package stream

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
)

const (
	headerOpen  = "@frame{"
	headerClose = '}'

	// maxHeaderLine bounds a header line, newline included.
	maxHeaderLine = 4096
)

// Reader decodes frames from an io.Reader. It is not safe for concurrent use.
type Reader struct {
	in         *bufio.Reader
	offset     int64
	maxPayload int
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxPayload sets the payload size limit. Values below 1 are ignored.
func WithMaxPayload(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.maxPayload = n
		}
	}
}

// NewReader returns a Reader over in.
func NewReader(in io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{
		in:         bufio.NewReader(in),
		maxPayload: MaxPayloadSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Offset returns the stream offset of the next frame.
func (r *Reader) Offset() int64 { return r.offset }

// Next returns the next frame. It returns io.EOF only between frames; a
// stream cut inside a frame yields io.ErrUnexpectedEOF.
func (r *Reader) Next() (*Frame, error) {
	start := r.offset

	line, err := r.readHeaderLine()
	if err != nil {
		return nil, err
	}
	f, size, err := parseHeader(line, start)
	if err != nil {
		return nil, err
	}
	if size > r.maxPayload {
		return nil, ErrPayloadTooLarge.New(size, r.maxPayload)
	}

	wire := make([]byte, size+1)
	if _, err := io.ReadFull(r.in, wire); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	r.offset += int64(len(wire))
	if wire[size] != '\n' {
		return nil, &HeaderError{Offset: start, Reason: "payload not followed by newline"}
	}
	wire = wire[:size]

	if f.CRC != nil {
		if got := ComputeCRC(wire); got != *f.CRC {
			return nil, &CRCMismatchError{Offset: start, Expected: *f.CRC, Got: got}
		}
	}
	if f.Compressed {
		if wire, err = Decompress(wire, r.maxPayload); err != nil {
			return nil, err
		}
	}
	if size > 0 {
		f.Payload = wire
	}
	return f, nil
}

// ReadAll reads frames until the end of the stream.
func (r *Reader) ReadAll() ([]*Frame, error) {
	var frames []*Frame
	for {
		f, err := r.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}

// readHeaderLine returns the next non-blank line without its newline.
func (r *Reader) readHeaderLine() (string, error) {
	for {
		line, err := r.in.ReadSlice('\n')
		if err == bufio.ErrBufferFull || len(line) > maxHeaderLine {
			return "", &HeaderError{Offset: r.offset, Reason: "header line too long"}
		}
		r.offset += int64(len(line))
		if err == io.EOF {
			if len(bytes.TrimSpace(line)) == 0 {
				return "", io.EOF
			}
			return "", io.ErrUnexpectedEOF
		}
		if err != nil {
			return "", err
		}
		if s := strings.TrimSpace(string(line)); s != "" {
			return s, nil
		}
	}
}

// headerFields maps a header key to its parser. Unknown keys are ignored.
var headerFields = map[string]func(f *Frame, size *int, v string) bool{
	"v": func(_ *Frame, _ *int, v string) bool {
		return v == strconv.Itoa(Version)
	},
	"sid": func(f *Frame, _ *int, v string) (ok bool) {
		f.SID, ok = parseUint(v)
		return ok
	},
	"seq": func(f *Frame, _ *int, v string) (ok bool) {
		f.Seq, ok = parseUint(v)
		return ok
	},
	"kind": func(f *Frame, _ *int, v string) (ok bool) {
		f.Kind, ok = ParseKind(v)
		return ok
	},
	"len": func(_ *Frame, size *int, v string) bool {
		n, err := strconv.Atoi(v)
		*size = n
		return err == nil && n >= 0
	},
	"crc": func(f *Frame, _ *int, v string) bool {
		crc, ok := parseCRC(v)
		f.CRC = &crc
		return ok
	},
	"base": func(f *Frame, _ *int, v string) bool {
		d, ok := ParseDigest(v)
		f.Base = &d
		return ok
	},
	"comp": func(f *Frame, _ *int, v string) bool {
		f.Compressed = v == "zstd"
		return f.Compressed
	},
	"final": func(f *Frame, _ *int, v string) (ok bool) {
		f.Final, ok = parseBool(v)
		return ok
	},
}

var requiredFields = []string{"v", "sid", "seq", "kind", "len"}

func parseHeader(line string, offset int64) (*Frame, int, error) {
	body, ok := strings.CutPrefix(line, headerOpen)
	if !ok || !strings.HasSuffix(body, string(headerClose)) {
		return nil, 0, &HeaderError{Offset: offset, Reason: "expected @frame{...}"}
	}
	body = body[:len(body)-1]

	f := &Frame{}
	size := 0
	seen := make(map[string]bool, len(requiredFields))
	for _, field := range strings.Fields(body) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return nil, 0, &HeaderError{Offset: offset, Field: field, Reason: "missing '='"}
		}
		if seen[key] {
			return nil, 0, &HeaderError{Offset: offset, Field: key, Reason: "duplicate field"}
		}
		seen[key] = true

		parse, known := headerFields[key]
		if !known {
			continue
		}
		if !parse(f, &size, value) {
			return nil, 0, &HeaderError{Offset: offset, Field: key, Reason: "bad value " + strconv.Quote(value)}
		}
	}
	for _, key := range requiredFields {
		if !seen[key] {
			return nil, 0, &HeaderError{Offset: offset, Field: key, Reason: "missing"}
		}
	}
	return f, size, nil
}

func parseUint(s string) (uint64, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	return n, err == nil
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}
