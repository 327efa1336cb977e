package stream

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func roundTrip(t *testing.T, opts []WriterOption, frames ...*Frame) []*Frame {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf, opts...)
	for _, f := range frames {
		if err := w.WriteFrame(f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	got, err := NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(frames) {
		t.Fatalf("got %d frames, want %d", len(got), len(frames))
	}
	return got
}

func TestWriter_Header(t *testing.T) {
	base := uint64(0xab)
	tests := []struct {
		name  string
		opts  []WriterOption
		frame *Frame
		want  string
	}{
		{
			name:  "minimal",
			frame: &Frame{SID: 3, Kind: KindSymtab, Payload: []byte("$glyph_symbol_table{}")},
			want:  "@frame{v=1 sid=3 seq=0 kind=symtab len=21}\n$glyph_symbol_table{}\n",
		},
		{
			name:  "final",
			frame: &Frame{SID: 1, Seq: 42, Kind: KindSymbols, Final: true},
			want:  "@frame{v=1 sid=1 seq=42 kind=symbols len=0 final=true}\n\n",
		},
		{
			name:  "base",
			frame: &Frame{Seq: 1, Kind: KindSymbols, Payload: []byte{10}, Base: &base},
			want:  "@frame{v=1 sid=0 seq=1 kind=symbols len=1 base=xxh64:00000000000000ab}\n\n\n",
		},
		{
			name:  "crc",
			opts:  []WriterOption{WithCRC()},
			frame: &Frame{Kind: KindErr, Payload: []byte("boom")},
			want:  "@frame{v=1 sid=0 seq=0 kind=err len=4 crc=" + formatCRC(ComputeCRC([]byte("boom"))) + "}\nboom\n",
		},
		{
			name:  "crc skipped for empty payload",
			opts:  []WriterOption{WithCRC()},
			frame: &Frame{Kind: KindSymbols, Final: true},
			want:  "@frame{v=1 sid=0 seq=0 kind=symbols len=0 final=true}\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewWriter(&buf, tt.opts...).WriteFrame(tt.frame); err != nil {
				t.Fatalf("WriteFrame: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	base := uint64(0x0123456789abcdef)
	decl := []byte(strings.Repeat("$glyph_symbol_table{symbols=[alpha beta]}", 20))
	ids := EncodeSymbolIDs([]uint64{10, 11, 300, 1})

	for _, tt := range []struct {
		name string
		opts []WriterOption
	}{
		{"plain", nil},
		{"crc", []WriterOption{WithCRC()}},
		{"zstd", []WriterOption{WithCompression()}},
		{"crc+zstd", []WriterOption{WithCRC(), WithCompression()}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.opts,
				&Frame{SID: 9, Seq: 0, Kind: KindSymtab, Payload: decl},
				&Frame{SID: 9, Seq: 1, Kind: KindSymbols, Payload: ids, Base: &base},
				&Frame{SID: 9, Seq: 2, Kind: KindSymbols, Final: true},
			)
			if !bytes.Equal(got[0].Payload, decl) {
				t.Errorf("symtab payload = %q", got[0].Payload)
			}
			if !bytes.Equal(got[1].Payload, ids) {
				t.Errorf("symbols payload = %v", got[1].Payload)
			}
			if !got[1].HasBase() || *got[1].Base != base {
				t.Errorf("base = %v", got[1].Base)
			}
			if got[2].Payload != nil || !got[2].Final {
				t.Errorf("final frame = %+v", got[2])
			}
			for _, f := range got {
				if f.SID != 9 {
					t.Errorf("sid = %d", f.SID)
				}
			}
		})
	}
}

func TestReader_SkipsBlankLines(t *testing.T) {
	in := "\n\n@frame{v=1 sid=0 seq=0 kind=symbols len=1}\n\x0a\n  \n"
	frames, err := NewReader(strings.NewReader(in)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 || !bytes.Equal(frames[0].Payload, []byte{10}) {
		t.Fatalf("frames = %+v", frames)
	}
}

func TestReader_UnknownFieldsIgnored(t *testing.T) {
	in := "@frame{v=1 sid=0 seq=0 kind=2 len=2 trace=abc}\nhi\n"
	f, err := NewReader(strings.NewReader(in)).Next()
	if err != nil {
		t.Fatal(err)
	}
	if f.Kind != KindErr || string(f.Payload) != "hi" {
		t.Errorf("frame = %+v", f)
	}
}

func TestReader_HeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		field string
	}{
		{"not a frame", "hello\n", ""},
		{"no brace", "@frame{v=1 sid=0 seq=0 kind=symtab len=0\n\n", ""},
		{"missing len", "@frame{v=1 sid=0 seq=0 kind=symtab}\n\n", "len"},
		{"missing v", "@frame{sid=0 seq=0 kind=symtab len=0}\n\n", "v"},
		{"bad version", "@frame{v=2 sid=0 seq=0 kind=symtab len=0}\n\n", "v"},
		{"bad kind", "@frame{v=1 sid=0 seq=0 kind=doc len=0}\n\n", "kind"},
		{"negative len", "@frame{v=1 sid=0 seq=0 kind=symtab len=-1}\n\n", "len"},
		{"bad crc", "@frame{v=1 sid=0 seq=0 kind=symtab len=0 crc=xyz}\n\n", "crc"},
		{"bad base", "@frame{v=1 sid=0 seq=0 kind=symtab len=0 base=sha256:00}\n\n", "base"},
		{"bad comp", "@frame{v=1 sid=0 seq=0 kind=symtab len=0 comp=gzip}\n\n", "comp"},
		{"duplicate", "@frame{v=1 sid=0 sid=1 seq=0 kind=symtab len=0}\n\n", "sid"},
		{"no equals", "@frame{v=1 sid=0 seq=0 kind=symtab len=0 final}\n\n", "final"},
		{"no trailing newline", "@frame{v=1 sid=0 seq=0 kind=err len=2}\nhiX", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.in)).Next()
			var he *HeaderError
			if !errors.As(err, &he) {
				t.Fatalf("got %v, want *HeaderError", err)
			}
			if he.Field != tt.field {
				t.Errorf("field = %q, want %q", he.Field, tt.field)
			}
		})
	}
}

func TestReader_Truncated(t *testing.T) {
	for _, in := range []string{
		"@frame{v=1 sid=0 seq=0 kind=err len=10}\nshort\n",
		"@frame{v=1 sid=0 seq=0",
	} {
		_, err := NewReader(strings.NewReader(in)).Next()
		if err != io.ErrUnexpectedEOF {
			t.Errorf("%q: got %v, want io.ErrUnexpectedEOF", in, err)
		}
	}
}

func TestReader_Offset(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_ = w.WriteErr(0, 0, "a")
	first := int64(buf.Len())
	_ = w.WriteErr(0, 1, "bc")

	r := NewReader(&buf)
	if _, err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if r.Offset() != first {
		t.Errorf("offset = %d, want %d", r.Offset(), first)
	}
}

func TestReader_CRCMismatch(t *testing.T) {
	var buf bytes.Buffer
	_ = NewWriter(&buf, WithCRC()).WriteErr(0, 0, "good")
	corrupted := strings.Replace(buf.String(), "good", "evil", 1)

	_, err := NewReader(strings.NewReader(corrupted)).Next()
	var mismatch *CRCMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want *CRCMismatchError", err)
	}
	if mismatch.Expected != ComputeCRC([]byte("good")) {
		t.Errorf("expected = %08x", mismatch.Expected)
	}
}

func TestReader_PayloadLimit(t *testing.T) {
	var buf bytes.Buffer
	_ = NewWriter(&buf).WriteErr(0, 0, strings.Repeat("x", 100))

	_, err := NewReader(bytes.NewReader(buf.Bytes()), WithMaxPayload(64)).Next()
	if !ErrPayloadTooLarge.Is(err) {
		t.Errorf("got %v, want ErrPayloadTooLarge", err)
	}

	buf.Reset()
	_ = NewWriter(&buf, WithCompression()).WriteErr(0, 0, strings.Repeat("x", 100))
	_, err = NewReader(bytes.NewReader(buf.Bytes()), WithMaxPayload(64)).Next()
	if !ErrPayloadTooLarge.Is(err) {
		t.Errorf("compressed: got %v, want ErrPayloadTooLarge", err)
	}
}

func TestSymbolIDs(t *testing.T) {
	ids := []uint64{1, 9, 10, 127, 128, 1 << 20}
	got, err := DecodeSymbolIDs(EncodeSymbolIDs(ids))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(ids) {
		t.Fatalf("got %v", got)
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Errorf("id %d = %d, want %d", i, got[i], ids[i])
		}
	}

	if EncodeSymbolIDs(nil) != nil {
		t.Error("empty ids should encode to nil")
	}
	if _, err := DecodeSymbolIDs([]byte{0x80}); !ErrMalformedSymbols.Is(err) {
		t.Errorf("got %v, want ErrMalformedSymbols", err)
	}
}

func TestKinds(t *testing.T) {
	for _, k := range []FrameKind{KindSymtab, KindSymbols, KindErr} {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if FrameKind(7).String() != "kind7" {
		t.Errorf("String = %q", FrameKind(7).String())
	}
	if _, ok := ParseKind("7"); ok {
		t.Error("ParseKind accepted an undefined kind")
	}
}

func TestDigestFormat(t *testing.T) {
	s := FormatDigest(0x1f)
	if s != "xxh64:000000000000001f" {
		t.Errorf("FormatDigest = %q", s)
	}
	for _, in := range []string{s, "000000000000001f"} {
		if d, ok := ParseDigest(in); !ok || d != 0x1f {
			t.Errorf("ParseDigest(%q) = %x, %v", in, d, ok)
		}
	}
	if _, ok := ParseDigest("xxh64:1f"); ok {
		t.Error("short digest accepted")
	}
	if c, ok := parseCRC("crc32:0000ffff"); !ok || c != 0xffff {
		t.Errorf("parseCRC = %x, %v", c, ok)
	}
}
