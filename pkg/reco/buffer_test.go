package reco

import (
	"bytes"
	"testing"
)

func TestOutboundBufferExactChunkSizes(t *testing.T) {
	const chunkSize = 7
	buf := newOutboundBuffer(chunkSize)

	var writes [][]byte
	send := func(p []byte) error {
		cp := append([]byte(nil), p...)
		writes = append(writes, cp)
		return nil
	}

	input := []byte("the quick brown fox jumps over the lazy dog")
	// Feed it in irregular slice sizes that do not evenly divide into
	// chunkSize, to exercise straddling writes.
	sizes := []int{3, 1, 5, 10, 2, 1000}
	off := 0
	for _, n := range sizes {
		if off >= len(input) {
			break
		}
		end := off + n
		if end > len(input) {
			end = len(input)
		}
		if err := buf.Write(input[off:end], send); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		off = end
	}
	if err := buf.Write(nil, send); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	var reassembled []byte
	for i, w := range writes {
		if i != len(writes)-1 && len(w) != chunkSize {
			t.Fatalf("write %d has length %d, want %d", i, len(w), chunkSize)
		}
		if len(w) > chunkSize {
			t.Fatalf("write %d exceeds chunk size: %d > %d", i, len(w), chunkSize)
		}
		reassembled = append(reassembled, w...)
	}
	if !bytes.Equal(reassembled, input) {
		t.Fatalf("reassembled bytes do not match input:\ngot:  %q\nwant: %q", reassembled, input)
	}
}

func TestOutboundBufferFlushSentinelDrainsPartial(t *testing.T) {
	buf := newOutboundBuffer(10)
	var flushed [][]byte
	send := func(p []byte) error {
		flushed = append(flushed, append([]byte(nil), p...))
		return nil
	}
	if err := buf.Write([]byte("abc"), send); err != nil {
		t.Fatal(err)
	}
	if len(flushed) != 0 {
		t.Fatalf("expected no flush before buffer fills, got %d", len(flushed))
	}
	if err := buf.Write(nil, send); err != nil {
		t.Fatal(err)
	}
	if len(flushed) != 1 || string(flushed[0]) != "abc" {
		t.Fatalf("expected flush sentinel to drain partial buffer, got %v", flushed)
	}
	// After a flush, the staging buffer is deallocated; the next write
	// starts a fresh chunk.
	if buf.staging != nil {
		t.Fatalf("expected staging buffer to be nil after flush")
	}
}

func TestOutboundBufferDirectModeForwardsAsIs(t *testing.T) {
	buf := newOutboundBuffer(0)
	var got []byte
	send := func(p []byte) error {
		got = append([]byte(nil), p...)
		return nil
	}
	if err := buf.Write([]byte("hello"), send); err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("expected direct forward, got %q", got)
	}
	got = nil
	if err := buf.Write(nil, send); err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected zero-length direct write to be a no-op, got %v", got)
	}
}
