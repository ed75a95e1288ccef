package reco

import "sync"

// outboundBuffer coalesces small audio writes into exactly
// serviceChunkSize-byte chunks before handing them to the transport.
// Writes come from the consumer's ProcessAudio calls and from the
// flush that OnSpeechEndDetected issues on a transport callback
// goroutine; mu serializes them.
type outboundBuffer struct {
	mu        sync.Mutex
	chunkSize int
	staging   []byte
	filled    int
}

// newOutboundBuffer returns a buffer for the given chunk size. A
// chunkSize of zero disables buffering; Write then forwards every call
// directly.
func newOutboundBuffer(chunkSize int) *outboundBuffer {
	return &outboundBuffer{chunkSize: chunkSize}
}

// Write stages p, invoking send once per full chunkSize-byte chunk. A
// zero-length p is the flush sentinel: it drains any partial buffer
// through send and deallocates the staging area. In direct mode
// (chunkSize <= 0) every non-empty write is forwarded to send as-is
// and a zero-length write is a no-op.
func (b *outboundBuffer) Write(p []byte, send func([]byte) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.chunkSize <= 0 {
		if len(p) == 0 {
			return nil
		}
		return send(p)
	}
	if len(p) == 0 {
		return b.flush(send)
	}
	if b.staging == nil {
		b.staging = make([]byte, b.chunkSize)
		b.filled = 0
	}
	for len(p) > 0 {
		n := copy(b.staging[b.filled:], p)
		b.filled += n
		p = p[n:]
		if b.filled == b.chunkSize {
			if err := send(b.staging); err != nil {
				return err
			}
			b.filled = 0
		}
	}
	return nil
}

// flush drains any partially filled staging buffer and deallocates it.
func (b *outboundBuffer) flush(send func([]byte) error) error {
	if b.staging == nil || b.filled == 0 {
		b.staging = nil
		b.filled = 0
		return nil
	}
	err := send(b.staging[:b.filled])
	b.staging = nil
	b.filled = 0
	return err
}
