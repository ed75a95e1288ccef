package recotest

import (
	"context"
	"errors"
	"sync"

	"github.com/lucidspeech/recoengine/pkg/transport"
)

// Transport is an in-memory transport.Transport: Connect never touches
// the network, and the returned Handle records every outbound send so
// a test can assert on wire content. Feed(...) lets a test drive
// inbound events straight into the callbacks Connect was given, from
// whatever goroutine the test chooses, exercising the same
// no-lock-across-callback contract a real transport would.
type Transport struct {
	ConnectErr error

	// EndpointURL and Language record the last value passed to
	// WithEndpointURL/WithLanguage, so a test can assert the
	// orchestrator actually wired them through.
	EndpointURL string
	Language    string

	mu       sync.Mutex
	handle   *Handle
	callback transport.Callbacks
}

func NewTransport() *Transport { return &Transport{} }

func (t *Transport) WithEndpointType(transport.EndpointType) transport.Transport { return t }

func (t *Transport) WithEndpointURL(u string) transport.Transport {
	t.EndpointURL = u
	return t
}

func (t *Transport) WithLanguage(lang string) transport.Transport {
	t.Language = lang
	return t
}

func (t *Transport) WithTranslation(transport.TranslationParams) transport.Transport  { return t }
func (t *Transport) WithModelID(string) transport.Transport                           { return t }
func (t *Transport) WithRecognitionMode(transport.RecognitionMode) transport.Transport { return t }
func (t *Transport) WithAuthentication(transport.AuthType, string) transport.Transport { return t }

func (t *Transport) Connect(ctx context.Context, callbacks transport.Callbacks) (transport.Handle, error) {
	if t.ConnectErr != nil {
		return nil, t.ConnectErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callback = callbacks
	t.handle = &Handle{}
	return t.handle, nil
}

// Callbacks returns the callbacks passed to the most recent Connect,
// so a test can drive OnTurnStart/OnSpeechPhrase/etc directly.
func (t *Transport) Callbacks() transport.Callbacks {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.callback
}

// Handle returns the most recently issued Handle.
func (t *Transport) Handle() *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

// Handle records outbound sends and audio writes.
type Handle struct {
	mu     sync.Mutex
	Sent   []SentMessage
	Audio  [][]byte
	closed bool
}

type SentMessage struct {
	Path    string
	Payload []byte
}

func (h *Handle) SendMessage(path string, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("handle closed")
	}
	h.Sent = append(h.Sent, SentMessage{Path: path, Payload: append([]byte(nil), payload...)})
	return nil
}

func (h *Handle) WriteAudio(chunk []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("handle closed")
	}
	h.Audio = append(h.Audio, append([]byte(nil), chunk...))
	return nil
}

func (h *Handle) FlushAudio() error { return nil }

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// AudioBytes concatenates every WriteAudio call, in order.
func (h *Handle) AudioBytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []byte
	for _, c := range h.Audio {
		out = append(out, c...)
	}
	return out
}

var (
	_ transport.Transport = (*Transport)(nil)
	_ transport.Handle    = (*Handle)(nil)
)
