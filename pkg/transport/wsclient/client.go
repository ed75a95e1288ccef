// Package wsclient is a gorilla/websocket-based transport.Transport
// implementation: it dials the remote recognition service, frames
// outbound control/audio messages, and demultiplexes the inbound
// message stream into transport.Callbacks calls.
package wsclient

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lucidspeech/recoengine/pkg/errorsx"
	"github.com/lucidspeech/recoengine/pkg/transport"
)

const (
	frameKindText = iota
	frameKindBinary
)

type outboundFrame struct {
	kind int
	data []byte
}

// Client is an immutable transport.Transport configuration. Each With*
// call returns a modified copy.
type Client struct {
	endpointType transport.EndpointType
	endpointURL  string
	language     string
	translation  transport.TranslationParams
	modelID      string
	recoMode     transport.RecognitionMode
	authType     transport.AuthType
	credential   string
	dialTimeout  time.Duration
	logger       *slog.Logger
}

// New returns a Client with sane defaults; the caller chains With*
// calls to configure it before Connect.
func New() *Client {
	return &Client{dialTimeout: 5 * time.Second}
}

func (c Client) clone() *Client { return &c }

func (c *Client) WithEndpointType(t transport.EndpointType) transport.Transport {
	n := c.clone()
	n.endpointType = t
	return n
}

func (c *Client) WithEndpointURL(u string) transport.Transport {
	n := c.clone()
	n.endpointURL = u
	return n
}

func (c *Client) WithLanguage(lang string) transport.Transport {
	n := c.clone()
	n.language = lang
	return n
}

func (c *Client) WithTranslation(p transport.TranslationParams) transport.Transport {
	n := c.clone()
	n.translation = p
	return n
}

func (c *Client) WithModelID(id string) transport.Transport {
	n := c.clone()
	n.modelID = id
	return n
}

func (c *Client) WithRecognitionMode(m transport.RecognitionMode) transport.Transport {
	n := c.clone()
	n.recoMode = m
	return n
}

func (c *Client) WithAuthentication(t transport.AuthType, credential string) transport.Transport {
	n := c.clone()
	n.authType = t
	n.credential = credential
	return n
}

// WithDialTimeout is a wsclient-specific extension outside the
// transport.Transport interface, set directly on a concrete *Client.
func (c *Client) WithDialTimeout(d time.Duration) *Client {
	n := c.clone()
	n.dialTimeout = d
	return n
}

// WithLogger attaches a component logger used for connection-lifecycle
// diagnostics; nil disables logging.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	n := c.clone()
	n.logger = logger
	return n
}

func (c *Client) resolveURL() (string, error) {
	if c.endpointURL != "" {
		return c.endpointURL, nil
	}
	switch c.endpointType {
	case transport.EndpointCustom:
		return "", errorsx.Wrap(errors.New("custom endpoint requires WithEndpointURL"), errorsx.ReasonConfigMissingEndpointURL)
	case transport.EndpointCDSDK:
		return "wss://speech.platform.bing.com/cortana/api/v1", nil
	case transport.EndpointTranslation:
		if len(c.translation.ToLanguages) == 0 {
			return "", errorsx.Wrap(errors.New("translation endpoint requires at least one target language"), errorsx.ReasonConfigMissingLanguages)
		}
		v := url.Values{}
		v.Set("from", c.translation.FromLanguage)
		v.Set("to", strings.Join(c.translation.ToLanguages, ","))
		if c.translation.Voice != "" {
			v.Set("voice", c.translation.Voice)
		}
		return "wss://s2s.speech.microsoft.com/speech/translate/cognitiveservices/v1?" + v.Encode(), nil
	case transport.EndpointCustomSpeech:
		return fmt.Sprintf("wss://%s.stt.speech.microsoft.com/speech/recognition/%s/cognitiveservices/v1?cid=%s",
			"custom", c.recoMode, c.modelID), nil
	default:
		lang := c.language
		if lang == "" {
			lang = "en-US"
		}
		return fmt.Sprintf("wss://speech.platform.bing.com/speech/recognition/%s/cognitiveservices/v1?language=%s",
			c.recoMode, lang), nil
	}
}

func (c *Client) authHeader() (http.Header, error) {
	h := http.Header{}
	switch c.authType {
	case transport.AuthSubscriptionKey:
		h.Set("Ocp-Apim-Subscription-Key", c.credential)
	case transport.AuthAuthorizationToken:
		h.Set("Authorization", "Bearer "+c.credential)
	case transport.AuthRpsToken:
		h.Set("Authorization", c.credential)
	default:
		return nil, errorsx.Wrap(errors.New("no authentication configured"), errorsx.ReasonConfigNoAuthentication)
	}
	return h, nil
}

// Connect dials the remote endpoint and starts the read/write
// goroutines that drive callbacks and outbound framing.
func (c *Client) Connect(ctx context.Context, callbacks transport.Callbacks) (transport.Handle, error) {
	target, err := c.resolveURL()
	if err != nil {
		return nil, err
	}
	header, err := c.authHeader()
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.dialTimeout}
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()
	conn, _, err := dialer.DialContext(dialCtx, target, header)
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("dial %s: %w", target, err), errorsx.ReasonTransportConnect)
	}

	h := &wsHandle{
		conn:      conn,
		callbacks: callbacks,
		sendCh:    make(chan outboundFrame, 32),
		done:      make(chan struct{}),
		traceID:   uuid.NewString(),
		logger:    c.logger,
	}
	go h.writeLoop()
	go h.readLoop()
	return h, nil
}

// wsHandle is the live connection. It owns exactly one reader
// goroutine and one writer goroutine; the reader invokes callbacks
// synchronously, so ordering of inbound events follows arrival order
// on the socket.
type wsHandle struct {
	conn      *websocket.Conn
	callbacks transport.Callbacks
	sendCh    chan outboundFrame
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	traceID   string
	logger    *slog.Logger
}

func (h *wsHandle) SendMessage(path string, payload []byte) error {
	return h.enqueue(outboundFrame{kind: frameKindText, data: encodeTextFrame(path, payload)})
}

func (h *wsHandle) WriteAudio(chunk []byte) error {
	return h.enqueue(outboundFrame{kind: frameKindBinary, data: encodeAudioFrame(chunk)})
}

func (h *wsHandle) FlushAudio() error {
	// The websocket framing has no partial-message concept once a
	// frame has been enqueued; flush is a no-op at this layer, the
	// buffering happens above in the adapter's outbound buffer.
	return nil
}

func (h *wsHandle) enqueue(f outboundFrame) error {
	if h.closed.Load() {
		return errorsx.Wrap(errors.New("transport closed"), errorsx.ReasonTransportClosed)
	}
	select {
	case h.sendCh <- f:
		return nil
	case <-h.done:
		return errorsx.Wrap(errors.New("transport closed"), errorsx.ReasonTransportClosed)
	}
}

func (h *wsHandle) Close() error {
	var err error
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		close(h.done)
		err = h.conn.Close()
	})
	return err
}

func (h *wsHandle) writeLoop() {
	for {
		select {
		case f := <-h.sendCh:
			msgType := websocket.TextMessage
			if f.kind == frameKindBinary {
				msgType = websocket.BinaryMessage
			}
			if err := h.conn.WriteMessage(msgType, f.data); err != nil {
				h.reportError(errorsx.Wrap(err, errorsx.ReasonTransportSend))
				return
			}
		case <-h.done:
			return
		}
	}
}

func (h *wsHandle) readLoop() {
	for {
		msgType, data, err := h.conn.ReadMessage()
		if err != nil {
			if !h.closed.Load() {
				h.reportError(errorsx.Wrap(err, errorsx.ReasonTransportError))
			}
			return
		}
		switch msgType {
		case websocket.TextMessage:
			h.dispatchText(data)
		case websocket.BinaryMessage:
			h.dispatchBinary(data)
		}
	}
}

func (h *wsHandle) reportError(err error) {
	if h.logger != nil {
		h.logger.Warn("transport error", slog.String("trace_id", h.traceID), slog.String("error", err.Error()))
	}
	if h.callbacks != nil {
		h.callbacks.OnError(err)
	}
}

func (h *wsHandle) dispatchBinary(data []byte) {
	if h.callbacks != nil {
		h.callbacks.OnTranslationSynthesis(data)
	}
}

// dispatchText decodes the path-prefixed text frame and routes it to
// the matching typed callback. Real message bodies are JSON; this
// module does not need to interpret their fields beyond what routing
// requires, so payload bytes are passed through as rawJSON.
func (h *wsHandle) dispatchText(data []byte) {
	path, body := splitTextFrame(data)
	switch path {
	case "turn.start":
		h.callbacks.OnTurnStart(extractServiceTag(body))
	case "speech.startDetected":
		h.callbacks.OnSpeechStartDetected(extractOffset(body))
	case "speech.endDetected":
		h.callbacks.OnSpeechEndDetected(extractOffset(body))
	case "speech.hypothesis":
		h.callbacks.OnSpeechHypothesis(extractOffset(body), extractText(body), string(body))
	case "speech.fragment":
		h.callbacks.OnSpeechFragment(extractOffset(body), extractText(body), string(body))
	case "speech.phrase":
		h.callbacks.OnSpeechPhrase(extractOffset(body), extractStatus(body), extractText(body), string(body))
	case "translation.hypothesis":
		h.callbacks.OnTranslationHypothesis(extractOffset(body), string(body))
	case "translation.phrase":
		h.callbacks.OnTranslationPhrase(extractOffset(body), string(body))
	case "translation.synthesis.end":
		h.callbacks.OnTranslationSynthesisEnd(string(body))
	case "turn.end":
		h.callbacks.OnTurnEnd()
	case "response":
		h.callbacks.OnUserMessage(path, body)
	default:
		h.callbacks.OnUserMessage(path, body)
	}
}

func encodeTextFrame(path string, payload []byte) []byte {
	header := fmt.Sprintf("Path: %s\r\nContent-Type: application/json\r\n\r\n", path)
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	out = append(out, payload...)
	return out
}

func encodeAudioFrame(chunk []byte) []byte {
	header := "Path: audio\r\n\r\n"
	out := make([]byte, 0, 2+len(header)+len(chunk))
	var headerLen [2]byte
	binary.BigEndian.PutUint16(headerLen[:], uint16(len(header)))
	out = append(out, headerLen[:]...)
	out = append(out, header...)
	out = append(out, chunk...)
	return out
}

func splitTextFrame(data []byte) (path string, body []byte) {
	sep := []byte("\r\n\r\n")
	idx := indexOf(data, sep)
	if idx < 0 {
		return "", data
	}
	head := string(data[:idx])
	body = data[idx+len(sep):]
	for _, line := range strings.Split(head, "\r\n") {
		if strings.HasPrefix(line, "Path:") {
			path = strings.TrimSpace(strings.TrimPrefix(line, "Path:"))
		}
	}
	return path, body
}

func indexOf(data, sep []byte) int {
	for i := 0; i+len(sep) <= len(data); i++ {
		if string(data[i:i+len(sep)]) == string(sep) {
			return i
		}
	}
	return -1
}

var _ transport.Transport = (*Client)(nil)
var _ transport.Handle = (*wsHandle)(nil)
