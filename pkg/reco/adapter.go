// Package reco implements the Recognition Engine Adapter: the dual-axis
// state machine that mediates between a local audio feed and a remote
// speech-recognition service.
package reco

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lucidspeech/recoengine/pkg/audioformat"
	"github.com/lucidspeech/recoengine/pkg/errorsx"
	"github.com/lucidspeech/recoengine/pkg/logging"
	"github.com/lucidspeech/recoengine/pkg/metrics"
	"github.com/lucidspeech/recoengine/pkg/resilience"
	"github.com/lucidspeech/recoengine/pkg/site"
	"github.com/lucidspeech/recoengine/pkg/transport"
)

// pendingPhrase is the single-slot deferred final result awaiting
// intent enrichment.
type pendingPhrase struct {
	offset uint64
	status string
	text   string
	raw    string
}

// Adapter is one recognition session. Every mutable field is guarded
// by mu; the lock is always released before calling into site or
// transportHandle, per the concurrency model.
type Adapter struct {
	mu sync.RWMutex

	audio    AudioState
	protocol ProtocolState

	format         *audioformat.Format
	handle         transport.Handle
	singleShot     bool
	recoMode       transport.RecognitionMode
	customEndpoint bool

	expectIntentResponse bool
	pendingFinalPhrase   *pendingPhrase

	serviceChunkSize int
	outbound         *outboundBuffer
	serviceTag       string

	// immutable collaborators, set at construction
	site               site.Site
	properties         site.PropertyStore
	listenForProvider  site.ListenForProvider
	intentProvider     site.IntentProvider
	resultFactory      site.ResultFactory
	transportCfg       transport.Transport
	endpointType       transport.EndpointType
	endpointURL        string
	language           string
	authType           transport.AuthType
	authCredential     string
	translation        transport.TranslationParams
	modelID            string
	preferredChunkMs   int
	resetAfterError    bool
	suppressDGI        bool
	suppressIntentJSON bool
	intentInfo         site.IntentInfo
	hasIntentInfo      bool

	retry   resilience.RetryPolicy
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	metrics metrics.Observer

	connectCtx context.Context
}

// Option configures optional Adapter dependencies at construction.
type Option func(*Adapter)

// WithLogger overrides the base logger used to derive the adapter's
// component logger; the default discards everything.
func WithLogger(base *slog.Logger) Option {
	return func(a *Adapter) {
		if base != nil {
			a.logger = logging.NewComponentLogger(base, "reco")
		}
	}
}

// WithMetrics attaches a metrics.Observer; the default is a no-op.
func WithMetrics(observer metrics.Observer) Option {
	return func(a *Adapter) {
		if observer != nil {
			a.metrics = observer
		}
	}
}

// WithRetryPolicy overrides the connect-time retry policy.
func WithRetryPolicy(p resilience.RetryPolicy) Option {
	return func(a *Adapter) { a.retry = p }
}

// WithCircuitBreaker overrides the connect-time circuit breaker.
func WithCircuitBreaker(b *resilience.CircuitBreaker) Option {
	return func(a *Adapter) { a.breaker = b }
}

// WithPreferredChunkMillis sets the target outbound audio chunk
// duration used to derive service_chunk_size once a format is known.
func WithPreferredChunkMillis(ms int) Option {
	return func(a *Adapter) { a.preferredChunkMs = ms }
}

// WithConnectContext overrides the context.Context used for transport
// Connect calls; the default is context.Background().
func WithConnectContext(ctx context.Context) Option {
	return func(a *Adapter) { a.connectCtx = ctx }
}

// New constructs an Adapter and performs the orchestrator's
// initialization sequence: endpoint, recognition-mode, and
// authentication selection from the site's properties (§4.4). This is
// the Go-idiomatic fail-fast substitute for the original's separate
// late-bound Init call — configuration errors surface here rather than
// on first audio.
func New(
	s site.Site,
	props site.PropertyStore,
	listenFor site.ListenForProvider,
	intents site.IntentProvider,
	results site.ResultFactory,
	transportFactory transport.Transport,
	opts ...Option,
) (*Adapter, error) {
	if s == nil {
		return nil, errorsx.Wrap(errors.New("site must not be nil"), errorsx.ReasonProgrammerUninitializedSite)
	}
	if props == nil {
		return nil, errorsx.Wrap(errors.New("property store must not be nil"), errorsx.ReasonProgrammerUninitializedSite)
	}
	if transportFactory == nil {
		return nil, errorsx.Wrap(errors.New("transport factory must not be nil"), errorsx.ReasonProgrammerUninitializedSite)
	}

	a := &Adapter{
		site:              s,
		properties:        props,
		listenForProvider: listenFor,
		intentProvider:    intents,
		resultFactory:     results,
		logger:            logging.NewComponentLogger(slog.New(slog.NewJSONHandler(discardWriter{}, nil)), "reco"),
		metrics:           metrics.NoopObserver{},
		retry:             resilience.NewRetryPolicy(2, 200*time.Millisecond),
		breaker:           resilience.NewCircuitBreaker(3, 30*time.Second),
		preferredChunkMs:  100,
		connectCtx:        context.Background(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.resolveEndpoint(); err != nil {
		return nil, err
	}
	if err := a.resolveRecognitionMode(); err != nil {
		return nil, err
	}
	if err := a.resolveAuthentication(); err != nil {
		return nil, err
	}

	if intents != nil {
		if info, ok := intents.IntentInfo(); ok {
			a.intentInfo = info
			a.hasIntentInfo = true
			a.expectIntentResponse = true
		}
	}
	if v, ok := props.BoolProperty(site.PropInternalNoDGI); ok {
		a.suppressDGI = v
	}
	if v, ok := props.BoolProperty(site.PropInternalNoIntentJSON); ok {
		a.suppressIntentJSON = v
	}
	if v, ok := props.BoolProperty(site.PropInternalResetAfterError); ok {
		a.resetAfterError = v
	}

	a.transportCfg = transportFactory.
		WithEndpointType(a.endpointType).
		WithRecognitionMode(a.recoMode).
		WithAuthentication(a.authType, a.authCredential)
	if a.endpointURL != "" {
		a.transportCfg = a.transportCfg.WithEndpointURL(a.endpointURL)
	}
	if a.language != "" {
		a.transportCfg = a.transportCfg.WithLanguage(a.language)
	}
	if a.endpointType == transport.EndpointTranslation {
		a.transportCfg = a.transportCfg.WithTranslation(a.translation)
	}
	if a.modelID != "" {
		a.transportCfg = a.transportCfg.WithModelID(a.modelID)
	}

	return a, nil
}

// SetAdapterMode sets the single-shot/continuous consumer mode. Must
// be called before the first SetFormat.
func (a *Adapter) SetAdapterMode(singleShot bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.audio != AudioIdle || a.protocol != ProtocolIdle {
		return errorsx.Wrap(errors.New("adapter mode must be set before SetFormat"), errorsx.ReasonProgrammerDoubleInit)
	}
	a.singleShot = singleShot
	return nil
}

// SetFormat announces the waveform format for the session, transitioning
// Idle+Idle to Ready+Idle. The transport connection is not opened here;
// it opens lazily on the first ProcessAudio call.
func (a *Adapter) SetFormat(format audioformat.Format) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.audio == AudioIdle && a.protocol == ProtocolIdle {
		clone := format.Clone()
		a.format = &clone
		a.audio = AudioReady
		return nil
	}
	if a.audio == AudioReady || a.audio == AudioSending {
		// Re-announcing the format mid-session updates the format in
		// place; the site is notified once the in-flight turn, if any,
		// has stopped via TurnEnd.
		clone := format.Clone()
		a.format = &clone
		return nil
	}
	return errorsx.Wrap(fmt.Errorf("SetFormat invalid in state audio=%s protocol=%s", a.audio, a.protocol), errorsx.ReasonProgrammerBadArgument)
}

// StopFormat clears the announced waveform format and returns the
// audio axis to Idle, notifying the site via CompletedSetFormatStop.
// Valid once any single-shot turn has run its course (audio Stopping)
// or before any turn has started (audio Ready); invalid mid-turn. The
// transport handle, if any, is left untouched — it is only dropped by
// Term or reset-after-error.
func (a *Adapter) StopFormat() error {
	a.mu.Lock()
	if a.protocol != ProtocolIdle || (a.audio != AudioReady && a.audio != AudioStopping) {
		a.mu.Unlock()
		return errorsx.Wrap(fmt.Errorf("StopFormat invalid in state audio=%s protocol=%s", a.audio, a.protocol), errorsx.ReasonProgrammerBadArgument)
	}
	a.audio = AudioIdle
	a.format = nil
	a.mu.Unlock()

	a.site.CompletedSetFormatStop()
	a.record("format_stopped", nil)
	return nil
}

// ProcessAudio forwards a chunk of raw audio. A zero-length chunk is a
// flush sentinel matching the outbound buffer's contract. The first
// non-empty call of a turn opens the transport and runs the
// first-audio sequence (§4.4).
func (a *Adapter) ProcessAudio(chunk []byte) error {
	a.mu.Lock()
	if a.protocol.terminal() {
		a.mu.Unlock()
		return nil
	}
	if a.audio == AudioReady && a.protocol == ProtocolIdle && len(chunk) > 0 {
		a.mu.Unlock()
		if err := a.startTurn(); err != nil {
			return err
		}
		return a.writeAudio(chunk)
	}
	a.mu.Unlock()
	if a.audio != AudioSending {
		return nil
	}
	return a.writeAudio(chunk)
}

func (a *Adapter) writeAudio(chunk []byte) error {
	a.mu.Lock()
	handle := a.handle
	buf := a.outbound
	a.mu.Unlock()
	if handle == nil || buf == nil {
		return nil
	}
	return buf.Write(chunk, handle.WriteAudio)
}

// Term terminates the session: any->Terminating, disposes the
// transport handle (blocking), then Terminating->Zombie. Idempotent.
func (a *Adapter) Term() error {
	a.mu.Lock()
	if a.protocol == ProtocolZombie {
		a.mu.Unlock()
		return nil
	}
	a.protocol = ProtocolTerminating
	handle := a.handle
	a.handle = nil
	a.mu.Unlock()

	var closeErr error
	if handle != nil {
		closeErr = handle.Close()
	}

	a.mu.Lock()
	a.protocol = ProtocolZombie
	a.mu.Unlock()
	a.record("term", nil)
	return closeErr
}

func (a *Adapter) record(name string, fields map[string]any) {
	a.metrics.RecordEvent(metrics.MetricsEvent{Name: name, Time: time.Now(), Fields: fields})
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
