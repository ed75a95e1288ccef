// Package transport defines the wire-level contract the recognition
// adapter drives: connecting to the remote speech service, sending
// framed control messages and audio, and receiving typed inbound
// events through a Callbacks implementation.
package transport

import "context"

// EndpointType selects the family of remote endpoint the adapter talks
// to, mirroring the derived choice from the site's Endpoint-related
// properties.
type EndpointType int

const (
	EndpointUnknown EndpointType = iota
	EndpointCDSDK
	EndpointCustom
	EndpointTranslation
	EndpointCustomSpeech
	EndpointBing
)

func (e EndpointType) String() string {
	switch e {
	case EndpointCDSDK:
		return "cdsdk"
	case EndpointCustom:
		return "custom"
	case EndpointTranslation:
		return "translation"
	case EndpointCustomSpeech:
		return "custom-speech"
	case EndpointBing:
		return "bing"
	default:
		return "unknown"
	}
}

// RecognitionMode is the reco-mode axis, independent of endpoint type.
type RecognitionMode int

const (
	RecognitionModeInteractive RecognitionMode = iota
	RecognitionModeConversation
	RecognitionModeDictation
)

func (m RecognitionMode) String() string {
	switch m {
	case RecognitionModeConversation:
		return "conversation"
	case RecognitionModeDictation:
		return "dictation"
	default:
		return "interactive"
	}
}

// Continuous reports whether this mode runs turn after turn without an
// interactive single-shot boundary.
func (m RecognitionMode) Continuous() bool {
	return m == RecognitionModeConversation || m == RecognitionModeDictation
}

// AuthType selects which credential the adapter attaches to the
// connection.
type AuthType int

const (
	AuthNone AuthType = iota
	AuthSubscriptionKey
	AuthAuthorizationToken
	AuthRpsToken
)

// TranslationParams carries the translation-endpoint-specific
// configuration, populated only when EndpointType is EndpointTranslation.
type TranslationParams struct {
	FromLanguage string
	ToLanguages  []string
	Voice        string
}

// Transport is a reusable, immutable configuration builder: each
// With* method returns a modified copy, so a caller can configure once
// and Connect many times without aliasing bugs. This is the Go
// functional-options substitute for the original's fluent setter
// chain.
type Transport interface {
	WithEndpointType(EndpointType) Transport
	WithEndpointURL(url string) Transport
	WithLanguage(language string) Transport
	WithTranslation(TranslationParams) Transport
	WithModelID(modelID string) Transport
	WithRecognitionMode(RecognitionMode) Transport
	WithAuthentication(authType AuthType, credential string) Transport

	// Connect dials the configured endpoint and returns a live handle.
	// Callbacks are invoked from the handle's own read goroutine(s)
	// until Close returns.
	Connect(ctx context.Context, callbacks Callbacks) (Handle, error)
}

// Handle is a live connection to the remote recognition service.
type Handle interface {
	SendMessage(path string, payload []byte) error
	WriteAudio(chunk []byte) error
	FlushAudio() error
	Close() error
}

// Callbacks is the inverse contract: the adapter implements this to
// receive typed inbound events. Every method is invoked without any
// adapter lock held by the transport; the adapter is responsible for
// its own locking on entry.
type Callbacks interface {
	OnTurnStart(serviceTag string)
	OnSpeechStartDetected(offsetTicks uint64)
	OnSpeechEndDetected(offsetTicks uint64)
	OnSpeechHypothesis(offsetTicks uint64, text string, rawJSON string)
	OnSpeechFragment(offsetTicks uint64, text string, rawJSON string)
	OnSpeechPhrase(offsetTicks uint64, status string, text string, rawJSON string)
	OnTranslationHypothesis(offsetTicks uint64, rawJSON string)
	OnTranslationPhrase(offsetTicks uint64, rawJSON string)
	OnTranslationSynthesis(audio []byte)
	OnTranslationSynthesisEnd(rawJSON string)
	OnTurnEnd()
	OnUserMessage(path string, payload []byte)
	OnError(err error)
}
