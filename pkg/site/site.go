// Package site defines the consumer contract the adapter drives:
// recognition event callbacks, property/settings lookup, listen-for
// hints, intent-service descriptors, and result construction.
package site

// Site is the set of inbound notifications the adapter delivers to its
// host. Implementations must be safe to call from arbitrary goroutines
// and must not block for long: the adapter never holds its state lock
// while calling into a Site.
type Site interface {
	StartingTurn()
	StartedTurn(serviceTag string)
	DetectedSpeechStart(offsetTicks uint64)
	DetectedSpeechEnd(offsetTicks uint64)
	FireResultIntermediate(offsetTicks uint64, result *Result)
	FireResultFinal(offsetTicks uint64, result *Result)
	FireResultTranslationSynthesis(result *Result)
	StoppedTurn()
	RequestingAudioIdle()
	CompletedSetFormatStop()
	Error(message string)
}

// PropertyStore exposes the string/bool site configuration the
// orchestrator consults for endpoint, auth, and mode selection.
type PropertyStore interface {
	StringProperty(name string) (value string, ok bool)
	BoolProperty(name string) (value bool, ok bool)
}

// ListenForProvider supplies the grammar-hint list used by the DGI
// fragment of the speech-context payload.
type ListenForProvider interface {
	ListenForList() []string
}

// IntentInfo describes an intent-service enrollment. All three fields
// must be non-empty for the intent descriptor to be emitted.
type IntentInfo struct {
	Provider string
	ID       string
	Key      string
}

// IntentProvider supplies the intent-service descriptor, when the site
// has one configured.
type IntentProvider interface {
	IntentInfo() (IntentInfo, bool)
}

// ResultFactory constructs Result values carrying provider-specific
// payloads. A default factory is sufficient for most sites; it exists
// as an interface so a site can attach additional properties.
type ResultFactory interface {
	NewResult() *Result
}
