// Package recotest provides in-memory Site, PropertyStore, and
// Transport implementations for exercising the reco package without a
// live network connection, grounded on the teacher's mock STT provider
// pattern.
package recotest

import (
	"sync"

	"github.com/lucidspeech/recoengine/pkg/site"
)

// PropertyStore is a map-backed site.PropertyStore.
type PropertyStore struct {
	Strings map[string]string
	Bools   map[string]bool
}

func NewPropertyStore() *PropertyStore {
	return &PropertyStore{Strings: map[string]string{}, Bools: map[string]bool{}}
}

func (p *PropertyStore) StringProperty(name string) (string, bool) {
	v, ok := p.Strings[name]
	return v, ok
}

func (p *PropertyStore) BoolProperty(name string) (bool, bool) {
	v, ok := p.Bools[name]
	return v, ok
}

// ListenFor is a static site.ListenForProvider.
type ListenFor []string

func (l ListenFor) ListenForList() []string { return l }

// Intent is a static site.IntentProvider; a zero-value Intent reports
// no intent info configured.
type Intent struct {
	Info    site.IntentInfo
	Present bool
}

func (i Intent) IntentInfo() (site.IntentInfo, bool) { return i.Info, i.Present }

// Call records one invocation of a Site method, for assertions.
type Call struct {
	Method string
	Offset uint64
	Tag    string
	Result *site.Result
	Text   string
}

// Site records every callback it receives, in order, and is safe for
// concurrent use since the adapter may call it from more than one
// goroutine (transport callbacks vs. the audio-producing goroutine).
type Site struct {
	mu    sync.Mutex
	Calls []Call
}

func (s *Site) append(c Call) {
	s.mu.Lock()
	s.Calls = append(s.Calls, c)
	s.mu.Unlock()
}

func (s *Site) StartingTurn() { s.append(Call{Method: "StartingTurn"}) }
func (s *Site) StartedTurn(tag string) {
	s.append(Call{Method: "StartedTurn", Tag: tag})
}
func (s *Site) DetectedSpeechStart(offset uint64) {
	s.append(Call{Method: "DetectedSpeechStart", Offset: offset})
}
func (s *Site) DetectedSpeechEnd(offset uint64) {
	s.append(Call{Method: "DetectedSpeechEnd", Offset: offset})
}
func (s *Site) FireResultIntermediate(offset uint64, result *site.Result) {
	s.append(Call{Method: "FireResultIntermediate", Offset: offset, Result: result})
}
func (s *Site) FireResultFinal(offset uint64, result *site.Result) {
	s.append(Call{Method: "FireResultFinal", Offset: offset, Result: result})
}
func (s *Site) FireResultTranslationSynthesis(result *site.Result) {
	s.append(Call{Method: "FireResultTranslationSynthesis", Result: result})
}
func (s *Site) StoppedTurn()            { s.append(Call{Method: "StoppedTurn"}) }
func (s *Site) RequestingAudioIdle()    { s.append(Call{Method: "RequestingAudioIdle"}) }
func (s *Site) CompletedSetFormatStop() { s.append(Call{Method: "CompletedSetFormatStop"}) }
func (s *Site) Error(message string) {
	s.append(Call{Method: "Error", Text: message})
}

// MethodNames returns just the ordered method names, for compact
// sequence assertions.
func (s *Site) MethodNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		out[i] = c.Method
	}
	return out
}

var (
	_ site.Site              = (*Site)(nil)
	_ site.PropertyStore     = (*PropertyStore)(nil)
	_ site.ListenForProvider = ListenFor(nil)
	_ site.IntentProvider    = Intent{}
)
