package reco

import (
	"github.com/lucidspeech/recoengine/pkg/redact"
	"github.com/lucidspeech/recoengine/pkg/site"
	"github.com/lucidspeech/recoengine/pkg/transport"
)

var _ transport.Callbacks = (*Adapter)(nil)

// Adapter implements transport.Callbacks: every method here is the
// Event Demultiplexer (§4.5). Each handler takes the lock, checks bad
// state, validates and performs the prescribed transition, releases
// the lock, then invokes site callbacks — never both at once.

func (a *Adapter) newResult(status, text, rawJSON string) *site.Result {
	var r *site.Result
	if a.resultFactory != nil {
		r = a.resultFactory.NewResult()
	} else {
		r = site.NewResult()
	}
	r.Status = site.RecognitionStatus(status)
	r.Text = text
	r.SetProperty(site.ResultPropJSON, rawJSON)
	return r
}

func (a *Adapter) OnTurnStart(serviceTag string) {
	a.mu.Lock()
	if a.protocol != ProtocolWaitingForTurnStart {
		a.mu.Unlock()
		a.logWarn("unexpected TurnStart", "protocol", a.protocol.String())
		return
	}
	a.protocol = ProtocolWaitingForPhrase
	a.serviceTag = serviceTag
	a.mu.Unlock()

	a.site.StartedTurn(serviceTag)
	a.record("turn_start", nil)
}

func (a *Adapter) OnSpeechStartDetected(offset uint64) {
	a.mu.RLock()
	ok := a.protocol == ProtocolWaitingForPhrase
	a.mu.RUnlock()
	if !ok {
		a.logWarn("unexpected SpeechStartDetected")
		return
	}
	a.site.DetectedSpeechStart(offset)
}

func (a *Adapter) OnSpeechEndDetected(offset uint64) {
	a.mu.Lock()
	if a.protocol.terminal() {
		a.mu.Unlock()
		return
	}
	if a.singleShot && a.audio == AudioSending {
		a.audio = AudioStopping
	}
	handle := a.handle
	buf := a.outbound
	a.mu.Unlock()

	a.site.DetectedSpeechEnd(offset)
	if handle != nil && buf != nil {
		_ = buf.Write(nil, handle.WriteAudio)
	}
}

func (a *Adapter) OnSpeechHypothesis(offset uint64, text, rawJSON string) {
	a.mu.RLock()
	ok := a.protocol == ProtocolWaitingForPhrase
	a.mu.RUnlock()
	if !ok {
		a.logWarn("unexpected SpeechHypothesis")
		return
	}
	a.site.FireResultIntermediate(offset, a.newResult(string(site.RecognitionStatusSuccess), redact.Text(text), rawJSON))
}

func (a *Adapter) OnSpeechFragment(offset uint64, text, rawJSON string) {
	if !a.recoMode.Continuous() {
		a.logWarn("unexpected SpeechFragment in non-continuous mode")
		return
	}
	a.mu.Lock()
	switch a.protocol {
	case ProtocolWaitingForPhrase:
		a.mu.Unlock()
		a.site.FireResultIntermediate(offset, a.newResult(string(site.RecognitionStatusSuccess), redact.Text(text), rawJSON))
		return
	case ProtocolWaitingForIntent:
		a.protocol = ProtocolWaitingForIntent2
		pending := a.pendingFinalPhrase
		a.pendingFinalPhrase = nil
		a.mu.Unlock()

		if pending != nil {
			a.site.FireResultFinal(pending.offset, a.newResult(pending.status, redact.Text(pending.text), pending.raw))
		}

		a.mu.Lock()
		a.protocol = ProtocolWaitingForPhrase
		a.mu.Unlock()

		a.site.FireResultIntermediate(offset, a.newResult(string(site.RecognitionStatusSuccess), redact.Text(text), rawJSON))
		return
	default:
		a.mu.Unlock()
		a.logWarn("unexpected SpeechFragment")
	}
}

func (a *Adapter) OnSpeechPhrase(offset uint64, status, text, rawJSON string) {
	a.mu.Lock()
	if a.protocol.terminal() {
		a.mu.Unlock()
		return
	}
	if a.protocol != ProtocolWaitingForPhrase {
		a.mu.Unlock()
		a.logWarn("unexpected SpeechPhrase")
		return
	}

	if status == string(site.RecognitionStatusSuccess) && a.expectIntentResponse {
		a.protocol = ProtocolWaitingForIntent
		a.pendingFinalPhrase = &pendingPhrase{offset: offset, status: status, text: text, raw: rawJSON}
		a.mu.Unlock()
		return
	}

	if !a.recoMode.Continuous() {
		a.protocol = ProtocolWaitingForTurnEnd
	}
	// continuous mode: self-loop, protocol stays WaitingForPhrase.
	a.mu.Unlock()

	a.site.FireResultFinal(offset, a.newResult(status, redact.Text(text), rawJSON))
}

func (a *Adapter) OnTranslationHypothesis(offset uint64, rawJSON string) {
	a.mu.RLock()
	ok := a.protocol == ProtocolWaitingForPhrase
	a.mu.RUnlock()
	if !ok {
		a.logWarn("unexpected TranslationHypothesis")
		return
	}
	a.site.FireResultIntermediate(offset, a.newResult(string(site.RecognitionStatusSuccess), "", rawJSON))
}

func (a *Adapter) OnTranslationPhrase(offset uint64, rawJSON string) {
	a.mu.Lock()
	if a.protocol != ProtocolWaitingForPhrase {
		a.mu.Unlock()
		a.logWarn("unexpected TranslationPhrase")
		return
	}
	if !a.recoMode.Continuous() {
		a.protocol = ProtocolWaitingForTurnEnd
	}
	a.mu.Unlock()
	a.site.FireResultFinal(offset, a.newResult(string(site.RecognitionStatusSuccess), "", rawJSON))
}

func (a *Adapter) OnTranslationSynthesis(audio []byte) {
	a.mu.RLock()
	terminal := a.protocol.terminal()
	a.mu.RUnlock()
	if terminal {
		return
	}
	r := a.newResult(string(site.RecognitionStatusSuccess), "", "")
	r.Audio = audio
	a.site.FireResultTranslationSynthesis(r)
}

func (a *Adapter) OnTranslationSynthesisEnd(rawJSON string) {
	a.mu.RLock()
	terminal := a.protocol.terminal()
	a.mu.RUnlock()
	if terminal {
		return
	}
	a.site.FireResultTranslationSynthesis(a.newResult(string(site.RecognitionStatusEndOfDictation), "", rawJSON))
}

func (a *Adapter) OnTurnEnd() {
	a.mu.Lock()
	if a.protocol.terminal() {
		a.mu.Unlock()
		return
	}

	switch a.protocol {
	case ProtocolWaitingForTurnEnd:
		a.protocol = ProtocolIdle
		a.finishTurnLocked()

	case ProtocolWaitingForPhrase:
		a.protocol = ProtocolIdle
		a.finishTurnLocked()

	case ProtocolWaitingForIntent:
		a.protocol = ProtocolWaitingForIntent2
		pending := a.pendingFinalPhrase
		a.pendingFinalPhrase = nil
		a.mu.Unlock()

		if pending != nil {
			a.site.FireResultFinal(pending.offset, a.newResult(pending.status, redact.Text(pending.text), pending.raw))
		}

		a.mu.Lock()
		a.protocol = ProtocolIdle
		a.finishTurnLocked()

	default:
		a.mu.Unlock()
		a.logWarn("unexpected TurnEnd")
		return
	}
}

// finishTurnLocked completes the audio-axis side of TurnEnd and
// releases the lock before notifying the site. Must be called with mu
// held and the protocol axis already set to Idle. The transport handle
// survives the turn — it is reused by the next startTurn and is only
// ever dropped by Term or reset-after-error.
func (a *Adapter) finishTurnLocked() {
	singleShot := a.singleShot
	if singleShot {
		a.audio = AudioStopping
	} else {
		a.audio = AudioReady
	}
	a.mu.Unlock()

	a.site.StoppedTurn()
	if singleShot {
		a.site.RequestingAudioIdle()
	}
	a.record("turn_stopped", nil)
}

func (a *Adapter) OnError(err error) {
	a.mu.Lock()
	if a.protocol.terminal() {
		a.mu.Unlock()
		return
	}
	formatHeld := a.format != nil
	if a.resetAfterError && formatHeld {
		handle := a.handle
		a.handle = nil
		a.outbound = nil
		a.mu.Unlock()

		a.site.Error(err.Error())
		if handle != nil {
			_ = handle.Close()
		}

		a.mu.Lock()
		a.audio = AudioReady
		a.protocol = ProtocolIdle
		a.mu.Unlock()
		a.record("reset_after_error", nil)
		return
	}

	a.protocol = ProtocolError
	a.mu.Unlock()

	a.site.Error(err.Error())
	a.record("transport_error", nil)
}

func (a *Adapter) OnUserMessage(path string, payload []byte) {
	if path != "response" {
		return
	}
	a.mu.Lock()
	if a.protocol != ProtocolWaitingForIntent || a.pendingFinalPhrase == nil {
		a.mu.Unlock()
		return
	}
	pending := a.pendingFinalPhrase
	a.pendingFinalPhrase = nil
	if a.recoMode.Continuous() {
		a.protocol = ProtocolWaitingForPhrase
	} else {
		a.protocol = ProtocolWaitingForTurnEnd
	}
	a.mu.Unlock()

	result := a.newResult(pending.status, redact.Text(pending.text), pending.raw)
	result.SetProperty(site.ResultPropLanguageUnderstandingJSON, string(payload))
	a.site.FireResultFinal(pending.offset, result)
	a.record("intent_enriched", nil)
}

func (a *Adapter) logWarn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
