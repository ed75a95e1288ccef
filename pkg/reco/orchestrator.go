package reco

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lucidspeech/recoengine/pkg/errorsx"
	"github.com/lucidspeech/recoengine/pkg/resilience"
	"github.com/lucidspeech/recoengine/pkg/site"
	"github.com/lucidspeech/recoengine/pkg/transport"
)

// resolveEndpoint implements the §4.4 priority list, first match wins.
func (a *Adapter) resolveEndpoint() error {
	endpoint, _ := a.properties.StringProperty(site.PropEndpoint)

	switch {
	case strings.EqualFold(endpoint, site.EndpointCortana):
		a.endpointType = transport.EndpointCDSDK
		return nil
	case endpoint != "":
		a.endpointType = transport.EndpointCustom
		a.customEndpoint = true
		a.endpointURL = endpoint
		return nil
	}

	fromLang, _ := a.properties.StringProperty(site.PropTranslationFromLanguage)
	if fromLang != "" {
		toLangsRaw, _ := a.properties.StringProperty(site.PropTranslationToLanguages)
		if strings.TrimSpace(toLangsRaw) == "" {
			return errorsx.Wrap(errors.New("Translation.ToLanguages is required when Translation.FromLanguage is set"), errorsx.ReasonConfigMissingLanguages)
		}
		voice, _ := a.properties.StringProperty(site.PropTranslationVoice)
		modelID, _ := a.properties.StringProperty(site.PropSpeechModelID)
		a.endpointType = transport.EndpointTranslation
		a.translation = transport.TranslationParams{
			FromLanguage: fromLang,
			ToLanguages:  splitAndTrim(toLangsRaw),
			Voice:        voice,
		}
		a.modelID = modelID
		return nil
	}

	if modelID, _ := a.properties.StringProperty(site.PropSpeechModelID); modelID != "" {
		a.endpointType = transport.EndpointCustomSpeech
		a.modelID = modelID
		return nil
	}

	if lang, _ := a.properties.StringProperty(site.PropSpeechRecoLanguage); lang != "" {
		a.endpointType = transport.EndpointBing
		a.language = lang
		return nil
	}

	a.endpointType = transport.EndpointBing
	return nil
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveRecognitionMode implements the §4.4 mode selection: explicit
// property first, then URL sniffing for a custom endpoint, then the
// Interactive default.
func (a *Adapter) resolveRecognitionMode() error {
	if modeStr, ok := a.properties.StringProperty(site.PropSpeechRecoMode); ok && strings.TrimSpace(modeStr) != "" {
		switch strings.ToUpper(strings.TrimSpace(modeStr)) {
		case "INTERACTIVE":
			a.recoMode = transport.RecognitionModeInteractive
		case "CONVERSATION":
			a.recoMode = transport.RecognitionModeConversation
		case "DICTATION":
			a.recoMode = transport.RecognitionModeDictation
		default:
			return errorsx.Wrap(fmt.Errorf("unknown Speech.RecoMode %q", modeStr), errorsx.ReasonConfigUnknownRecoMode)
		}
		return nil
	}

	if a.customEndpoint {
		url, _ := a.properties.StringProperty(site.PropEndpoint)
		switch {
		case strings.Contains(url, "/interactive/"):
			a.recoMode = transport.RecognitionModeInteractive
			return nil
		case strings.Contains(url, "/conversation/"):
			a.recoMode = transport.RecognitionModeConversation
			return nil
		case strings.Contains(url, "/dictation/"):
			a.recoMode = transport.RecognitionModeDictation
			return nil
		}
	}

	a.recoMode = transport.RecognitionModeInteractive
	return nil
}

// resolveAuthentication implements the §4.4 auth priority list.
func (a *Adapter) resolveAuthentication() error {
	if key, ok := a.properties.StringProperty(site.PropSpeechSubscriptionKey); ok && key != "" {
		a.authType = transport.AuthSubscriptionKey
		a.authCredential = key
		return nil
	}
	if token, ok := a.properties.StringProperty(site.PropSpeechAuthToken); ok && token != "" {
		a.authType = transport.AuthAuthorizationToken
		a.authCredential = token
		return nil
	}
	if rps, ok := a.properties.StringProperty(site.PropSpeechRpsToken); ok && rps != "" {
		a.authType = transport.AuthRpsToken
		a.authCredential = rps
		return nil
	}
	return errorsx.Wrap(errors.New("no authentication property set"), errorsx.ReasonConfigNoAuthentication)
}

// startTurn runs the first-audio sequence (§4.4): Ready+Idle ->
// Sending+WaitingForTurnStart, then in order (lock released): connect
// the transport if it is not already live (re-arming a continuous or
// stopped single-shot session reuses the existing connection), install
// service_chunk_size, send the speech-context message, send the WAVE
// preamble, and notify the site.
func (a *Adapter) startTurn() error {
	a.mu.Lock()
	if !guardTransition(pair{a.audio, a.protocol}, AudioReady, ProtocolIdle, ProtocolWaitingForTurnStart) {
		a.mu.Unlock()
		return nil
	}
	a.audio = AudioSending
	a.protocol = ProtocolWaitingForTurnStart
	format := a.format
	handle := a.handle
	a.mu.Unlock()

	if format == nil {
		return errorsx.Wrap(errors.New("no format set"), errorsx.ReasonProgrammerBadArgument)
	}

	if handle == nil {
		h, err := a.connectWithResilience()
		if err != nil {
			a.mu.Lock()
			a.protocol = ProtocolError
			a.mu.Unlock()
			a.site.Error(err.Error())
			return err
		}
		handle = h
	}

	a.mu.Lock()
	a.handle = handle
	chunkSize := format.ServiceChunkBytes(a.preferredChunkMs)
	a.serviceChunkSize = chunkSize
	a.outbound = newOutboundBuffer(chunkSize)
	listenFor := a.listenFor()
	suppressDGI, suppressIntent := a.suppressDGI, a.suppressIntentJSON
	intentInfo, hasIntent := a.intentInfo, a.hasIntentInfo
	a.mu.Unlock()

	ctxBody, ok, err := buildSpeechContext(listenFor, intentInfo, hasIntent, suppressDGI, suppressIntent)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonProtocolBadMessage)
	}
	if ok {
		if err := handle.SendMessage(speechContextPath, ctxBody); err != nil {
			return errorsx.Wrap(err, errorsx.ReasonTransportSend)
		}
	}

	if err := handle.WriteAudio(buildPreamble(*format)); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonTransportSend)
	}

	a.site.StartingTurn()
	a.record("turn_started", nil)
	return nil
}

func (a *Adapter) listenFor() []string {
	if a.listenForProvider == nil {
		return nil
	}
	return a.listenForProvider.ListenForList()
}

func (a *Adapter) connectWithResilience() (transport.Handle, error) {
	if !a.breaker.Allow() {
		return nil, errorsx.Wrap(errors.New("connect circuit open"), errorsx.ReasonTransportCircuitOpen)
	}
	var handle transport.Handle
	err := a.retry.Do(func() error {
		h, err := a.transportCfg.Connect(a.connectCtx, a)
		if err != nil {
			return err
		}
		handle = h
		return nil
	})
	if err != nil {
		a.breaker.OnError(resilience.RateLimitError{Provider: "transport", Message: err.Error()})
		a.logger.Warn("transport connect failed", slog.String("error", err.Error()))
		return nil, errorsx.Wrap(err, errorsx.ReasonTransportConnect)
	}
	a.breaker.OnSuccess()
	return handle, nil
}
