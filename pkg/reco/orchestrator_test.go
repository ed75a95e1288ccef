package reco

import (
	"testing"

	"github.com/lucidspeech/recoengine/pkg/recotest"
	"github.com/lucidspeech/recoengine/pkg/site"
	"github.com/lucidspeech/recoengine/pkg/transport"
)

func TestResolveEndpointPriority(t *testing.T) {
	cases := []struct {
		name         string
		props        map[string]string
		wantType     transport.EndpointType
		wantErr      bool
		wantCustom   bool
		wantURL      string
		wantLanguage string
	}{
		{
			name:     "cortana literal wins over everything",
			props:    map[string]string{site.PropEndpoint: site.EndpointCortana, site.PropSpeechModelID: "ignored"},
			wantType: transport.EndpointCDSDK,
		},
		{
			name:       "custom endpoint wins over translation and model id",
			props:      map[string]string{site.PropEndpoint: "wss://example.invalid/x", site.PropTranslationFromLanguage: "en-US", site.PropSpeechModelID: "ignored"},
			wantType:   transport.EndpointCustom,
			wantCustom: true,
			wantURL:    "wss://example.invalid/x",
		},
		{
			name: "translation requires ToLanguages",
			props: map[string]string{
				site.PropTranslationFromLanguage: "en-US",
			},
			wantErr: true,
		},
		{
			name: "translation wins over model id",
			props: map[string]string{
				site.PropTranslationFromLanguage: "en-US",
				site.PropTranslationToLanguages:  "fr-FR, de-DE",
				site.PropSpeechModelID:           "ignored",
			},
			wantType: transport.EndpointTranslation,
		},
		{
			name:     "custom speech via model id",
			props:    map[string]string{site.PropSpeechModelID: "abc123"},
			wantType: transport.EndpointCustomSpeech,
		},
		{
			name:         "reco language selects default bing endpoint parameterized by language",
			props:        map[string]string{site.PropSpeechRecoLanguage: "fr-FR"},
			wantType:     transport.EndpointBing,
			wantLanguage: "fr-FR",
		},
		{
			name:     "default bing",
			props:    map[string]string{},
			wantType: transport.EndpointBing,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			props := recotest.NewPropertyStore()
			for k, v := range tc.props {
				props.Strings[k] = v
			}
			a := &Adapter{properties: props}
			err := a.resolveEndpoint()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveEndpoint: %v", err)
			}
			if a.endpointType != tc.wantType {
				t.Fatalf("endpointType = %s, want %s", a.endpointType, tc.wantType)
			}
			if a.customEndpoint != tc.wantCustom {
				t.Fatalf("customEndpoint = %v, want %v", a.customEndpoint, tc.wantCustom)
			}
			if a.endpointURL != tc.wantURL {
				t.Fatalf("endpointURL = %q, want %q", a.endpointURL, tc.wantURL)
			}
			if a.language != tc.wantLanguage {
				t.Fatalf("language = %q, want %q", a.language, tc.wantLanguage)
			}
		})
	}
}

// Custom-URL recognition-mode detection: with no explicit Speech.RecoMode
// property, a custom endpoint URL containing "/dictation/" selects
// dictation mode.
func TestResolveRecognitionModeSniffsCustomURL(t *testing.T) {
	props := recotest.NewPropertyStore()
	props.Strings[site.PropEndpoint] = "wss://example.invalid/speech/recognition/dictation/cognitiveservices/v1"
	a := &Adapter{properties: props}
	if err := a.resolveEndpoint(); err != nil {
		t.Fatalf("resolveEndpoint: %v", err)
	}
	if !a.customEndpoint {
		t.Fatal("expected customEndpoint to be true")
	}
	if err := a.resolveRecognitionMode(); err != nil {
		t.Fatalf("resolveRecognitionMode: %v", err)
	}
	if a.recoMode != transport.RecognitionModeDictation {
		t.Fatalf("recoMode = %s, want Dictation", a.recoMode)
	}
}

func TestResolveRecognitionModeExplicitPropertyWinsOverURL(t *testing.T) {
	props := recotest.NewPropertyStore()
	props.Strings[site.PropEndpoint] = "wss://example.invalid/speech/recognition/dictation/cognitiveservices/v1"
	props.Strings[site.PropSpeechRecoMode] = "conversation"
	a := &Adapter{properties: props}
	if err := a.resolveEndpoint(); err != nil {
		t.Fatalf("resolveEndpoint: %v", err)
	}
	if err := a.resolveRecognitionMode(); err != nil {
		t.Fatalf("resolveRecognitionMode: %v", err)
	}
	if a.recoMode != transport.RecognitionModeConversation {
		t.Fatalf("recoMode = %s, want Conversation", a.recoMode)
	}
}

func TestResolveRecognitionModeRejectsUnknownValue(t *testing.T) {
	props := recotest.NewPropertyStore()
	props.Strings[site.PropSpeechRecoMode] = "bogus"
	a := &Adapter{properties: props}
	if err := a.resolveRecognitionMode(); err == nil {
		t.Fatal("expected an error for an unknown Speech.RecoMode value")
	}
}

func TestResolveRecognitionModeDefaultsToInteractive(t *testing.T) {
	props := recotest.NewPropertyStore()
	a := &Adapter{properties: props}
	if err := a.resolveRecognitionMode(); err != nil {
		t.Fatalf("resolveRecognitionMode: %v", err)
	}
	if a.recoMode != transport.RecognitionModeInteractive {
		t.Fatalf("recoMode = %s, want Interactive", a.recoMode)
	}
}

func TestResolveAuthenticationPriority(t *testing.T) {
	cases := []struct {
		name     string
		props    map[string]string
		wantType transport.AuthType
		wantErr  bool
	}{
		{
			name: "subscription key wins over everything",
			props: map[string]string{
				site.PropSpeechSubscriptionKey: "sub-key",
				site.PropSpeechAuthToken:       "token",
				site.PropSpeechRpsToken:        "rps",
			},
			wantType: transport.AuthSubscriptionKey,
		},
		{
			name: "auth token wins over rps token",
			props: map[string]string{
				site.PropSpeechAuthToken: "token",
				site.PropSpeechRpsToken:  "rps",
			},
			wantType: transport.AuthAuthorizationToken,
		},
		{
			name:     "rps token as last resort",
			props:    map[string]string{site.PropSpeechRpsToken: "rps"},
			wantType: transport.AuthRpsToken,
		},
		{
			name:    "no credentials is a configuration error",
			props:   map[string]string{},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			props := recotest.NewPropertyStore()
			for k, v := range tc.props {
				props.Strings[k] = v
			}
			a := &Adapter{properties: props}
			err := a.resolveAuthentication()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveAuthentication: %v", err)
			}
			if a.authType != tc.wantType {
				t.Fatalf("authType = %v, want %v", a.authType, tc.wantType)
			}
		})
	}
}
