// Command recoengine-demo wires a synthetic audio source, an in-memory
// site, and the in-memory recotest transport together to exercise a
// single recognition turn end to end, with scripted inbound events.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dimiro1/banner"

	"github.com/lucidspeech/recoengine/pkg/audioformat"
	"github.com/lucidspeech/recoengine/pkg/logging"
	"github.com/lucidspeech/recoengine/pkg/metrics"
	"github.com/lucidspeech/recoengine/pkg/reco"
	"github.com/lucidspeech/recoengine/pkg/recoconfig"
	"github.com/lucidspeech/recoengine/pkg/recotest"
	"github.com/lucidspeech/recoengine/pkg/redact"
)

const bannerTemplate = `{{ .AnsiColor.BrightCyan }}
 recoengine {{ .AnsiColor.Default }}
 Recognition Engine Adapter demo
{{ .AnsiColor.Default }}`

func main() {
	configPath := flag.String("config", "", "path to a recoconfig YAML/JSON file (optional)")
	flag.Parse()

	banner.Init(os.Stdout, true, true, bytes.NewBufferString(bannerTemplate))

	cfg := recoconfig.Config{}
	cfg.Adapter.ServicePreferredMs = 100
	cfg.Transport.DialTimeoutMs = 5000
	cfg.LogLevel = "info"
	cfg.LogFormat = "json"
	cfg.Observability.SamplingRate = 1.0
	cfg.SiteDefaults.SubscriptionKey = "demo-key"
	cfg.SiteDefaults.RecoLanguage = "en-US"
	cfg.Adapter.SingleShot = true
	if *configPath != "" {
		loaded, err := recoconfig.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config load failed:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config invalid:", err)
		os.Exit(1)
	}

	redact.SetEnabled(cfg.Privacy.RedactPII)
	logger := logging.InitLoggerWithFormat(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	observer := metrics.NewAsyncObserver(
		metrics.NewSamplingObserver(metrics.NewJSONLObserver(os.Stdout), cfg.Observability.SamplingRate),
		256,
	)
	defer observer.Close()

	props := recotest.NewPropertyStore()
	sd := cfg.SiteDefaults
	props.Strings["Speech.SubscriptionKey"] = sd.SubscriptionKey
	props.Strings["Speech.AuthToken"] = sd.AuthToken
	props.Strings["Speech.RpsToken"] = sd.RpsToken
	props.Strings["Speech.RecoLanguage"] = sd.RecoLanguage
	props.Strings["Speech.RecoMode"] = sd.RecoMode
	props.Strings["Speech.ModelId"] = sd.ModelID
	props.Strings["Endpoint"] = sd.Endpoint
	props.Strings["Translation.FromLanguage"] = sd.TranslationFromLanguage
	props.Strings["Translation.ToLanguages"] = sd.TranslationToLanguages
	props.Strings["Translation.Voice"] = sd.TranslationVoice
	props.Bools["INTERNAL-NoDGI"] = sd.NoDGI
	props.Bools["INTERNAL-NoIntentJson"] = sd.NoIntentJSON
	props.Bools["INTERNAL-ResetAfterError"] = cfg.Adapter.ResetAfterError

	mockSite := &recotest.Site{}
	mockTransport := recotest.NewTransport()

	adapter, err := reco.New(mockSite, props, recotest.ListenFor{"weather", "{alarm:AlarmGrammar}"}, recotest.Intent{}, nil, mockTransport,
		reco.WithLogger(logger),
		reco.WithMetrics(observer),
		reco.WithPreferredChunkMillis(cfg.Adapter.ServicePreferredMs),
		reco.WithConnectContext(context.Background()),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "adapter init failed:", err)
		os.Exit(1)
	}

	if err := adapter.SetAdapterMode(cfg.Adapter.SingleShot); err != nil {
		fmt.Fprintln(os.Stderr, "set mode failed:", err)
		os.Exit(1)
	}
	format := audioformat.Format{
		FormatTag:      audioformat.TagPCM,
		Channels:       1,
		SamplesPerSec:  16000,
		BitsPerSample:  16,
		BlockAlign:     2,
		AvgBytesPerSec: 32000,
	}
	if err := adapter.SetFormat(format); err != nil {
		fmt.Fprintln(os.Stderr, "set format failed:", err)
		os.Exit(1)
	}

	silence := make([]byte, 3200)
	if err := adapter.ProcessAudio(silence); err != nil {
		fmt.Fprintln(os.Stderr, "process audio failed:", err)
		os.Exit(1)
	}
	if err := adapter.ProcessAudio(nil); err != nil {
		fmt.Fprintln(os.Stderr, "flush failed:", err)
		os.Exit(1)
	}

	callbacks := mockTransport.Callbacks()
	callbacks.OnTurnStart("demo-tag")
	callbacks.OnSpeechStartDetected(0)
	callbacks.OnSpeechHypothesis(0, "hello", `{"DisplayText":"hello"}`)
	callbacks.OnSpeechPhrase(0, "Success", "hello world", `{"DisplayText":"hello world"}`)
	callbacks.OnSpeechEndDetected(3200)
	callbacks.OnTurnEnd()

	time.Sleep(10 * time.Millisecond)
	for _, name := range mockSite.MethodNames() {
		fmt.Println(name)
	}

	if err := adapter.StopFormat(); err != nil {
		fmt.Fprintln(os.Stderr, "stop format failed:", err)
		os.Exit(1)
	}

	_ = adapter.Term()
}
