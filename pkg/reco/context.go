package reco

import (
	"encoding/json"
	"strings"

	"github.com/lucidspeech/recoengine/pkg/site"
)

type dgiItem struct {
	Text string `json:"Text"`
}

type dgiGroup struct {
	Type  string    `json:"Type"`
	Items []dgiItem `json:"Items"`
}

type dgiPayload struct {
	Groups            []dgiGroup `json:"Groups,omitempty"`
	ReferenceGrammars []string   `json:"ReferenceGrammars,omitempty"`
}

func (p dgiPayload) empty() bool {
	return len(p.Groups) == 0 && len(p.ReferenceGrammars) == 0
}

type intentPayload struct {
	Provider string `json:"provider"`
	ID       string `json:"id"`
	Key      string `json:"key"`
}

type speechContextPayload struct {
	DGI    *dgiPayload    `json:"dgi,omitempty"`
	Intent *intentPayload `json:"intent,omitempty"`
}

// isReferenceGrammar reports whether a listen-for item matches the
// {name:ref} shape: braces at both ends, exactly one colon inside, and
// a length greater than 3 (so "{:}" does not qualify).
func isReferenceGrammar(item string) bool {
	if len(item) <= 3 {
		return false
	}
	if !strings.HasPrefix(item, "{") || !strings.HasSuffix(item, "}") {
		return false
	}
	inner := item[1 : len(item)-1]
	if strings.Count(inner, ":") != 1 {
		return false
	}
	return true
}

// buildDGIPayload partitions the listen-for list into reference
// grammars and generic items, per §4.3's production rules.
func buildDGIPayload(listenFor []string) dgiPayload {
	var out dgiPayload
	var items []dgiItem
	for _, entry := range listenFor {
		if isReferenceGrammar(entry) {
			inner := entry[1 : len(entry)-1]
			out.ReferenceGrammars = append(out.ReferenceGrammars, strings.Replace(inner, ":", "/", 1))
			continue
		}
		items = append(items, dgiItem{Text: entry})
	}
	if len(items) > 0 {
		out.Groups = []dgiGroup{{Type: "Generic", Items: items}}
	}
	return out
}

// buildIntentPayload produces the intent descriptor only when all
// three fields are populated.
func buildIntentPayload(info site.IntentInfo) (intentPayload, bool) {
	if info.Provider == "" || info.ID == "" || info.Key == "" {
		return intentPayload{}, false
	}
	return intentPayload{Provider: info.Provider, ID: info.ID, Key: info.Key}, true
}

// buildSpeechContext assembles the final speech.context JSON body.
// It returns ok=false when both fragments are absent or suppressed,
// meaning no context message should be sent at all.
func buildSpeechContext(listenFor []string, intent site.IntentInfo, hasIntent bool, suppressDGI, suppressIntent bool) ([]byte, bool, error) {
	var payload speechContextPayload

	if !suppressDGI {
		dgi := buildDGIPayload(listenFor)
		if !dgi.empty() {
			payload.DGI = &dgi
		}
	}
	if !suppressIntent && hasIntent {
		if ip, ok := buildIntentPayload(intent); ok {
			payload.Intent = &ip
		}
	}

	if payload.DGI == nil && payload.Intent == nil {
		return nil, false, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

const speechContextPath = "speech.context"
