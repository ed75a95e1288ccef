package wsclient

import "encoding/json"

// The remote service reports offsets as 100-nanosecond ticks and phrase
// text under a "DisplayText"/"Text" field depending on message type;
// these helpers extract just enough to drive routing without requiring
// every caller to unmarshal into a full typed message.

type envelope struct {
	Offset            uint64 `json:"Offset"`
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
	Text              string `json:"Text"`
	Context           struct {
		ServiceTag string `json:"serviceTag"`
	} `json:"context"`
}

func decodeEnvelope(body []byte) envelope {
	var e envelope
	_ = json.Unmarshal(body, &e)
	return e
}

func extractOffset(body []byte) uint64 {
	return decodeEnvelope(body).Offset
}

func extractText(body []byte) string {
	e := decodeEnvelope(body)
	if e.DisplayText != "" {
		return e.DisplayText
	}
	return e.Text
}

func extractStatus(body []byte) string {
	return decodeEnvelope(body).RecognitionStatus
}

func extractServiceTag(body []byte) string {
	return decodeEnvelope(body).Context.ServiceTag
}
