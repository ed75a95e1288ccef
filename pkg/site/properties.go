package site

// Recognized property names, matching the wire-facing configuration
// surface the orchestrator reads from a PropertyStore.
const (
	PropEndpoint                 = "Endpoint"
	PropTranslationFromLanguage  = "Translation.FromLanguage"
	PropTranslationToLanguages   = "Translation.ToLanguages"
	PropTranslationVoice         = "Translation.Voice"
	PropSpeechModelID            = "Speech.ModelId"
	PropSpeechRecoLanguage       = "Speech.RecoLanguage"
	PropSpeechRecoMode           = "Speech.RecoMode"
	PropSpeechSubscriptionKey    = "Speech.SubscriptionKey"
	PropSpeechAuthToken          = "Speech.AuthToken"
	PropSpeechRpsToken           = "Speech.RpsToken"
	PropInternalNoDGI            = "INTERNAL-NoDGI"
	PropInternalNoIntentJSON     = "INTERNAL-NoIntentJson"
	PropInternalResetAfterError  = "INTERNAL-ResetAfterError"
)

// Result property keys. These are attached to a Result's Properties
// map rather than being dedicated struct fields, mirroring the
// original's named-property result surface.
const (
	ResultPropJSON                      = "RESULT_Json"
	ResultPropLanguageUnderstandingJSON = "RESULT_LanguageUnderstandingJson"
)

const EndpointCortana = "CORTANA"
