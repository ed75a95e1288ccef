package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	// Programmer errors: caller misused the public API.
	ReasonProgrammerUninitializedSite ReasonCode = "programmer_uninitialized_site"
	ReasonProgrammerDoubleInit        ReasonCode = "programmer_double_init"
	ReasonProgrammerBadArgument       ReasonCode = "programmer_bad_argument"

	// Configuration errors: site properties failed to resolve to a valid session.
	ReasonConfigNoAuthentication   ReasonCode = "config_no_authentication"
	ReasonConfigMissingLanguages   ReasonCode = "config_missing_target_languages"
	ReasonConfigUnknownRecoMode    ReasonCode = "config_unknown_reco_mode"
	ReasonConfigInvalidProperty    ReasonCode = "config_invalid_property"
	ReasonConfigMissingEndpointURL ReasonCode = "config_missing_endpoint_url"

	// Transport errors: the connection to the remote recognition service.
	ReasonTransportConnect     ReasonCode = "transport_connect"
	ReasonTransportSend        ReasonCode = "transport_send"
	ReasonTransportClosed      ReasonCode = "transport_closed"
	ReasonTransportCircuitOpen ReasonCode = "transport_circuit_open"
	ReasonTransportError       ReasonCode = "transport_error"

	// Protocol errors: the remote service or wire framing misbehaved.
	ReasonProtocolBadMessage      ReasonCode = "protocol_bad_message"
	ReasonProtocolUnexpectedState ReasonCode = "protocol_unexpected_state"
)
