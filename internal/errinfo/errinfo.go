// Package errinfo defines the structured error payloads surfaced at the RPC
// and CLI boundary. The core stages never abort on recoverable problems;
// these payloads cover the failures that do end an instruction.
package errinfo

type ErrorInfo struct {
	ErrorCode  string `json:"error_code"`
	Phase      string `json:"phase,omitempty"`
	Retryable  bool   `json:"retryable"`
	ProviderID string `json:"provider_id,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

const (
	CodeProviderNotConfigured = "PROVIDER_NOT_CONFIGURED"
	CodeProviderAuthFailed    = "PROVIDER_AUTH_FAILED"
	CodeProviderUnavailable   = "PROVIDER_UNAVAILABLE"
	CodeEgressBlocked         = "EGRESS_BLOCKED_BY_POLICY"
	CodeNoOperations          = "NO_OPERATIONS_RECOGNIZED"
	CodeDocumentLoadFailed    = "DOCUMENT_LOAD_FAILED"
	CodeDocumentSaveFailed    = "DOCUMENT_SAVE_FAILED"
	CodeUserCanceled          = "USER_CANCELED"
)

const (
	PhaseDocument    = "document"
	PhaseInstruction = "instruction"
	PhaseProvider    = "provider"
)

func ProviderNotConfigured(providerID string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode:  CodeProviderNotConfigured,
		Phase:      PhaseProvider,
		Retryable:  false,
		ProviderID: providerID,
	}
}

func ProviderAuthFailed(providerID string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode:  CodeProviderAuthFailed,
		Phase:      PhaseProvider,
		Retryable:  false,
		ProviderID: providerID,
	}
}

func ProviderUnavailable(providerID, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode:  CodeProviderUnavailable,
		Phase:      PhaseProvider,
		Retryable:  true,
		ProviderID: providerID,
		Detail:     detail,
	}
}

func EgressBlocked(providerID, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode:  CodeEgressBlocked,
		Phase:      PhaseProvider,
		Retryable:  false,
		ProviderID: providerID,
		Detail:     detail,
	}
}

func NoOperations(detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeNoOperations,
		Phase:     PhaseInstruction,
		Retryable: true,
		Detail:    detail,
	}
}

func DocumentLoadFailed(detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeDocumentLoadFailed,
		Phase:     PhaseDocument,
		Retryable: false,
		Detail:    detail,
	}
}

func DocumentSaveFailed(detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeDocumentSaveFailed,
		Phase:     PhaseDocument,
		Retryable: false,
		Detail:    detail,
	}
}

func UserCanceled(detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeUserCanceled,
		Phase:     PhaseInstruction,
		Retryable: false,
		Detail:    detail,
	}
}
