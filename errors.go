package authclient

import "errors"

var (
	// ErrSubmissionInFlight is returned when Submit is called while another submission runs.
	ErrSubmissionInFlight = errors.New("submission already in flight")
	// ErrValidation is returned when input fails field validation. Field messages are in the result.
	ErrValidation = errors.New("credentials failed validation")
	// ErrDecryptFailed is returned by SubmitEncrypted when a field cannot be decrypted.
	ErrDecryptFailed = errors.New("encrypted credentials could not be decrypted")
	// ErrTransformNotConfigured is returned by SubmitEncrypted without a Transform.
	ErrTransformNotConfigured = errors.New("transform not configured")
	// ErrNavigationFailed wraps a Navigator failure after a terminal outcome.
	ErrNavigationFailed = errors.New("navigation failed")
	// ErrClientNotReady is returned by methods on a nil or unbuilt Client.
	ErrClientNotReady = errors.New("client not ready")
	// ErrThrottled is returned when the local attempt budget for an email is exhausted.
	ErrThrottled = errors.New("sign-in attempts throttled")
	// ErrVerificationSendFailed is returned when the verification code could not be sent.
	ErrVerificationSendFailed = errors.New("verification code send failed")
	// ErrStorageUnavailable wraps durable or session storage failures on flag writes.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
