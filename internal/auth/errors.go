package auth

import "errors"

// Flow errors. Every failure leaving the service is one of these (or a
// *ValidationError); raw store, token or provider errors never cross
// the boundary.
var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// password-less federated accounts alike, so responses cannot be
	// used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateAccount is returned when registering an email that
	// already has an account.
	ErrDuplicateAccount = errors.New("user already exists with this email")

	// ErrInvalidRefreshToken collapses every refresh verification
	// failure kind (expired, malformed, bad signature, revoked).
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrFederatedVerification is returned when a provider id_token
	// fails verification.
	ErrFederatedVerification = errors.New("federated verification failed")

	// ErrUnknownProvider is returned for a provider name with no
	// registered verifier.
	ErrUnknownProvider = errors.New("unknown federated provider")

	// ErrUpstreamUnavailable is a retryable failure reaching the
	// identity provider's key endpoint.
	ErrUpstreamUnavailable = errors.New("identity provider unavailable")

	// ErrStoreUnavailable is a retryable persistence failure.
	ErrStoreUnavailable = errors.New("user store unavailable")
)

// ValidationError reports the first violated input rule. The message
// is user-facing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AsValidation returns the ValidationError wrapped in err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
