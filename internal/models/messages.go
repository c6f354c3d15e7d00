package models

import "fmt"

// User-facing messages for linkage outcomes. Only the outermost orchestration
// layers (link flow, OAuth callback) hand these to the client; inner layers
// deal in sentinel errors and result values.

// UserNotFoundMessage is shown when a searched handle does not exist.
func UserNotFoundMessage(p Platform) string {
	return fmt.Sprintf("User not found on %s", p.DisplayName())
}

// AlreadyConnectedMessage is shown when a duplicate linkage is attempted.
func AlreadyConnectedMessage(p Platform) string {
	return fmt.Sprintf("This %s account is already connected to your profile.", p.DisplayName())
}

// NotLoggedInMessage is shown when an OAuth callback arrives without an
// authenticated owner.
func NotLoggedInMessage(p Platform) string {
	return fmt.Sprintf("You are not logged in. Please log in first and try connecting your %s account again.", p.DisplayName())
}

// AuthorizationCancelledMessage is shown when the user denied the
// authorization request on the platform's consent page.
func AuthorizationCancelledMessage(p Platform) string {
	return fmt.Sprintf("You cancelled the %s authorization. Please try again if you want to connect your account.", p.DisplayName())
}

// MissingCodeMessage is shown when the redirect carries no authorization code.
func MissingCodeMessage(p Platform) string {
	return fmt.Sprintf("Authorization failed: Missing authorization code from %s.", p.DisplayName())
}
