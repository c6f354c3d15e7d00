package models

// VerificationResult is the normalized outcome of an identity lookup on a
// remote platform. It is transient and never persisted.
type VerificationResult struct {
	Exists      bool   `json:"exists"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	ProfileURL  string `json:"profile_url,omitempty"`
	Error       string `json:"error,omitempty"`
}
