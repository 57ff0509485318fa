package domain

// TokenPair is what a successful authentication returns: a short-lived
// signed access token and a longer-lived signed refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // always "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime in seconds
}

// TokenPurpose scopes a persisted single-use token to the one flow that may
// consume it.
type TokenPurpose string

const (
	PurposeEmailVerification TokenPurpose = "verify"
	PurposePasswordReset     TokenPurpose = "reset"
)
