package platformsdk

// Account is the API representation of an account.
type Account struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Nickname      string `json:"nickname,omitempty"`
	Phone         string `json:"phone,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	Bio           string `json:"bio,omitempty"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     string `json:"created_at"`
}

// TokenResponse is a signed access/refresh token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// RegisterRequest creates a password account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResult is a freshly registered account plus the raw verification
// token for the delivery channel. The account starts in PENDING and cannot
// log in until the email is verified.
type RegisterResult struct {
	Account Account `json:"account"`

	VerificationToken string `json:"verification_token"`
}

// ExternalLoginRequest reconciles an externally authenticated identity.
// Email and Username are only used when the identity is seen for the first
// time and a local account has to be created.
type ExternalLoginRequest struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
}

type authResponse struct {
	Account Account       `json:"account"`
	Tokens  TokenResponse `json:"tokens"`
}

type singleUseTokenResponse struct {
	Token string `json:"token,omitempty"`
}

// ProfileUpdate carries partial profile changes. Nil fields are left
// untouched; use String("") to clear a field.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Nickname  *string `json:"nickname,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// String returns a pointer to s, for ProfileUpdate fields.
func String(s string) *string { return &s }

// AccountListOptions filter the admin account listing. Zero values are
// ignored.
type AccountListOptions struct {
	Status   string
	Role     string
	Verified *bool
	Limit    int
	Offset   int
}

// AccountStats are the aggregate counts reported to administrators.
type AccountStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Active    int64 `json:"active"`
	Inactive  int64 `json:"inactive"`
	Suspended int64 `json:"suspended"`
	Deleted   int64 `json:"deleted"`
	Admins    int64 `json:"admins"`
	Verified  int64 `json:"verified"`
}

// Organization is an API organization record.
type Organization struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// OrganizationRequest creates or replaces an organization.
type OrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Workspace is an API workspace record. Dates are RFC 3339 strings; the
// zero time renders as "0001-01-01T00:00:00Z" when unset.
type Workspace struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	OwnerID     string `json:"owner_id"`
	OrgID       string `json:"org_id,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// WorkspaceRequest creates or replaces a workspace. Dates are RFC 3339
// strings; empty means unset.
type WorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	OrgID       string `json:"org_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// Project is an API project record.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	OwnerID     string `json:"owner_id"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ProjectRequest creates or replaces a project.
type ProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	WorkspaceID string `json:"workspace_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// Health is the /livez and /readyz response.
type Health struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Version  string `json:"version"`
	Database string `json:"database,omitempty"`
}
