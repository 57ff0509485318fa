/*
Package platformsdk provides a client SDK for the platform API.

The package is organized around two main types:

  - Client: unauthenticated operations and the entry points that create
    authenticated sessions
  - Session: authenticated operations with automatic token refresh

Create a Client to interact with public endpoints and authenticate:

	client := platformsdk.NewClient("https://platform.example.com")

	// Check service health
	health, err := client.Liveness(ctx)

	// Register a new account
	reg, err := client.Register(ctx, platformsdk.RegisterRequest{
		Email:    "user@example.com",
		Username: "user",
		Password: "hunter2hunter2",
	})

	// Activate it with the verification token from the delivery channel
	_, err = client.VerifyEmail(ctx, reg.VerificationToken)

	// Authenticate to create a session
	session, err := client.AuthenticateWithPassword(ctx, "user@example.com", "hunter2hunter2")

Use a Session for authenticated operations. Sessions transparently refresh
the access token shortly before it expires:

	me, err := session.Me(ctx)

	me, err = session.UpdateProfile(ctx, platformsdk.ProfileUpdate{
		Nickname: platformsdk.String("Hunter"),
	})

	err = session.ChangePassword(ctx, "hunter2hunter2", "correct-horse-battery")

Administrative operations require the authenticated account to carry the
admin role; the server rejects them with 403 otherwise:

	stats, err := session.AccountStats(ctx)
	err = session.SuspendAccount(ctx, accountID, "terms violation")

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status
code and the server's error envelope:

	_, err := client.AuthenticateWithPassword(ctx, email, password)
	var apiErr *platformsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		// bad credentials
	}
*/
package platformsdk
