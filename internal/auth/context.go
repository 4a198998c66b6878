package auth

// Gin context keys for the identity the JWT middleware resolves. Declared
// here, next to the claims they mirror, so handlers and middleware share one
// definition.
const (
	// ContextUserID holds the authenticated user's uuid.UUID.
	ContextUserID = "user_id"
	// ContextUserEmail holds the authenticated user's email.
	ContextUserEmail = "user_email"
	// ContextSuperAdmin holds the platform super-admin flag.
	ContextSuperAdmin = "is_super_admin"
)
