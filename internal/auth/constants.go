package auth

const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"

	jsonKeyMessage = "message"

	headerAuthorization = "Authorization"

	bearerScheme    = "bearer"
	authHeaderParts = 2
)

const (
	msgNotAuthenticated        = "Not authenticated"
	msgInvalidOrExpiredToken   = "Invalid or expired token"
	msgUserNotAuthenticated    = "user not authenticated"
	msgInvalidUserIDCtx        = "invalid user ID in context"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
)
