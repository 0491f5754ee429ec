package user

// Principal is the authenticated caller as supplied by the account
// service. Opaque to the engine; identifiers are never parsed.
type Principal struct {
	UserID      string
	DisplayName string
}
