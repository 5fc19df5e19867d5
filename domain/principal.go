package domain

// Principal is the authenticated identity on whose behalf a mutation is
// performed. It is produced by the auth middleware from a verified session
// and passed explicitly into every mutating service method, so the feed
// subsystem never digs the caller's identity out of anything untyped.
type Principal struct {
	ID int
}

// Valid reports whether the principal references a real user ID.
func (p Principal) Valid() bool {
	return p.ID > 0
}
