package model

// Identity is either an authenticated user or an anonymous visitor.
// The zero value is anonymous.
type Identity struct {
	userID string
}

func Authenticated(userID string) Identity {
	return Identity{userID: userID}
}

func Anonymous() Identity {
	return Identity{}
}

func (i Identity) IsAnonymous() bool {
	return i.userID == ""
}

// UserID returns the user id and false for anonymous identities.
func (i Identity) UserID() (string, bool) {
	return i.userID, i.userID != ""
}
