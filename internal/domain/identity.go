package domain

import "strings"

// Identity is the client-supplied user identity. It is trusted as-is.
type Identity struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// UserKey derives the storage namespace for an identity.
// Email wins over nickname; both are compared case-insensitively.
func (i Identity) UserKey() (string, error) {
	if email := strings.ToLower(strings.TrimSpace(i.Email)); email != "" {
		return email, nil
	}
	if nick := strings.ToLower(strings.TrimSpace(i.Nickname)); nick != "" {
		return nick, nil
	}
	return "", ErrInvalidIdentity
}

// DisplayName returns the name shown to the user
func (i Identity) DisplayName() string {
	if nick := strings.TrimSpace(i.Nickname); nick != "" {
		return nick
	}
	return strings.TrimSpace(i.Email)
}

// ParseIdentity interprets a single user string as an email when it contains
// an @ and as a nickname otherwise
func ParseIdentity(user string) Identity {
	user = strings.TrimSpace(user)
	if strings.Contains(user, "@") {
		return Identity{Email: user}
	}
	return Identity{Nickname: user}
}
