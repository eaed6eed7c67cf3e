package session

// Session is the authentication state. Nil fields are absent.
//
// ClientID is non-nil only while AccessToken is non-nil and its claims
// payload decoded; a token that fails to decode leaves ClientID nil.
type Session struct {
	AccessToken  *string
	RefreshToken *string
	ClientID     any
}

// Authenticated reports whether an access token is held
func (s Session) Authenticated() bool { return s.AccessToken != nil }

// Identified reports whether a client id was derived from the access token.
// Authenticated but not identified sessions are valid.
func (s Session) Identified() bool { return s.ClientID != nil }

func (s Session) clone() Session {
	return Session{
		AccessToken:  cloneString(s.AccessToken),
		RefreshToken: cloneString(s.RefreshToken),
		ClientID:     s.ClientID,
	}
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Profile of the authenticated user. The zero value is the default profile.
type Profile struct {
	Nickname string
	Email    string
	Image    string
}
