package identity

import "context"

// Profile is the registration/contact data the identity service holds for
// one participant. Fields other than ID may be empty.
type Profile struct {
	ID         string `json:"-"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Country    string `json:"country"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
	JobRole    string `json:"jobRole"`

	// ConnectWithPartners is the registration opt-in flag, serialized
	// upstream as the strings "true"/"false".
	ConnectWithPartners string `json:"connectWithPartners"`
}

// Directory resolves registration profiles in bulk. Callers must pass a
// de-duplicated id set; ids unknown upstream are simply absent from the
// result, which is the exclusion signal rather than an error.
type Directory interface {
	GetProfiles(ctx context.Context, sessionKey string, ids []string) (map[string]Profile, error)
}

// SessionKeySource yields an opaque session key accepted by Directory calls.
type SessionKeySource interface {
	SessionKey() (string, error)
}
