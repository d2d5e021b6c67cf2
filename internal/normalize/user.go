package normalize

import (
	"errors"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
)

// ErrMissingUser is returned when a payload carries no user object.
var ErrMissingUser = errors.New("missing user in response")

// ErrInvalidLogin is returned when a login payload lacks the token or user.
var ErrInvalidLogin = errors.New("invalid login response")

// User normalizes an API user object.
//
//	id        id, _id
//	firstName firstName, givenName
//	lastName  lastName, familyName
//	phone     phone, phoneNumber
//	address   address object, else empty
func User(raw any) (*domain.User, error) {
	m, ok := Object(raw)
	if !ok {
		return nil, ErrMissingUser
	}

	u := &domain.User{
		ID:        FirstField(m, "id", "_id"),
		Email:     Field(m, "email"),
		FirstName: FirstField(m, "firstName", "givenName"),
		LastName:  FirstField(m, "lastName", "familyName"),
		Phone:     FirstField(m, "phone", "phoneNumber"),
	}
	if addr, ok := Object(m["address"]); ok {
		u.Address = domain.Address{
			Street:  Field(addr, "street"),
			City:    Field(addr, "city"),
			State:   Field(addr, "state"),
			ZipCode: Field(addr, "zipCode"),
			Country: Field(addr, "country"),
		}
	}
	return u, nil
}

// LoginResult extracts the token and user from a login response. The
// payload is read from "data" when present, otherwise from the root; the
// token falls back to tokens.access_token.
func LoginResult(root any) (string, *domain.User, error) {
	block := DataOrRoot(root)
	m, _ := Object(block)

	token := Field(m, "token")
	if token == "" {
		if v, ok := Lookup(m, "tokens", "access_token"); ok {
			token = String(v)
		}
	}
	rawUser, hasUser := Lookup(m, "user")
	if token == "" || !hasUser {
		return "", nil, ErrInvalidLogin
	}

	user, err := User(rawUser)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ProfileUser extracts the user from a profile response: "data" or the root,
// unwrapping a nested "user" member when present.
func ProfileUser(root any) (*domain.User, error) {
	block := DataOrRoot(root)
	if nested, ok := Lookup(block, "user"); ok {
		if _, isObj := Object(nested); isObj {
			block = nested
		}
	}
	return User(block)
}
