package session

import (
	"github.com/ariefcatur/go-storefront/internal/jsonid"
	"github.com/ariefcatur/go-storefront/internal/validation"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity is one account of the roster. Password is stored and compared in
// plain text; the demo login is not a security boundary.
type Identity struct {
	ID       jsonid.ID `json:"id"`
	Username string    `json:"username"`
	Password string    `json:"password,omitempty"`
	Role     Role      `json:"role"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Address  string    `json:"address,omitempty"`
	Phone    string    `json:"phone,omitempty"`
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Public is the identity without its password, for handing to views.
func (i Identity) Public() Identity {
	i.Password = ""
	return i
}

// demoRoster seeds an empty roster.
func demoRoster() []Identity {
	return []Identity{
		{ID: "1", Username: "admin", Password: "admin123", Role: RoleAdmin, Email: "admin@example.com", Name: "Admin User"},
		{ID: "2", Username: "user", Password: "user123", Role: RoleUser, Email: "user@example.com", Name: "Regular User",
			Address: "123 User St, City", Phone: "555-1234"},
	}
}

type RegistrationForm struct {
	Username        string `json:"username" validate:"notblank"`
	Password        string `json:"password" validate:"notblank,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Email           string `json:"email" validate:"notblank,email"`
	Name            string `json:"name" validate:"notblank"`
	Address         string `json:"address,omitempty"`
	Phone           string `json:"phone,omitempty"`
}

var registrationMessages = validation.Messages{
	"password.min":    "Password must be at least 6 characters long",
	"confirmPassword": "Passwords do not match",
}

func (f RegistrationForm) Validate() error {
	return validation.Struct(f, registrationMessages)
}

type ProfileUpdate struct {
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"notblank,email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (u ProfileUpdate) Validate() error {
	return validation.Struct(u, nil)
}

type Reason string

const (
	ReasonUsernameExists Reason = "username exists"
	ReasonEmailExists    Reason = "email exists"
)

type RegistrationError struct {
	Reason Reason
}

func (e *RegistrationError) Error() string {
	switch e.Reason {
	case ReasonUsernameExists:
		return "Username already exists"
	case ReasonEmailExists:
		return "Email already exists"
	}
	return "registration rejected: " + string(e.Reason)
}
