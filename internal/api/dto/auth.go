package dto

import "github.com/hugh/member-sync/internal/api/validation"

// CredentialsRequest is the body of both sign-up and sign-in.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r CredentialsRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if err := validation.CheckEmail(r.Email); err != nil {
		errors["email"] = "Invalid email address"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if err := validation.CheckPassword(r.Password); err != nil {
		errors["password"] = "Password must be between 6 and 128 characters"
	}

	return errors
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
