package entity

import "net/http"

// AdminGroup is the Cognito group granting cross-user visibility.
const AdminGroup = "Administrators"

// Identity is the caller extracted from the gateway-validated
// identity headers. It is attached to the request context by the
// identity middleware.
type Identity struct {
	UserID   string
	Email    string
	Username string
	Groups   []string
}

func (i *Identity) IsAdmin() bool {
	for _, g := range i.Groups {
		if g == AdminGroup {
			return true
		}
	}
	return false
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r *LoginRequest) IsValid() error {
	if r.Email == "" {
		return ErrFieldRequired("email")
	}
	if r.Password == "" {
		return ErrFieldRequired("password")
	}
	return nil
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int32  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

func (r *RegisterRequest) IsValid() error {
	if r.Email == "" {
		return ErrFieldRequired("email")
	}
	if r.Password == "" {
		return ErrFieldRequired("password")
	}
	return nil
}

type RegisterResponse struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// HTTPStatus marks account creation as 201.
func (r *RegisterResponse) HTTPStatus() int {
	return http.StatusCreated
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

func (r *ForgotPasswordRequest) IsValid() error {
	if r.Email == "" {
		return ErrFieldRequired("email")
	}
	return nil
}

type ForgotPasswordResponse struct {
	Message string `json:"message"`
}
