package domain

// Principal is the authenticated user returned by getUser.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int       `json:"expires_in"`
	User        Principal `json:"user"`
}
