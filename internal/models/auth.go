package models

// Admin is the authenticated caller on /admin routes.
type Admin struct {
	UserID string
	Email  string
}

// LoginRequest represents the admin sign-in form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// Session is the token bundle returned by the auth provider.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Email        string `json:"email"`
}
