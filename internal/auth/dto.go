package auth

// LoginDTO is the token request body.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Scope    string `json:"scope"`
}

// AccessTokenResponse is the token grant body.
type AccessTokenResponse struct {
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	AccessToken string `json:"access_token"`
}
