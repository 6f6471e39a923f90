package httpdto

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}
