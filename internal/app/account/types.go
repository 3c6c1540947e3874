package account

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token       string `json:"token"`
	Username    string `json:"username"`
	CompanyName string `json:"company_name"`
	IsAdmin     bool   `json:"is_admin"`
}
