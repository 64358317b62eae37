package sendinvite

type ErrorResponse struct {
	Error string `json:"error"`
}

type InviteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}
