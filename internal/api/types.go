package api

// ThemeResponse is the JSON representation of the caller's theme.
type ThemeResponse struct {
	Theme      string `json:"theme"`
	Persistent bool   `json:"persistent"`
}

// ContactRequest is the request body for POST /api/v1/contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactResponse reports the outcome of a send attempt.
type ContactResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
