package dto

// ValidateItem is one scraped record submitted for validation.
type ValidateItem struct {
	Email   string            `json:"email"`
	Contact map[string]string `json:"contact,omitempty"`
}

// ValidateRequest is the payload accepted by the validation endpoint.
type ValidateRequest struct {
	Items []ValidateItem `json:"items"`
}
