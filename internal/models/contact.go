package models

// ContactMessage is a visitor submission from the public contact form.
// Website is a honeypot field that humans leave empty.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Website string `json:"website,omitempty"`
}

// Identity is the best-effort caller identity taken from request headers.
type Identity struct {
	IPAddress string
	UserAgent string
}
