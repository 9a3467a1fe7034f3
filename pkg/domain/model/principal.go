package model

// Principal is the authenticated caller of the HTTP API
type Principal struct {
	Subject string `json:"sub"`
	Email   string `json:"email" masq:"secret"`
	Name    string `json:"name"`
}
