package request

// TokenRequest exchanges an agent key for an access token
type TokenRequest struct {
	ClientID string `json:"client_id" binding:"required,max=100"`
	Key      string `json:"key" binding:"required,min=8"`
}
