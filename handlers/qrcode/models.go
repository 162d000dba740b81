package qrcode

// Scan outcome statuses. Business-rule outcomes are returned as HTTP 200
// with one of these statuses so the client can render a friendly state.
const (
	StatusSuccess          = "success"
	StatusNotFound         = "not_found"
	StatusSelfConnect      = "self_connect"
	StatusAlreadyConnected = "already_connected"
	StatusError            = "error"
)

// GenerateResponse is the body returned by the generate endpoint
type GenerateResponse struct {
	Status   string `json:"status"`
	QRCodeID string `json:"qr_code_id"`
	Name     string `json:"name"`
}

// ScanRequest is the body accepted by the scan endpoint
type ScanRequest struct {
	QRCodeID string `json:"qr_code_id"`
}

// ConnectedProfile is the public snapshot of the scanned user returned
// for display after a successful (or duplicate) scan
type ConnectedProfile struct {
	ID          string   `json:"id"`
	FullName    string   `json:"full_name"`
	Title       *string  `json:"title,omitempty"`
	Company     *string  `json:"company,omitempty"`
	Bio         *string  `json:"bio,omitempty"`
	Skills      []string `json:"skills"`
	Interests   []string `json:"interests"`
	LinkedinURL *string  `json:"linkedin_url,omitempty"`
	TwitterURL  *string  `json:"twitter_url,omitempty"`
	WebsiteURL  *string  `json:"website_url,omitempty"`
	AvatarURL   *string  `json:"avatar_url,omitempty"`
}

// ScanResponse is the body returned by the scan endpoint
type ScanResponse struct {
	Status               string            `json:"status"`
	Message              string            `json:"message"`
	ConnectedUserName    string            `json:"connectedUserName,omitempty"`
	ConnectedUserProfile *ConnectedProfile `json:"connectedUserProfile,omitempty"`
}
