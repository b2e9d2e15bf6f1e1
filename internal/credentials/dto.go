package credentials

import "time"

// CredentialResponse is the outward-facing representation of a credential.
// DocumentURL is the only place a cid is interpreted, and only by prefixing
// the configured gateway; the address itself stays opaque.
type CredentialResponse struct {
	CredentialID string    `json:"credentialId"`
	Type         string    `json:"type"`
	Institution  string    `json:"institution,omitempty"`
	HolderName   string    `json:"holderName"`
	CID          string    `json:"cid"`
	DocumentURL  string    `json:"documentUrl,omitempty"`
	Year         int       `json:"year"`
	MimeType     string    `json:"mimeType,omitempty"`
	SizeBytes    int64     `json:"sizeBytes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToResponse converts a credential for presentation, deriving the display year
// from the record timestamp.
func ToResponse(cred Credential, gatewayURL string) CredentialResponse {
	resp := CredentialResponse{
		CredentialID: cred.ID,
		Type:         cred.Type,
		Institution:  cred.Institution,
		HolderName:   cred.HolderName,
		CID:          cred.CID,
		Year:         cred.CreatedAt.Year(),
		MimeType:     cred.MimeType,
		SizeBytes:    cred.SizeBytes,
		CreatedAt:    cred.CreatedAt,
	}
	if gatewayURL != "" && cred.CID != "" {
		resp.DocumentURL = gatewayURL + "/" + cred.CID
	}
	return resp
}
