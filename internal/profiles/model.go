package profiles

import "time"

// Profile is a user's portal record: identity-provider display attributes plus
// the ordered list of credential ids the user holds. Each id references a
// credential record that may or may not still resolve.
type Profile struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	PictureURL    string    `json:"pictureUrl"`
	CredentialIDs []string  `json:"credentialIds"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
