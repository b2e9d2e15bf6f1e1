package credentials

import "time"

// Credential is a stored academic-qualification record. Type is an open label
// (degree, certificate, diploma, ...) and CID is an opaque content address of
// the source document; neither is structurally validated here.
type Credential struct {
	ID          string
	Type        string
	Institution string
	HolderName  string
	CID         string
	MimeType    string
	SizeBytes   int64
	CreatedAt   time.Time
}
