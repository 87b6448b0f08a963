package profile

// BusinessProfile is the single business record the service knows about.
// There is no concept of multiple users or businesses: one record, overwritten
// wholesale on every save.
type BusinessProfile struct {
	BusinessName  string `json:"business_name"`
	ABN           string `json:"abn"`
	GSTRegistered bool   `json:"gst_registered"`
	LogoBase64    string `json:"logo_base64"`
	Email         string `json:"email"`
}

// DefaultProfile returns the record used before anything is saved, and the
// record substituted when the persisted one cannot be parsed.
func DefaultProfile() *BusinessProfile {
	return &BusinessProfile{
		BusinessName: "My Business",
	}
}
