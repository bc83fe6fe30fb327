package dto

// RegistrationRequest payload for POST /registrations. Pointers distinguish
// a missing field from an empty string.
type RegistrationRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// RegistrationResponse is returned on success and carries exactly these fields.
type RegistrationResponse struct {
	CustomerID    string `json:"customerId"`
	CustomerToken string `json:"customerToken"`
	ChannelID     string `json:"channelId"`
	APIKey        string `json:"apiKey"`
}
