package domain

// ContactProperty is a single CRM contact field.
type ContactProperty struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// ContactProperties builds the CRM payload for a normalized name pair.
func ContactProperties(firstName, lastName, customProperty, customValue string) []ContactProperty {
	props := []ContactProperty{
		{Property: "firstname", Value: firstName},
		{Property: "lastname", Value: lastName},
	}
	if customProperty != "" {
		props = append(props, ContactProperty{Property: customProperty, Value: customValue})
	}
	return props
}
