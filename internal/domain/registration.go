package domain

import (
	"strings"
	"unicode"
)

// RegistrationRequest is the caller supplied name pair.
type RegistrationRequest struct {
	FirstName string
	LastName  string
}

// Normalize replaces every whitespace character in both names with an underscore.
func (r RegistrationRequest) Normalize() RegistrationRequest {
	return RegistrationRequest{
		FirstName: NormalizeName(r.FirstName),
		LastName:  NormalizeName(r.LastName),
	}
}

// NormalizeName maps each whitespace rune to '_'. Runs are not collapsed.
func NormalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if isNameSpace(r) {
			return '_'
		}
		return r
	}, name)
}

// isNameSpace reports the ECMAScript WhiteSpace and LineTerminator set:
// ASCII controls \t \n \v \f \r, U+FEFF, U+2028, U+2029 and category Zs.
// U+0085 is not included, unlike unicode.IsSpace.
func isNameSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// CustomerID derives the chat identity for a normalized name pair.
// Two people sharing a name share the identity.
func CustomerID(firstName, lastName string) string {
	return strings.ToLower(firstName + "-" + lastName)
}

// RegistrationResult is returned to the caller and never stored.
type RegistrationResult struct {
	CustomerID    string
	CustomerToken string
	ChannelID     string
	APIKey        string
}

// RegistrationStep names each outbound call of a registration.
type RegistrationStep string

const (
	StepCreateContact RegistrationStep = "create_contact"
	StepUpsertUsers   RegistrationStep = "upsert_users"
	StepOpenChannel   RegistrationStep = "open_channel"
	StepCreateToken   RegistrationStep = "create_token"
)

// RegistrationStatus is the outcome recorded for an attempt.
type RegistrationStatus string

const (
	RegistrationStatusCompleted RegistrationStatus = "COMPLETED"
	RegistrationStatusFailed    RegistrationStatus = "FAILED"
)
