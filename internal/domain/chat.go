package domain

// ChatRole is the platform role assigned to a chat user.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleAdmin ChatRole = "admin"
)

// ChannelTypeMessaging is the channel type customer conversations are opened with.
const ChannelTypeMessaging = "messaging"

// ChatUser is a user record upserted into the chat platform directory.
type ChatUser struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role ChatRole `json:"role"`
}

// NewCustomerUser builds the customer identity for a normalized name pair.
func NewCustomerUser(firstName, lastName string) ChatUser {
	return ChatUser{
		ID:   CustomerID(firstName, lastName),
		Name: firstName,
		Role: ChatRoleUser,
	}
}

// SupportIdentity is the admin user every customer channel includes.
type SupportIdentity struct {
	ID   string
	Name string
}

// DefaultSupportIdentity matches the identity used when nothing is configured.
var DefaultSupportIdentity = SupportIdentity{ID: "adminId", Name: "unique-admin-name"}

// User returns the chat record for the support identity.
func (s SupportIdentity) User() ChatUser {
	return ChatUser{ID: s.ID, Name: s.Name, Role: ChatRoleAdmin}
}

// Channel describes a messaging channel returned by the chat platform.
type Channel struct {
	Type    string
	ID      string
	CID     string
	Members []string
}
