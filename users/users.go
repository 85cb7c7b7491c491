package users

import "encoding/json"

// Community is the community reference carried on a user record. It persists
// its id as "id" and also reads the backend's "_id".
type Community struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	BannerImage string `json:"bannerImage,omitempty"`
}

func (c *Community) UnmarshalJSON(b []byte) error {
	type community Community
	var aux struct {
		community
		DocumentID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = Community(aux.community)
	if c.ID == "" {
		c.ID = aux.DocumentID
	}
	return nil
}

// User is the snapshot of the authenticated user captured at login time. It is
// not kept in sync with the backend; a later GET /api/auth/me replaces it.
type User struct {
	ID                string     `json:"id,omitempty"`
	FirstName         string     `json:"firstName,omitempty"`
	LastName          string     `json:"lastName,omitempty"`
	Email             string     `json:"email,omitempty"`
	PhoneNumber       string     `json:"phoneNumber,omitempty"`
	Address           string     `json:"address,omitempty"`
	Occupation        string     `json:"occupation,omitempty"`
	PreferredLanguage string     `json:"preferredLanguage,omitempty"`
	Roles             []string   `json:"roles,omitempty"`
	Skills            []string   `json:"skills,omitempty"`
	ProfilePicture    string     `json:"profilePicture,omitempty"`
	BahaiID           string     `json:"bahaiId,omitempty"`
	Birthday          string     `json:"birthday,omitempty"` // as sent by the backend, not parsed
	Community         *Community `json:"community,omitempty"`
}

// UnmarshalJSON reads the id from "id", falling back to "_id" for records
// served straight from the user collection.
func (u *User) UnmarshalJSON(b []byte) error {
	type user User
	var aux struct {
		user
		DocumentID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*u = User(aux.user)
	if u.ID == "" {
		u.ID = aux.DocumentID
	}
	return nil
}

// CommunityID returns the user's community id, or "" when the user has none.
func (u *User) CommunityID() string {
	if u == nil || u.Community == nil {
		return ""
	}
	return u.Community.ID
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Clone returns a deep copy so snapshots handed to consumers can't alias
// manager state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Roles != nil {
		c.Roles = append([]string(nil), u.Roles...)
	}
	if u.Skills != nil {
		c.Skills = append([]string(nil), u.Skills...)
	}
	if u.Community != nil {
		community := *u.Community
		c.Community = &community
	}
	return &c
}

// Marshal serialises the user for persistence.
func (u *User) Marshal() (string, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unmarshal parses a persisted user record.
func Unmarshal(s string) (*User, error) {
	u := &User{}
	if err := json.Unmarshal([]byte(s), u); err != nil {
		return nil, err
	}
	return u, nil
}
