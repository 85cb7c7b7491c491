package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrsteele09/community-client/users"
	"github.com/pkg/errors"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	BahaiID  string `json:"bahaiId"`
	Password string `json:"password"`
}

// VerifyRequest is the body of POST /api/auth/verify.
type VerifyRequest struct {
	BahaiID          string `json:"bahaiId"`
	VerificationCode string `json:"verificationCode"`
	Password         string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

// CreatePostRequest is the body of POST /api/posts/create.
type CreatePostRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Media     []string `json:"media"`
	Author    string   `json:"author"`
	Community string   `json:"community"`
}

// AuthResponse is returned by login and verify.
type AuthResponse struct {
	User         *users.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
}

func (r *AuthResponse) validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return errors.New("missing token")
	}
	if r.User == nil {
		return errors.New("missing user")
	}
	if r.User.ID == "" {
		return errors.New("user has no id")
	}
	return nil
}

// MessageResponse is the acknowledgement returned by register and
// forgot-password.
type MessageResponse struct {
	Message string `json:"message"`
}

// RefreshResponse is returned by POST /api/auth/refresh.
type RefreshResponse struct {
	AccessToken     string `json:"accessToken"`
	NewRefreshToken string `json:"newRefreshToken"`
}

func (r *RefreshResponse) validate() error {
	if strings.TrimSpace(r.AccessToken) == "" {
		return errors.New("missing accessToken")
	}
	return nil
}

// Post is an item of the explore and community feeds. Nested documents whose
// shape the client doesn't depend on are kept raw.
type Post struct {
	ID        string          `json:"_id"`
	Title     string          `json:"title,omitempty"`
	Content   string          `json:"content,omitempty"`
	Media     []string        `json:"media,omitempty"`
	Author    json.RawMessage `json:"author,omitempty"`
	Community json.RawMessage `json:"community,omitempty"`
	Likes     json.RawMessage `json:"likes,omitempty"`
	Comments  json.RawMessage `json:"comments,omitempty"`
	CreatedAt string          `json:"createdAt,omitempty"`
}

func (p Post) identity() string { return p.ID }

// Activity is a community activity (study circle, class, devotional...).
type Activity struct {
	ID           string          `json:"_id"`
	Title        string          `json:"title,omitempty"`
	ActivityType string          `json:"activityType,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	StartDate    string          `json:"startDate,omitempty"`
	Address      string          `json:"address,omitempty"`
	GroupDetails json.RawMessage `json:"groupDetails,omitempty"`
	Facilitators json.RawMessage `json:"facilitators,omitempty"`
	Participants json.RawMessage `json:"participants,omitempty"`
}

func (a Activity) identity() string { return a.ID }

// Event is a scheduled community event.
type Event struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	EventType   string          `json:"eventType,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Date        string          `json:"date,omitempty"`
	StartTime   string          `json:"startTime,omitempty"`
	EndTime     string          `json:"endTime,omitempty"`
	Venue       json.RawMessage `json:"venue,omitempty"`
	Hosts       json.RawMessage `json:"hosts,omitempty"`
	Attendees   json.RawMessage `json:"attendees,omitempty"`
}

func (e Event) identity() string { return e.ID }

// Community is a community's detail record.
type Community struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	BannerImage string          `json:"bannerImage,omitempty"`
	Members     json.RawMessage `json:"members,omitempty"`
}

func (c Community) identity() string { return c.ID }

// MemberCount counts the members listed on the record.
func (c Community) MemberCount() int { return rawLen(c.Members) }

// Body is an administrative body of a community, such as its Local Spiritual
// Assembly.
type Body struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name,omitempty"`
	Type      string          `json:"type,omitempty"`
	Community json.RawMessage `json:"community,omitempty"`
	Members   json.RawMessage `json:"members,omitempty"`
}

func (b Body) identity() string { return b.ID }

// MemberCount counts the members listed on the record.
func (b Body) MemberCount() int { return rawLen(b.Members) }

// rawLen is the element count of a raw JSON array, 0 for anything else.
func rawLen(raw json.RawMessage) int {
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return 0
	}
	return len(items)
}

type identified interface {
	identity() string
}

// listResponse accepts either a bare JSON array or a {"data": [...]} envelope.
type listResponse[T identified] struct {
	Items []T
}

func (l *listResponse[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.Items)
	}
	var envelope struct {
		Data *[]T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	if envelope.Data == nil {
		return errors.New(`expected an array or a "data" array`)
	}
	l.Items = *envelope.Data
	return nil
}

func (l *listResponse[T]) validate() error {
	for i, item := range l.Items {
		if item.identity() == "" {
			return fmt.Errorf("item %d has no _id", i)
		}
	}
	if l.Items == nil {
		l.Items = []T{}
	}
	return nil
}

// itemResponse accepts either a bare object or a {"data": {...}} envelope.
type itemResponse[T identified] struct {
	Item T
}

func (r *itemResponse[T]) UnmarshalJSON(b []byte) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		return json.Unmarshal(envelope.Data, &r.Item)
	}
	return json.Unmarshal(b, &r.Item)
}

func (r *itemResponse[T]) validate() error {
	if r.Item.identity() == "" {
		return errors.New("missing _id")
	}
	return nil
}

// userResponse accepts a bare user, {"user": {...}} or {"data": {...}}.
type userResponse struct {
	User *users.User
}

func (r *userResponse) UnmarshalJSON(b []byte) error {
	var envelope struct {
		User json.RawMessage `json:"user"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil {
		return err
	}
	raw := json.RawMessage(b)
	switch {
	case len(envelope.User) > 0 && envelope.User[0] == '{':
		raw = envelope.User
	case len(envelope.Data) > 0 && envelope.Data[0] == '{':
		raw = envelope.Data
	}
	r.User = &users.User{}
	return json.Unmarshal(raw, r.User)
}

func (r *userResponse) validate() error {
	if r.User == nil || r.User.ID == "" {
		return errors.New("user has no id")
	}
	return nil
}
