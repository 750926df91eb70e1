package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/poiesic/agentstore/extjson"
	"golang.org/x/text/language"
)

// User is a person an agent talks to, possibly over several platforms.
//
// Platform links and the registration flag are store-only: they round-trip
// through JSON but are changed only by targeted store operations.
type User struct {
	Document
	FirstName       string
	LastName        string
	Language        language.Tag // language.Und when unknown
	LastInteraction time.Time    // zero until the first interaction
	WorkingContext  WorkingContext

	platformIDs map[ChatPlatform]string
	registered  bool
}

// NewUser builds a detached User.
func NewUser(firstName, lastName string, lang language.Tag) *User {
	return &User{
		FirstName:      firstName,
		LastName:       lastName,
		Language:       lang,
		WorkingContext: WorkingContextRegistration,
	}
}

// PlatformID returns the user's id on platform p.
func (u *User) PlatformID(p ChatPlatform) (string, bool) {
	id, ok := u.platformIDs[p]
	return id, ok
}

// PlatformIDs returns a copy of every platform link.
func (u *User) PlatformIDs() map[ChatPlatform]string {
	return maps.Clone(u.platformIDs)
}

// Registered reports whether registration was completed.
func (u *User) Registered() bool {
	return u.registered
}

// ProfileOnly returns a copy of u, identity included, with the store-only
// fields cleared.
func (u *User) ProfileOnly() *User {
	c := *u
	c.platformIDs = nil
	c.registered = false
	return &c
}

func (u *User) Validate() error {
	return ValidateUser(u)
}

type userJSON struct {
	ID              string                  `json:"_id,omitempty"`
	FirstName       string                  `json:"first_name,omitempty"`
	LastName        string                  `json:"last_name,omitempty"`
	Language        string                  `json:"language,omitempty"`
	LastInteraction extjson.Time            `json:"last_interaction"`
	WorkingContext  WorkingContext          `json:"working_context,omitempty"`
	PlatformIDs     map[ChatPlatform]string `json:"platform_ids,omitempty"`
	Registered      bool                    `json:"registered"`
}

func (u *User) MarshalJSON() ([]byte, error) {
	w := userJSON{
		ID:              u.id,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		LastInteraction: extjson.NewTime(u.LastInteraction),
		WorkingContext:  u.WorkingContext,
		PlatformIDs:     u.platformIDs,
		Registered:      u.registered,
	}
	if u.Language != language.Und {
		w.Language = u.Language.String()
	}
	return json.Marshal(w)
}

func (u *User) UnmarshalJSON(data []byte) error {
	var w userJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	lang := language.Und
	if w.Language != "" {
		var err error
		if lang, err = language.Parse(w.Language); err != nil {
			return fmt.Errorf("%w: language %q: %w", ErrInvalidEntity, w.Language, err)
		}
	}
	*u = User{
		FirstName:       w.FirstName,
		LastName:        w.LastName,
		Language:        lang,
		LastInteraction: w.LastInteraction.Std(),
		WorkingContext:  w.WorkingContext,
		platformIDs:     w.PlatformIDs,
		registered:      w.Registered,
	}
	u.bind(w.ID)
	return nil
}

func (u *User) ToJSONString() (string, error)   { return ToJSONString(u) }
func (u *User) ToJSON() (map[string]any, error) { return ToJSON(u) }
func (u *User) String() string                  { return Stringify(u) }

// UnreadMessage is a message queued for a recipient who has not read it.
// The payload is any JSON value, kept as text and decoded on demand.
type UnreadMessage struct {
	Document
	Recipient string
	CreatedAt time.Time

	payload json.RawMessage
}

// NewUnreadMessage builds a detached UnreadMessage. payload must be
// encodable as JSON.
func NewUnreadMessage(recipient string, payload any) (*UnreadMessage, error) {
	m := &UnreadMessage{
		Recipient: recipient,
		CreatedAt: extjson.Truncate(time.Now()),
	}
	if err := m.SetPayload(payload); err != nil {
		return nil, err
	}
	return m, nil
}

// SetPayload replaces the payload with the JSON encoding of v.
func (m *UnreadMessage) SetPayload(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: payload: %w", ErrInvalidEntity, err)
	}
	m.payload = data
	return nil
}

// Payload decodes the payload into generic values.
func (m *UnreadMessage) Payload() (any, error) {
	dec := json.NewDecoder(bytes.NewReader(m.RawPayload()))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodePayload decodes the payload into v.
func (m *UnreadMessage) DecodePayload(v any) error {
	return json.Unmarshal(m.RawPayload(), v)
}

// RawPayload returns the payload as JSON text.
func (m *UnreadMessage) RawPayload() json.RawMessage {
	if len(m.payload) == 0 {
		return json.RawMessage("null")
	}
	return m.payload
}

func (m *UnreadMessage) Validate() error {
	return ValidateUnreadMessage(m)
}

type unreadMessageJSON struct {
	ID        string          `json:"_id,omitempty"`
	Recipient string          `json:"recipient"`
	Message   json.RawMessage `json:"message"`
	CreatedAt extjson.Time    `json:"created_at"`
}

func (m *UnreadMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(unreadMessageJSON{
		ID:        m.id,
		Recipient: m.Recipient,
		Message:   m.RawPayload(),
		CreatedAt: extjson.NewTime(m.CreatedAt),
	})
}

func (m *UnreadMessage) UnmarshalJSON(data []byte) error {
	var w unreadMessageJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = UnreadMessage{
		Recipient: w.Recipient,
		CreatedAt: w.CreatedAt.Std(),
		payload:   bytes.Clone(w.Message),
	}
	m.bind(w.ID)
	return nil
}

func (m *UnreadMessage) ToJSONString() (string, error)   { return ToJSONString(m) }
func (m *UnreadMessage) ToJSON() (map[string]any, error) { return ToJSON(m) }
func (m *UnreadMessage) String() string                  { return Stringify(m) }

// Strategy is a named plan an agent designs together with a user.
type Strategy struct {
	Document
	Name        string
	Description string
}

// NewStrategy builds a detached Strategy.
func NewStrategy(name, description string) *Strategy {
	return &Strategy{Name: name, Description: description}
}

// Strategies have no required fields.
func (s *Strategy) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: strategy is nil", ErrInvalidEntity)
	}
	return nil
}

type strategyJSON struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

func (s *Strategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(strategyJSON{ID: s.id, Name: s.Name, Description: s.Description})
}

func (s *Strategy) UnmarshalJSON(data []byte) error {
	var w strategyJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Strategy{Name: w.Name, Description: w.Description}
	s.bind(w.ID)
	return nil
}

func (s *Strategy) ToJSONString() (string, error)   { return ToJSONString(s) }
func (s *Strategy) ToJSON() (map[string]any, error) { return ToJSON(s) }
func (s *Strategy) String() string                  { return Stringify(s) }

// CacheEntry is a computed result stored under a caller-chosen key.
// Generation marks the version of the logic that produced Payload; the
// store never compares it.
type CacheEntry struct {
	Document
	Key        string
	Generation int
	Payload    string
	CreatedAt  time.Time
}

func (c *CacheEntry) Validate() error {
	return ValidateCacheEntry(c)
}

type cacheEntryJSON struct {
	ID         string       `json:"_id,omitempty"`
	Key        string       `json:"key"`
	Generation int          `json:"generation"`
	Payload    string       `json:"payload"`
	CreatedAt  extjson.Time `json:"created_at"`
}

func (c *CacheEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(cacheEntryJSON{
		ID:         c.id,
		Key:        c.Key,
		Generation: c.Generation,
		Payload:    c.Payload,
		CreatedAt:  extjson.NewTime(c.CreatedAt),
	})
}

func (c *CacheEntry) UnmarshalJSON(data []byte) error {
	var w cacheEntryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = CacheEntry{
		Key:        w.Key,
		Generation: w.Generation,
		Payload:    w.Payload,
		CreatedAt:  w.CreatedAt.Std(),
	}
	c.bind(w.ID)
	return nil
}

func (c *CacheEntry) ToJSONString() (string, error)   { return ToJSONString(c) }
func (c *CacheEntry) ToJSON() (map[string]any, error) { return ToJSON(c) }
func (c *CacheEntry) String() string                  { return Stringify(c) }

var (
	_ Entity = (*User)(nil)
	_ Entity = (*UnreadMessage)(nil)
	_ Entity = (*Strategy)(nil)
	_ Entity = (*CacheEntry)(nil)
	_ Entity = (*LocalizedText)(nil)
)
