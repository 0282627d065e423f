// Package structs holds the entity records editable through the admin
// surface, and the serialization glue they need to live in SQL columns.
package structs

import (
	"database/sql/driver"
	"fmt"
	"time"

	goccy "github.com/goccy/go-json"
	"github.com/quillmud/quill"
)

// Kind tags the entity families the admin surface can edit.
type Kind string

const (
	KindAdventure Kind = "adventure"
	KindLocation  Kind = "location"
	KindItem      Kind = "item"
	KindCharacter Kind = "character"
)

// Kinds lists all entity kinds in a stable order.
var Kinds = []Kind{KindAdventure, KindLocation, KindItem, KindCharacter}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if s == string(k) {
			return k, nil
		}
	}
	return "", quill.Errorf(quill.ErrInvalidInput, "unknown entity kind %q", s)
}

// Entity is anything with an identifier and a display name.
type Entity interface {
	EntityID() string
	EntityKind() Kind
	DisplayName() string
}

// StringList is a []string stored as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := goccy.Marshal(l)
	if err != nil {
		return nil, quill.WithStack(err)
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return quill.WithStack(goccy.Unmarshal(v, l))
	case string:
		return quill.WithStack(goccy.Unmarshal([]byte(v), l))
	}
	return quill.Errorf(quill.ErrInternal, "can't scan %T into StringList", src)
}

// ExitMap maps exit direction to destination location ID, stored as a
// JSON column.
type ExitMap map[string]string

func (m ExitMap) Value() (driver.Value, error) {
	if m == nil {
		m = ExitMap{}
	}
	b, err := goccy.Marshal(m)
	if err != nil {
		return nil, quill.WithStack(err)
	}
	return string(b), nil
}

func (m *ExitMap) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return quill.WithStack(goccy.Unmarshal(v, m))
	case string:
		return quill.WithStack(goccy.Unmarshal([]byte(v), m))
	}
	return quill.Errorf(quill.ErrInternal, "can't scan %T into ExitMap", src)
}

type Adventure struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Start       string `db:"start" json:"start"`
}

func (a *Adventure) EntityID() string    { return a.ID }
func (a *Adventure) EntityKind() Kind    { return KindAdventure }
func (a *Adventure) DisplayName() string { return a.Name }

type Location struct {
	ID          string  `db:"id" json:"id"`
	Adventure   string  `db:"adventure" json:"adventure"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Exits       ExitMap `db:"exits" json:"exits"`
}

func (l *Location) EntityID() string    { return l.ID }
func (l *Location) EntityKind() Kind    { return KindLocation }
func (l *Location) DisplayName() string { return l.Name }

type Item struct {
	ID          string `db:"id" json:"id"`
	Adventure   string `db:"adventure" json:"adventure"`
	Location    string `db:"location" json:"location"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Portable    bool   `db:"portable" json:"portable"`
}

func (i *Item) EntityID() string    { return i.ID }
func (i *Item) EntityKind() Kind    { return KindItem }
func (i *Item) DisplayName() string { return i.Name }

type Character struct {
	ID          string     `db:"id" json:"id"`
	Adventure   string     `db:"adventure" json:"adventure"`
	Location    string     `db:"location" json:"location"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Dialogue    StringList `db:"dialogue" json:"dialogue"`
	AIDriven    bool       `db:"ai_driven" json:"ai_driven"`
	Persona     string     `db:"persona" json:"persona"`
}

func (c *Character) EntityID() string    { return c.ID }
func (c *Character) EntityKind() Kind    { return KindCharacter }
func (c *Character) DisplayName() string { return c.Name }

type User struct {
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Admin        bool      `db:"admin" json:"admin"`
	LastLogin    time.Time `db:"last_login" json:"last_login"`
}

// ConversationTurn is one exchange half in an AI chat sub-session.
type ConversationTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

func (t ConversationTurn) String() string {
	return fmt.Sprintf("%s: %s", t.Role, t.Text)
}
