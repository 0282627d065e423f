// Package storage is the persistence collaborator: a keyed-record
// mapper over SQLite for the entity kinds and user records. The session
// core never assumes atomicity across calls; every operation either
// succeeds or fails on its own.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/quillmud/quill"
	"github.com/quillmud/quill/structs"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS adventures (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	start       TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS locations (
	id          TEXT PRIMARY KEY,
	adventure   TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	exits       TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS locations_adventure ON locations (adventure);
CREATE TABLE IF NOT EXISTS items (
	id          TEXT PRIMARY KEY,
	adventure   TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	portable    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS items_adventure ON items (adventure);
CREATE TABLE IF NOT EXISTS characters (
	id          TEXT PRIMARY KEY,
	adventure   TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	dialogue    TEXT NOT NULL DEFAULT '[]',
	ai_driven   INTEGER NOT NULL DEFAULT 0,
	persona     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS characters_adventure ON characters (adventure);
CREATE TABLE IF NOT EXISTS users (
	name          TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	admin         INTEGER NOT NULL DEFAULT 0,
	last_login    TIMESTAMP NOT NULL DEFAULT '0001-01-01 00:00:00'
);
`

type Storage struct {
	db *sqlx.DB
}

func New(ctx context.Context, dir string) (*Storage, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", filepath.Join(dir, "quill.db"))
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, quill.WithStack(err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, quill.WithStack(err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return quill.WithStack(s.db.Close())
}

func notFound(err error, kind structs.Kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return quill.Errorf(quill.ErrNotFound, "%s %q does not exist", kind, id)
	}
	return quill.WithStack(err)
}

func table(kind structs.Kind) string {
	switch kind {
	case structs.KindAdventure:
		return "adventures"
	case structs.KindLocation:
		return "locations"
	case structs.KindItem:
		return "items"
	case structs.KindCharacter:
		return "characters"
	}
	return ""
}

func (s *Storage) LoadAdventure(ctx context.Context, id string) (*structs.Adventure, error) {
	a := &structs.Adventure{}
	if err := s.db.GetContext(ctx, a, "SELECT * FROM adventures WHERE id = ?", id); err != nil {
		return nil, notFound(err, structs.KindAdventure, id)
	}
	return a, nil
}

func (s *Storage) LoadLocation(ctx context.Context, id string) (*structs.Location, error) {
	l := &structs.Location{}
	if err := s.db.GetContext(ctx, l, "SELECT * FROM locations WHERE id = ?", id); err != nil {
		return nil, notFound(err, structs.KindLocation, id)
	}
	return l, nil
}

func (s *Storage) LoadItem(ctx context.Context, id string) (*structs.Item, error) {
	i := &structs.Item{}
	if err := s.db.GetContext(ctx, i, "SELECT * FROM items WHERE id = ?", id); err != nil {
		return nil, notFound(err, structs.KindItem, id)
	}
	return i, nil
}

func (s *Storage) LoadCharacter(ctx context.Context, id string) (*structs.Character, error) {
	c := &structs.Character{}
	if err := s.db.GetContext(ctx, c, "SELECT * FROM characters WHERE id = ?", id); err != nil {
		return nil, notFound(err, structs.KindCharacter, id)
	}
	return c, nil
}

// LoadEntity loads any entity kind by ID.
func (s *Storage) LoadEntity(ctx context.Context, kind structs.Kind, id string) (structs.Entity, error) {
	switch kind {
	case structs.KindAdventure:
		return s.LoadAdventure(ctx, id)
	case structs.KindLocation:
		return s.LoadLocation(ctx, id)
	case structs.KindItem:
		return s.LoadItem(ctx, id)
	case structs.KindCharacter:
		return s.LoadCharacter(ctx, id)
	}
	return nil, quill.Errorf(quill.ErrInvalidInput, "unknown entity kind %q", kind)
}

// SaveEntity upserts any entity kind.
func (s *Storage) SaveEntity(ctx context.Context, entity structs.Entity) error {
	var query string
	switch entity.EntityKind() {
	case structs.KindAdventure:
		query = `INSERT INTO adventures (id, name, description, start)
			VALUES (:id, :name, :description, :start)
			ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, description = excluded.description, start = excluded.start`
	case structs.KindLocation:
		query = `INSERT INTO locations (id, adventure, name, description, exits)
			VALUES (:id, :adventure, :name, :description, :exits)
			ON CONFLICT (id) DO UPDATE SET
			adventure = excluded.adventure, name = excluded.name,
			description = excluded.description, exits = excluded.exits`
	case structs.KindItem:
		query = `INSERT INTO items (id, adventure, location, name, description, portable)
			VALUES (:id, :adventure, :location, :name, :description, :portable)
			ON CONFLICT (id) DO UPDATE SET
			adventure = excluded.adventure, location = excluded.location,
			name = excluded.name, description = excluded.description, portable = excluded.portable`
	case structs.KindCharacter:
		query = `INSERT INTO characters (id, adventure, location, name, description, dialogue, ai_driven, persona)
			VALUES (:id, :adventure, :location, :name, :description, :dialogue, :ai_driven, :persona)
			ON CONFLICT (id) DO UPDATE SET
			adventure = excluded.adventure, location = excluded.location,
			name = excluded.name, description = excluded.description,
			dialogue = excluded.dialogue, ai_driven = excluded.ai_driven, persona = excluded.persona`
	default:
		return quill.Errorf(quill.ErrInvalidInput, "unknown entity kind %q", entity.EntityKind())
	}
	if _, err := s.db.NamedExecContext(ctx, query, entity); err != nil {
		return quill.WithStack(err)
	}
	return nil
}

// DeleteEntity removes an entity. Deleting something that isn't there
// is a NotFound error.
func (s *Storage) DeleteEntity(ctx context.Context, kind structs.Kind, id string) error {
	tbl := table(kind)
	if tbl == "" {
		return quill.Errorf(quill.ErrInvalidInput, "unknown entity kind %q", kind)
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", tbl), id)
	if err != nil {
		return quill.WithStack(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return quill.WithStack(err)
	} else if n == 0 {
		return quill.Errorf(quill.ErrNotFound, "%s %q does not exist", kind, id)
	}
	return nil
}

// Filter narrows ListEntities. Zero values mean "no filter".
type Filter struct {
	Adventure string
	Location  string
}

// ListEntities returns all entities of a kind matching the filter,
// ordered by ID.
func (s *Storage) ListEntities(ctx context.Context, kind structs.Kind, filter Filter) ([]structs.Entity, error) {
	tbl := table(kind)
	if tbl == "" {
		return nil, quill.Errorf(quill.ErrInvalidInput, "unknown entity kind %q", kind)
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE 1=1", tbl)
	args := []any{}
	if filter.Adventure != "" && kind != structs.KindAdventure {
		query += " AND adventure = ?"
		args = append(args, filter.Adventure)
	}
	if filter.Location != "" && (kind == structs.KindItem || kind == structs.KindCharacter) {
		query += " AND location = ?"
		args = append(args, filter.Location)
	}
	query += " ORDER BY id"

	entities := []structs.Entity{}
	switch kind {
	case structs.KindAdventure:
		rows := []*structs.Adventure{}
		if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, quill.WithStack(err)
		}
		for _, row := range rows {
			entities = append(entities, row)
		}
	case structs.KindLocation:
		rows := []*structs.Location{}
		if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, quill.WithStack(err)
		}
		for _, row := range rows {
			entities = append(entities, row)
		}
	case structs.KindItem:
		rows := []*structs.Item{}
		if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, quill.WithStack(err)
		}
		for _, row := range rows {
			entities = append(entities, row)
		}
	case structs.KindCharacter:
		rows := []*structs.Character{}
		if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, quill.WithStack(err)
		}
		for _, row := range rows {
			entities = append(entities, row)
		}
	}
	return entities, nil
}

func (s *Storage) LoadUser(ctx context.Context, name string) (*structs.User, error) {
	u := &structs.User{}
	if err := s.db.GetContext(ctx, u, "SELECT * FROM users WHERE name = ?", name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, quill.Errorf(quill.ErrNotFound, "user %q does not exist", name)
		}
		return nil, quill.WithStack(err)
	}
	return u, nil
}

func (s *Storage) StoreUser(ctx context.Context, u *structs.User) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO users (name, password_hash, admin, last_login)
		VALUES (:name, :password_hash, :admin, :last_login)
		ON CONFLICT (name) DO UPDATE SET
		password_hash = excluded.password_hash, admin = excluded.admin, last_login = excluded.last_login`, u)
	return quill.WithStack(err)
}
