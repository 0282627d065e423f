package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/quillmud/quill"
	"github.com/quillmud/quill/command"
	"github.com/quillmud/quill/form"
	"github.com/quillmud/quill/lang"
	"github.com/quillmud/quill/storage"
	"github.com/quillmud/quill/structs"
	"github.com/quillmud/quill/termio"
	"github.com/rodaine/table"
)

func (g *Game) registerAdminCommands(r *command.Registry[*Call]) {
	r.MustRegister(&command.Descriptor[*Call]{
		Name:     "select adventure",
		Aliases:  []string{"select"},
		Help:     "Choose the adventure to administer.",
		Syntax:   "select adventure <id>",
		Examples: []string{"select adventure haunted-keep"},
		Mode:     command.Admin,
		Slot:     command.AdventureSlot,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			if len(inv.Args) != 1 {
				return quill.Errorf(quill.ErrInvalidInput, "usage: %s", inv.Command.Syntax)
			}
			return c.Session.selectAdventure(c.Ctx, inv.Args[0])
		},
	})
	r.MustRegister(&command.Descriptor[*Call]{
		Name:    "logout",
		Aliases: []string{"player"},
		Help:    "Drop admin mode and return to play.",
		Syntax:  "logout",
		Mode:    command.Admin,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			c.Session.dropElevation()
			return nil
		},
	})

	for _, kind := range structs.Kinds {
		g.registerListCommand(r, kind)
		g.registerShowCommand(r, kind)
		g.registerCreateCommand(r, kind)
		g.registerEditCommand(r, kind)
		g.registerDeleteCommand(r, kind)
	}
}

// slotFor maps a kind to its completion slot.
func slotFor(kind structs.Kind) command.Slot {
	switch kind {
	case structs.KindAdventure:
		return command.AdventureSlot
	case structs.KindLocation:
		return command.LocationSlot
	case structs.KindItem:
		return command.ItemSlot
	case structs.KindCharacter:
		return command.CharacterSlot
	}
	return command.NoSlot
}

// listAliases are the short forms of the per-kind listing commands.
var listAliases = map[structs.Kind]string{
	structs.KindAdventure: "ls adv",
	structs.KindLocation:  "ls loc",
	structs.KindItem:      "ls items",
	structs.KindCharacter: "ls chars",
}

func (g *Game) registerListCommand(r *command.Registry[*Call], kind structs.Kind) {
	plural := lang.Plural(string(kind))
	r.MustRegister(&command.Descriptor[*Call]{
		Name:    fmt.Sprintf("show %s", plural),
		Aliases: []string{listAliases[kind]},
		Help:    fmt.Sprintf("List all %s.", plural),
		Syntax:  fmt.Sprintf("show %s", plural),
		Mode:    command.Admin,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			return c.Session.listEntities(c.Ctx, kind)
		},
	})
}

func (g *Game) registerShowCommand(r *command.Registry[*Call], kind structs.Kind) {
	r.MustRegister(&command.Descriptor[*Call]{
		Name:     fmt.Sprintf("show %s", kind),
		Help:     fmt.Sprintf("Show one %s in full.", kind),
		Syntax:   fmt.Sprintf("show %s <id>", kind),
		Examples: []string{fmt.Sprintf("show %s some-id", kind)},
		Mode:     command.Admin,
		Slot:     slotFor(kind),
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			if len(inv.Args) != 1 {
				return quill.Errorf(quill.ErrInvalidInput, "usage: %s", inv.Command.Syntax)
			}
			return c.Session.showEntity(c.Ctx, kind, inv.Args[0])
		},
	})
}

func (g *Game) registerCreateCommand(r *command.Registry[*Call], kind structs.Kind) {
	r.MustRegister(&command.Descriptor[*Call]{
		Name:     fmt.Sprintf("create %s", kind),
		Help:     fmt.Sprintf("Create a %s and fill in its fields.", kind),
		Syntax:   fmt.Sprintf("create %s <id>", kind),
		Examples: []string{fmt.Sprintf("create %s some-id", kind)},
		Mode:     command.Admin,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			if len(inv.Args) != 1 {
				return quill.Errorf(quill.ErrInvalidInput, "usage: %s", inv.Command.Syntax)
			}
			return c.Session.createEntity(c.Ctx, kind, inv.Args[0])
		},
	})
}

func (g *Game) registerEditCommand(r *command.Registry[*Call], kind structs.Kind) {
	r.MustRegister(&command.Descriptor[*Call]{
		Name:   fmt.Sprintf("edit %s", kind),
		Help:   fmt.Sprintf("Edit a %s, interactively or one property at a time.", kind),
		Syntax: fmt.Sprintf("edit %s <id> [property value]", kind),
		Examples: []string{
			fmt.Sprintf("edit %s some-id", kind),
			fmt.Sprintf("edit %s some-id name \"A new name\"", kind),
		},
		Mode: command.Admin,
		Slot: slotFor(kind),
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			switch {
			case len(inv.Args) == 1:
				return c.Session.editEntityForm(c.Ctx, kind, inv.Args[0])
			case len(inv.Args) >= 3:
				value := strings.Join(inv.Args[2:], " ")
				return c.Session.editEntityDirect(c.Ctx, kind, inv.Args[0], inv.Args[1], value)
			default:
				return quill.Errorf(quill.ErrInvalidInput, "usage: %s", inv.Command.Syntax)
			}
		},
	})
}

func (g *Game) registerDeleteCommand(r *command.Registry[*Call], kind structs.Kind) {
	r.MustRegister(&command.Descriptor[*Call]{
		Name:     fmt.Sprintf("delete %s", kind),
		Aliases:  []string{fmt.Sprintf("rm %s", kind)},
		Help:     fmt.Sprintf("Delete a %s after confirmation.", kind),
		Syntax:   fmt.Sprintf("delete %s <id>", kind),
		Examples: []string{fmt.Sprintf("delete %s some-id", kind)},
		Mode:     command.Admin,
		Slot:     slotFor(kind),
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			if len(inv.Args) != 1 {
				return quill.Errorf(quill.ErrInvalidInput, "usage: %s", inv.Command.Syntax)
			}
			return c.Session.deleteEntity(c.Ctx, kind, inv.Args[0])
		},
	})
}

func (s *Session) selectAdventure(ctx context.Context, id string) error {
	adventure, err := s.game.storage.LoadAdventure(ctx, id)
	if err != nil {
		return err
	}
	s.selected = adventure
	s.out.WriteLine(fmt.Sprintf("Selected adventure %q (%s).", adventure.Name, adventure.ID), termio.StyleInfo)
	return nil
}

func (s *Session) dropElevation() {
	if s.token != "" {
		s.game.auth.Logout(s.token)
		s.token = ""
	}
	s.mode = command.Player
	s.selected = nil
	s.out.WriteLine("Back to player mode.", termio.StyleInfo)
}

// requireSelected guards commands that operate inside one adventure.
func (s *Session) requireSelected(kind structs.Kind) (*structs.Adventure, error) {
	if kind == structs.KindAdventure {
		return nil, nil
	}
	if s.selected == nil {
		return nil, quill.Errorf(quill.ErrInvalidInput, "no adventure selected, use \"select adventure <id>\"")
	}
	return s.selected, nil
}

func (s *Session) listEntities(ctx context.Context, kind structs.Kind) error {
	filter := storage.Filter{}
	if kind != structs.KindAdventure {
		adventure, err := s.requireSelected(kind)
		if err != nil {
			return err
		}
		filter.Adventure = adventure.ID
	}
	entities, err := s.game.storage.ListEntities(ctx, kind, filter)
	if err != nil {
		return err
	}
	if len(entities) == 0 {
		s.out.WriteLine(fmt.Sprintf("No %s.", lang.Plural(string(kind))), termio.StyleDim)
		return nil
	}
	buf := &strings.Builder{}
	tbl := table.New("ID", "Name", "Details").WithWriter(buf)
	for _, entity := range entities {
		tbl.AddRow(entity.EntityID(), entity.DisplayName(), entityDetails(entity))
	}
	tbl.Print()
	s.writeLines(buf.String(), termio.StyleDefault)
	return nil
}

// entityDetails is the third listing column, one short line per kind.
func entityDetails(entity structs.Entity) string {
	switch e := entity.(type) {
	case *structs.Adventure:
		return fmt.Sprintf("start=%s", e.Start)
	case *structs.Location:
		return fmt.Sprintf("%d exits", len(e.Exits))
	case *structs.Item:
		if e.Portable {
			return fmt.Sprintf("portable, at %s", e.Location)
		}
		return fmt.Sprintf("fixed, at %s", e.Location)
	case *structs.Character:
		if e.AIDriven {
			return fmt.Sprintf("ai, at %s", e.Location)
		}
		return fmt.Sprintf("scripted, at %s", e.Location)
	}
	return ""
}

func (s *Session) showEntity(ctx context.Context, kind structs.Kind, id string) error {
	entity, err := s.game.loadEntity(ctx, kind, id)
	if err != nil {
		return err
	}
	blob, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return quill.WithStack(err)
	}
	s.writeLines(string(blob), termio.StyleDefault)
	return nil
}

func (s *Session) createEntity(ctx context.Context, kind structs.Kind, id string) error {
	adventure, err := s.requireSelected(kind)
	if err != nil {
		return err
	}
	if _, err := s.game.loadEntity(ctx, kind, id); err == nil {
		return quill.Errorf(quill.ErrInvalidInput, "%s %q already exists", kind, id)
	} else if quill.Kind(err) != quill.ErrNotFound {
		return err
	}
	entity := newEntity(kind, id, adventure)
	s.startForm(form.New(fmt.Sprintf("New %s %s", kind, id), s.fieldsFor(entity), s.out), func(ctx context.Context, result *form.Result) error {
		applyResult(entity, result)
		if err := s.game.storage.SaveEntity(ctx, entity); err != nil {
			return err
		}
		s.game.invalidateCandidates(kind, adventureID(adventure))
		s.out.WriteLine(fmt.Sprintf("Created %s %s.", kind, id), termio.StyleInfo)
		return nil
	})
	return nil
}

func (s *Session) editEntityForm(ctx context.Context, kind structs.Kind, id string) error {
	entity, err := s.game.loadEntity(ctx, kind, id)
	if err != nil {
		return err
	}
	s.startForm(form.New(fmt.Sprintf("Edit %s %s", kind, id), s.fieldsFor(entity), s.out), func(ctx context.Context, result *form.Result) error {
		if len(result.Changed) == 0 {
			s.out.WriteLine("No changes.", termio.StyleDim)
			return nil
		}
		applyResult(entity, result)
		if err := s.game.storage.SaveEntity(ctx, entity); err != nil {
			return err
		}
		s.game.invalidateCandidates(kind, entityAdventure(entity))
		s.out.WriteLine(fmt.Sprintf("Saved %s %s (%s changed).", kind, id, strings.Join(result.Changed, ", ")), termio.StyleInfo)
		return nil
	})
	return nil
}

func (s *Session) editEntityDirect(ctx context.Context, kind structs.Kind, id, property, value string) error {
	entity, err := s.game.loadEntity(ctx, kind, id)
	if err != nil {
		return err
	}
	fields := s.fieldsFor(entity)
	var field *form.Field
	for i := range fields {
		if fields[i].Name == strings.ToLower(property) {
			field = &fields[i]
			break
		}
	}
	if field == nil {
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, f.Name)
		}
		return quill.Errorf(quill.ErrInvalidInput, "no property %q on a %s, one of: %s", property, kind, strings.Join(names, ", "))
	}
	newValue := directValue(field, value)
	if err := form.Validate(field, newValue); err != nil {
		return err
	}
	old := field.Current
	result := &form.Result{
		Values:  map[string]form.Value{field.Name: newValue},
		Changed: []string{field.Name},
	}
	applyResult(entity, result)
	if err := s.game.storage.SaveEntity(ctx, entity); err != nil {
		return err
	}
	s.game.invalidateCandidates(kind, entityAdventure(entity))
	s.out.WriteLine(fmt.Sprintf("%s.%s: %q -> %q", id, field.Name, old.String(), newValue.String()), termio.StyleInfo)
	return nil
}

func (s *Session) deleteEntity(ctx context.Context, kind structs.Kind, id string) error {
	entity, err := s.game.loadEntity(ctx, kind, id)
	if err != nil {
		return err
	}
	question := fmt.Sprintf("Delete %s %q (%s)?", kind, entity.DisplayName(), id)
	s.confirm(question, func(ctx context.Context, confirmed bool) error {
		if !confirmed {
			s.out.WriteLine("Cancelled, nothing deleted.", termio.StyleDim)
			return nil
		}
		if err := s.game.storage.DeleteEntity(ctx, kind, id); err != nil {
			return err
		}
		s.game.invalidateCandidates(kind, entityAdventure(entity))
		s.out.WriteLine(fmt.Sprintf("Deleted %s %s.", kind, id), termio.StyleInfo)
		return nil
	})
	return nil
}

func newEntity(kind structs.Kind, id string, adventure *structs.Adventure) structs.Entity {
	adv := adventureID(adventure)
	switch kind {
	case structs.KindAdventure:
		return &structs.Adventure{ID: id}
	case structs.KindLocation:
		return &structs.Location{ID: id, Adventure: adv, Exits: structs.ExitMap{}}
	case structs.KindItem:
		return &structs.Item{ID: id, Adventure: adv, Portable: true}
	case structs.KindCharacter:
		return &structs.Character{ID: id, Adventure: adv}
	}
	return nil
}

func adventureID(a *structs.Adventure) string {
	if a == nil {
		return ""
	}
	return a.ID
}

func entityAdventure(entity structs.Entity) string {
	switch e := entity.(type) {
	case *structs.Location:
		return e.Adventure
	case *structs.Item:
		return e.Adventure
	case *structs.Character:
		return e.Adventure
	}
	return ""
}
