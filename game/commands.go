package game

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/quillmud/quill"
	"github.com/quillmud/quill/command"
	"github.com/quillmud/quill/history"
	"github.com/quillmud/quill/lang"
	"github.com/quillmud/quill/storage"
	"github.com/quillmud/quill/structs"
	"github.com/quillmud/quill/termio"
	"github.com/rodaine/table"
)

// minPartial is the shortest partial accepted when resolving an entity
// by name fragment. A single character matches too much to be useful.
const minPartial = 2

func (g *Game) registerPlayerCommands(r *command.Registry[*Call]) {
	r.MustRegister(&command.Descriptor[*Call]{
		Name:    "look",
		Aliases: []string{"l"},
		Help:    "Describe your surroundings.",
		Syntax:  "look",
		Mode:    command.Player,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			return c.Session.look(c.Ctx)
		},
	})
	r.MustRegister(&command.Descriptor[*Call]{
		Name:     "go",
		Help:     "Move through an exit.",
		Syntax:   "go <direction>",
		Examples: []string{"go north"},
		Mode:     command.Player,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			if len(inv.Args) != 1 {
				return quill.Errorf(quill.ErrInvalidInput, "usage: %s", inv.Command.Syntax)
			}
			return c.Session.move(c.Ctx, inv.Args[0])
		},
	})
	r.MustRegister(&command.Descriptor[*Call]{
		Name:     "take",
		Aliases:  []string{"get"},
		Help:     "Pick up an item.",
		Syntax:   "take <item>",
		Examples: []string{"take lantern", `take "brass key"`},
		Mode:     command.Player,
		Slot:     command.ItemSlot,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			if len(inv.Args) != 1 {
				return quill.Errorf(quill.ErrInvalidInput, "usage: %s", inv.Command.Syntax)
			}
			return c.Session.take(c.Ctx, inv.Args[0])
		},
	})
	r.MustRegister(&command.Descriptor[*Call]{
		Name:     "drop",
		Help:     "Put down a carried item.",
		Syntax:   "drop <item>",
		Examples: []string{"drop lantern"},
		Mode:     command.Player,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			if len(inv.Args) != 1 {
				return quill.Errorf(quill.ErrInvalidInput, "usage: %s", inv.Command.Syntax)
			}
			return c.Session.drop(c.Ctx, inv.Args[0])
		},
	})
	r.MustRegister(&command.Descriptor[*Call]{
		Name:    "inventory",
		Aliases: []string{"i", "inv"},
		Help:    "List what you are carrying.",
		Syntax:  "inventory",
		Mode:    command.Player,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			return c.Session.showInventory()
		},
	})
	r.MustRegister(&command.Descriptor[*Call]{
		Name:     "talk",
		Help:     "Talk to a character in this location.",
		Syntax:   "talk <character>",
		Examples: []string{"talk hermit"},
		Mode:     command.Player,
		Slot:     command.CharacterSlot,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			if len(inv.Args) != 1 {
				return quill.Errorf(quill.ErrInvalidInput, "usage: %s", inv.Command.Syntax)
			}
			return c.Session.talk(c.Ctx, inv.Args[0])
		},
	})
	r.MustRegister(&command.Descriptor[*Call]{
		Name:    "admin",
		Help:    "Elevate to admin mode.",
		Syntax:  "admin",
		Mode:    command.Player,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			c.Session.sub = subPassword{username: c.Session.user.Name}
			c.Session.history.ResetCursor()
			return nil
		},
	})
	r.MustRegister(&command.Descriptor[*Call]{
		Name:   "history",
		Help:   "Show your most recent commands.",
		Syntax: "history",
		Mode:   command.Both,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			return c.Session.showHistory()
		},
	})
	r.MustRegister(&command.Descriptor[*Call]{
		Name:     "help",
		Aliases:  []string{"?"},
		Help:     "List commands, or show one command in detail.",
		Syntax:   "help [command]",
		Examples: []string{"help", "help go"},
		Mode:     command.Both,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			return c.Session.help(strings.Join(inv.Args, " "))
		},
	})
	r.MustRegister(&command.Descriptor[*Call]{
		Name:    "quit",
		Aliases: []string{"exit"},
		Help:    "Leave the game.",
		Syntax:  "quit",
		Mode:    command.Both,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			c.Session.out.WriteLine("Goodbye.", termio.StyleInfo)
			c.Session.Close()
			return nil
		},
	})
}

func (s *Session) enterAdventure(ctx context.Context, id string) error {
	adventure, err := s.game.storage.LoadAdventure(ctx, id)
	if err != nil {
		return err
	}
	start, err := s.game.storage.LoadLocation(ctx, adventure.Start)
	if err != nil {
		return err
	}
	s.playing = adventure
	s.location = start
	s.out.WriteLine(fmt.Sprintf("* %s *", adventure.Name), termio.StyleInfo)
	if adventure.Description != "" {
		s.out.WriteLine(adventure.Description, termio.StyleDefault)
	}
	return s.look(ctx)
}

func (s *Session) requireLocation() error {
	if s.location == nil {
		return quill.Errorf(quill.ErrInvalidInput, "you are nowhere, no adventure is loaded")
	}
	return nil
}

func (s *Session) look(ctx context.Context) error {
	if err := s.requireLocation(); err != nil {
		return err
	}
	loc := s.location
	s.out.WriteLine(loc.Name, termio.StyleInfo)
	if loc.Description != "" {
		s.out.WriteLine(loc.Description, termio.StyleDefault)
	}
	items, err := s.itemsHere(ctx)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, item.Name)
		}
		s.out.WriteLine(fmt.Sprintf("You see %s.", lang.Enumerator{}.Do(names...)), termio.StyleDefault)
	}
	chars, err := s.charactersHere(ctx)
	if err != nil {
		return err
	}
	for _, ch := range chars {
		s.out.WriteLine(fmt.Sprintf("%s is here.", lang.Capitalize(ch.Name)), termio.StyleDefault)
	}
	if len(loc.Exits) > 0 {
		dirs := make([]string, 0, len(loc.Exits))
		for dir := range loc.Exits {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		s.out.WriteLine(fmt.Sprintf("Exits: %s.", strings.Join(dirs, ", ")), termio.StyleDim)
	} else {
		s.out.WriteLine("There are no obvious exits.", termio.StyleDim)
	}
	return nil
}

func (s *Session) move(ctx context.Context, direction string) error {
	if err := s.requireLocation(); err != nil {
		return err
	}
	dest, found := s.location.Exits[strings.ToLower(direction)]
	if !found {
		return quill.Errorf(quill.ErrInvalidInput, "you can't go %q from here", direction)
	}
	loc, err := s.game.storage.LoadLocation(ctx, dest)
	if err != nil {
		return err
	}
	s.location = loc
	return s.look(ctx)
}

func (s *Session) itemsHere(ctx context.Context) ([]*structs.Item, error) {
	if s.location == nil {
		return nil, nil
	}
	entities, err := s.game.storage.ListEntities(ctx, structs.KindItem, storage.Filter{
		Adventure: s.playing.ID,
		Location:  s.location.ID,
	})
	if err != nil {
		return nil, err
	}
	items := make([]*structs.Item, 0, len(entities))
	for _, e := range entities {
		items = append(items, e.(*structs.Item))
	}
	return items, nil
}

func (s *Session) charactersHere(ctx context.Context) ([]*structs.Character, error) {
	if s.location == nil {
		return nil, nil
	}
	entities, err := s.game.storage.ListEntities(ctx, structs.KindCharacter, storage.Filter{
		Adventure: s.playing.ID,
		Location:  s.location.ID,
	})
	if err != nil {
		return nil, err
	}
	chars := make([]*structs.Character, 0, len(entities))
	for _, e := range entities {
		chars = append(chars, e.(*structs.Character))
	}
	return chars, nil
}

// findEntity resolves a player-typed reference against a candidate set:
// exact ID first, then case-insensitive name or name-word prefix.
// Ambiguous references list the contenders, short ones are rejected.
func findEntity[E structs.Entity](ref string, entities []E, what string) (E, error) {
	var zero E
	for _, e := range entities {
		if e.EntityID() == ref {
			return e, nil
		}
	}
	if len(ref) < minPartial {
		return zero, quill.Errorf(quill.ErrInvalidInput, "%q is too short, type at least %d characters", ref, minPartial)
	}
	lower := strings.ToLower(ref)
	matched := []E{}
	for _, e := range entities {
		name := strings.ToLower(e.DisplayName())
		if strings.HasPrefix(name, lower) {
			matched = append(matched, e)
			continue
		}
		for _, word := range strings.Fields(name) {
			if strings.HasPrefix(word, lower) {
				matched = append(matched, e)
				break
			}
		}
	}
	switch len(matched) {
	case 0:
		return zero, quill.Errorf(quill.ErrNotFound, "there is no %s called %q here", what, ref)
	case 1:
		return matched[0], nil
	default:
		names := make([]string, 0, len(matched))
		for _, e := range matched {
			names = append(names, e.DisplayName())
		}
		return zero, quill.Errorf(quill.ErrInvalidInput, "%q could be %s, be more specific", ref, lang.Enumerator{Operator: "or"}.Do(names...))
	}
}

func (s *Session) take(ctx context.Context, ref string) error {
	if err := s.requireLocation(); err != nil {
		return err
	}
	items, err := s.itemsHere(ctx)
	if err != nil {
		return err
	}
	item, err := findEntity(ref, items, "item")
	if err != nil {
		return err
	}
	if !item.Portable {
		return quill.Errorf(quill.ErrInvalidInput, "the %s won't budge", item.Name)
	}
	item.Location = ""
	if err := s.game.storage.SaveEntity(ctx, item); err != nil {
		return err
	}
	s.inventory[item.ID] = item
	s.out.WriteLine(fmt.Sprintf("You take the %s.", item.Name), termio.StyleDefault)
	return nil
}

func (s *Session) drop(ctx context.Context, ref string) error {
	if err := s.requireLocation(); err != nil {
		return err
	}
	carried := make([]*structs.Item, 0, len(s.inventory))
	for _, item := range s.inventory {
		carried = append(carried, item)
	}
	sort.Slice(carried, func(i, j int) bool { return carried[i].ID < carried[j].ID })
	item, err := findEntity(ref, carried, "carried item")
	if err != nil {
		return err
	}
	item.Location = s.location.ID
	if err := s.game.storage.SaveEntity(ctx, item); err != nil {
		return err
	}
	delete(s.inventory, item.ID)
	s.out.WriteLine(fmt.Sprintf("You drop the %s.", item.Name), termio.StyleDefault)
	return nil
}

func (s *Session) showInventory() error {
	if len(s.inventory) == 0 {
		s.out.WriteLine("You aren't carrying anything.", termio.StyleDim)
		return nil
	}
	names := make([]string, 0, len(s.inventory))
	for _, item := range s.inventory {
		names = append(names, item.Name)
	}
	sort.Strings(names)
	s.out.WriteLine(fmt.Sprintf("You are carrying %s.", lang.Enumerator{}.Do(names...)), termio.StyleDefault)
	return nil
}

func (s *Session) showHistory() error {
	entries := s.history.List(history.DefaultDisplayLimit)
	if len(entries) == 0 {
		s.out.WriteLine("No commands in your history yet.", termio.StyleDim)
		return nil
	}
	for _, entry := range entries {
		s.out.WriteLine(fmt.Sprintf("%4d  %s", entry.Seq, entry.Line), termio.StyleDefault)
	}
	return nil
}

func (s *Session) help(name string) error {
	if name != "" {
		d, found := s.game.registry.Resolve(name, s.mode)
		if !found {
			return quill.Errorf(quill.ErrNotFound, "no command %q in %s mode", name, s.mode)
		}
		s.out.WriteLine(d.Syntax, termio.StyleInfo)
		s.out.WriteLine(d.Help, termio.StyleDefault)
		if len(d.Aliases) > 0 {
			s.out.WriteLine(fmt.Sprintf("Aliases: %s", strings.Join(d.Aliases, ", ")), termio.StyleDim)
		}
		for _, example := range d.Examples {
			s.out.WriteLine(fmt.Sprintf("  %s", example), termio.StyleDim)
		}
		return nil
	}
	buf := &strings.Builder{}
	tbl := table.New("Command", "Aliases", "Description").WithWriter(buf)
	for _, d := range s.game.registry.Commands(s.mode) {
		tbl.AddRow(d.Name, strings.Join(d.Aliases, ", "), d.Help)
	}
	tbl.Print()
	s.writeLines(buf.String(), termio.StyleDefault)
	return nil
}

// writeLines splits a multi-line blob so each line goes through the
// Printer styling path.
func (s *Session) writeLines(blob string, style termio.Style) {
	for _, line := range strings.Split(strings.TrimRight(blob, "\n"), "\n") {
		s.out.WriteLine(line, style)
	}
}
