// Package command converts raw input lines into structured invocations
// and looks up their handlers in mode-scoped tables.
package command

import (
	"sort"
	"strings"

	"github.com/buildkite/shellwords"
	"github.com/quillmud/quill"
)

// Mode gates which commands are resolvable for a session.
type Mode int

const (
	Player Mode = iota
	Admin
	Both
)

func (m Mode) String() string {
	switch m {
	case Player:
		return "player"
	case Admin:
		return "admin"
	case Both:
		return "both"
	}
	return "unknown"
}

// Allows reports whether a command requiring mode m is available to a
// session currently in mode current.
func (m Mode) Allows(current Mode) bool {
	return m == Both || m == current
}

// Slot declares the completable final argument position of a command.
type Slot int

const (
	NoSlot Slot = iota
	AdventureSlot
	LocationSlot
	ItemSlot
	CharacterSlot
)

// Descriptor describes one command. Name may contain spaces; multi-word
// names are matched against the leading tokens of the input before any
// shorter name is considered.
type Descriptor[C any] struct {
	Name     string
	Aliases  []string
	Help     string
	Syntax   string
	Examples []string
	Mode     Mode
	Slot     Slot
	Handler  func(c C, inv *Invocation[C]) error
}

func (d *Descriptor[C]) words() int {
	return len(strings.Fields(d.Name))
}

// Invocation is a parsed command plus its arguments. Args excludes the
// tokens consumed by the command name; quoted arguments arrive as
// single tokens with the quotes consumed.
type Invocation[C any] struct {
	Command *Descriptor[C]
	Matched string
	Args    []string
	Line    string
}

type Registry[C any] struct {
	descriptors []*Descriptor[C]
	tables      map[Mode]map[string]*Descriptor[C]
	maxWords    int
}

func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{
		tables: map[Mode]map[string]*Descriptor[C]{
			Player: {},
			Admin:  {},
		},
		maxWords: 1,
	}
}

// Register adds a descriptor to every mode table it applies to. A name
// or alias collision within one mode is a configuration error.
func (r *Registry[C]) Register(d *Descriptor[C]) error {
	modes := []Mode{d.Mode}
	if d.Mode == Both {
		modes = []Mode{Player, Admin}
	}
	tokens := append([]string{d.Name}, d.Aliases...)
	for _, mode := range modes {
		for _, token := range tokens {
			if _, found := r.tables[mode][token]; found {
				return quill.Errorf(quill.ErrInternal, "command %q already registered in %s mode", token, mode)
			}
		}
	}
	for _, mode := range modes {
		for _, token := range tokens {
			r.tables[mode][token] = d
		}
	}
	for _, token := range tokens {
		if n := len(strings.Fields(token)); n > r.maxWords {
			r.maxWords = n
		}
	}
	r.descriptors = append(r.descriptors, d)
	return nil
}

// MustRegister is Register for static tables built at startup.
func (r *Registry[C]) MustRegister(d *Descriptor[C]) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Resolve looks up a command by exact name or alias, filtered to the
// given mode.
func (r *Registry[C]) Resolve(nameOrAlias string, mode Mode) (*Descriptor[C], bool) {
	d, found := r.tables[mode][nameOrAlias]
	return d, found
}

// Parse tokenizes a line and matches it against the mode's table,
// preferring the longest registered multi-word name over any shorter
// match on the same prefix.
func (r *Registry[C]) Parse(line string, mode Mode) (*Invocation[C], error) {
	tokens, err := shellwords.SplitPosix(strings.TrimSpace(line))
	if err != nil {
		return nil, quill.Errorf(quill.ErrInvalidInput, "can't parse input: %v", err)
	}
	if len(tokens) == 0 {
		return nil, quill.Errorf(quill.ErrInvalidInput, "empty input")
	}
	limit := r.maxWords
	if limit > len(tokens) {
		limit = len(tokens)
	}
	for n := limit; n >= 1; n-- {
		name := strings.Join(tokens[:n], " ")
		if d, found := r.Resolve(name, mode); found {
			return &Invocation[C]{
				Command: d,
				Matched: name,
				Args:    tokens[n:],
				Line:    line,
			}, nil
		}
	}
	return nil, quill.Errorf(quill.ErrInvalidInput, "unknown command %q, try \"help\"", tokens[0])
}

// Commands returns the descriptors available in the given mode, sorted
// by name.
func (r *Registry[C]) Commands(mode Mode) []*Descriptor[C] {
	out := []*Descriptor[C]{}
	for _, d := range r.descriptors {
		if d.Mode.Allows(mode) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Names returns all names and aliases resolvable in the given mode.
func (r *Registry[C]) Names(mode Mode) []string {
	names := make([]string, 0, len(r.tables[mode]))
	for name := range r.tables[mode] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
