// Package form drives multi-field interactive edit sessions over an
// entity, producing a diff-style change set. The session is push
// driven: the dispatcher feeds it one submitted line at a time while
// the form sub-session is active.
package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/quillmud/quill"
	"github.com/quillmud/quill/termio"
)

const (
	// CancelWord aborts the whole session at any field.
	CancelWord = "cancel"
	// EndWord terminates multi-line collection.
	EndWord = "END"
)

// Value is a field value: a scalar or a list of lines.
type Value struct {
	Text  string
	Lines []string
	Multi bool
}

func (v Value) Equal(o Value) bool {
	if v.Multi != o.Multi {
		return false
	}
	if !v.Multi {
		return v.Text == o.Text
	}
	if len(v.Lines) != len(o.Lines) {
		return false
	}
	for i := range v.Lines {
		if v.Lines[i] != o.Lines[i] {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	if v.Multi {
		return strings.Join(v.Lines, " / ")
	}
	return v.Text
}

// Field describes one editable property.
type Field struct {
	Name     string
	Label    string
	Help     string
	Required bool
	// Multiline fields collect lines verbatim until EndWord.
	Multiline bool
	// Dialogue fields add a keep/edit/replace choice in front of the
	// multi-line protocol.
	Dialogue bool
	// AllowEmpty permits a dialogue field to end up with no lines.
	AllowEmpty bool
	Current    Value
	Validate   func(Value) error
}

// Result is handed to the caller once the form completes. It is either
// fully cancelled, with no mutation performed, or fully collected with
// every required field validated.
type Result struct {
	Cancelled bool
	Values    map[string]Value
	Changed   []string
}

func (r *Result) ChangedSet() map[string]bool {
	set := map[string]bool{}
	for _, name := range r.Changed {
		set[name] = true
	}
	return set
}

type state int

const (
	statePrompt state = iota
	stateCollect
	stateChoice
	stateEditLine
	stateConfirm
	stateDone
)

// Session collects validated values for a fixed ordered set of fields.
type Session struct {
	Title string

	fields  []Field
	index   int
	state   state
	values  map[string]Value
	changed []string
	pending []string
	editIdx int
	out     termio.Printer
}

func New(title string, fields []Field, out termio.Printer) *Session {
	return &Session{
		Title:  title,
		fields: fields,
		values: map[string]Value{},
		out:    out,
	}
}

// Start announces the form and prompts for the first field.
func (s *Session) Start() {
	s.out.WriteLine(fmt.Sprintf("** %s **", s.Title), termio.StyleInfo)
	s.out.WriteLine(fmt.Sprintf("Empty input keeps the current value, %q aborts.", CancelWord), termio.StyleDim)
	s.showField()
}

// Active reports whether the session still wants input lines.
func (s *Session) Active() bool {
	return s.state != stateDone
}

// Cancel aborts the session. It is idempotent: repeating it has no
// further effect.
func (s *Session) Cancel() *Result {
	if s.state == stateDone {
		return &Result{Cancelled: true}
	}
	s.state = stateDone
	s.out.WriteLine("Edit cancelled, nothing saved.", termio.StyleInfo)
	return &Result{Cancelled: true}
}

// Submit feeds one input line to the session. It returns a non-nil
// Result once the session has completed or been cancelled, and nil
// while more input is expected.
func (s *Session) Submit(line string) (*Result, error) {
	switch s.state {
	case statePrompt:
		return s.submitPrompt(line), nil
	case stateCollect:
		return s.submitCollect(line), nil
	case stateChoice:
		return s.submitChoice(line), nil
	case stateEditLine:
		return s.submitEditLine(line), nil
	case stateConfirm:
		return s.submitConfirm(line), nil
	}
	return nil, errors.WithStack(quill.Errorf(quill.ErrInternal, "input on finished form"))
}

func (s *Session) field() *Field {
	return &s.fields[s.index]
}

func (s *Session) cancelled(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), CancelWord)
}

func (s *Session) showField() {
	f := s.field()
	s.out.WriteLine("", termio.StyleDefault)
	s.out.WriteLine(fmt.Sprintf("%s (field %d of %d)", f.Label, s.index+1, len(s.fields)), termio.StylePrompt)
	if f.Help != "" {
		s.out.WriteLine(f.Help, termio.StyleDim)
	}
	if f.Current.Multi {
		if len(f.Current.Lines) == 0 {
			s.out.WriteLine("Current: (none)", termio.StyleDim)
		} else {
			s.out.WriteLine("Current:", termio.StyleDim)
			for i, l := range f.Current.Lines {
				s.out.WriteLine(fmt.Sprintf("  %d: %s", i+1, l), termio.StyleDim)
			}
		}
	} else {
		current := f.Current.Text
		if current == "" {
			current = "(empty)"
		}
		s.out.WriteLine(fmt.Sprintf("Current: %s", current), termio.StyleDim)
	}
	switch {
	case f.Dialogue:
		s.state = stateChoice
		s.out.WriteLine(fmt.Sprintf("keep / edit <line#> / replace (replace collects lines until %q)", EndWord), termio.StylePrompt)
	case f.Multiline:
		s.state = stateCollect
		s.pending = nil
		s.out.WriteLine(fmt.Sprintf("Enter lines, finish with %q on its own line:", EndWord), termio.StylePrompt)
	default:
		s.state = statePrompt
		s.out.WriteLine("New value:", termio.StylePrompt)
	}
}

func (s *Session) submitPrompt(line string) *Result {
	if s.cancelled(line) {
		return s.Cancel()
	}
	if line == "" {
		// The kept value must still satisfy the field's constraints.
		if err := s.validate(s.field().Current); err != nil {
			s.out.WriteLine(err.Error(), termio.StyleError)
			s.out.WriteLine("New value:", termio.StylePrompt)
			return nil
		}
		return s.keep()
	}
	candidate := Value{Text: line}
	if err := s.validate(candidate); err != nil {
		s.out.WriteLine(err.Error(), termio.StyleError)
		s.out.WriteLine("New value:", termio.StylePrompt)
		return nil
	}
	return s.store(candidate)
}

func (s *Session) submitCollect(line string) *Result {
	if s.cancelled(line) {
		return s.Cancel()
	}
	if line != EndWord {
		s.pending = append(s.pending, line)
		return nil
	}
	f := s.field()
	if len(s.pending) == 0 {
		// Terminating without input keeps the current value; it never
		// clears existing content. The kept value must still satisfy
		// the field's constraints.
		if err := s.validate(f.Current); err != nil {
			s.out.WriteLine(err.Error(), termio.StyleError)
			if f.Dialogue {
				s.state = stateChoice
				s.out.WriteLine("keep / edit <line#> / replace:", termio.StylePrompt)
			} else {
				s.out.WriteLine(fmt.Sprintf("Enter lines, finish with %q on its own line:", EndWord), termio.StylePrompt)
			}
			return nil
		}
		return s.keep()
	}
	candidate := Value{Lines: s.pending, Multi: true}
	if err := s.validate(candidate); err != nil {
		s.out.WriteLine(err.Error(), termio.StyleError)
		s.pending = nil
		if f.Dialogue {
			s.state = stateChoice
			s.out.WriteLine(fmt.Sprintf("keep / edit <line#> / replace (replace collects lines until %q)", EndWord), termio.StylePrompt)
		} else {
			s.out.WriteLine(fmt.Sprintf("Enter lines, finish with %q on its own line:", EndWord), termio.StylePrompt)
		}
		return nil
	}
	return s.store(candidate)
}

func (s *Session) submitChoice(line string) *Result {
	if s.cancelled(line) {
		return s.Cancel()
	}
	f := s.field()
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "" || strings.EqualFold(trimmed, "keep"):
		if err := s.validate(f.Current); err != nil {
			s.out.WriteLine(err.Error(), termio.StyleError)
			s.out.WriteLine("keep / edit <line#> / replace:", termio.StylePrompt)
			return nil
		}
		return s.keep()
	case strings.EqualFold(trimmed, "replace"):
		s.state = stateCollect
		s.pending = nil
		s.out.WriteLine(fmt.Sprintf("Enter lines, finish with %q on its own line:", EndWord), termio.StylePrompt)
		return nil
	}
	parts := strings.Fields(trimmed)
	if len(parts) == 2 && strings.EqualFold(parts[0], "edit") {
		idx, err := strconv.Atoi(parts[1])
		if err != nil || idx < 1 || idx > len(f.Current.Lines) {
			s.out.WriteLine(fmt.Sprintf("No line %q; the list has %d lines.", parts[1], len(f.Current.Lines)), termio.StyleError)
			s.out.WriteLine("keep / edit <line#> / replace:", termio.StylePrompt)
			return nil
		}
		s.editIdx = idx - 1
		s.state = stateEditLine
		s.out.WriteLine(fmt.Sprintf("New text for line %d:", idx), termio.StylePrompt)
		return nil
	}
	s.out.WriteLine("Answer keep, edit <line#>, or replace.", termio.StyleError)
	return nil
}

func (s *Session) submitEditLine(line string) *Result {
	if s.cancelled(line) {
		return s.Cancel()
	}
	f := s.field()
	lines := append([]string{}, f.Current.Lines...)
	lines[s.editIdx] = line
	candidate := Value{Lines: lines, Multi: true}
	if err := s.validate(candidate); err != nil {
		s.out.WriteLine(err.Error(), termio.StyleError)
		s.state = stateChoice
		s.out.WriteLine("keep / edit <line#> / replace:", termio.StylePrompt)
		return nil
	}
	return s.store(candidate)
}

// Validate checks a candidate value against the field's structural
// constraints and its custom validator.
func Validate(f *Field, v Value) error {
	if f.Required && !v.Multi && strings.TrimSpace(v.Text) == "" {
		return quill.Errorf(quill.ErrValidation, "%s is required", f.Label)
	}
	if f.Dialogue && !f.AllowEmpty && v.Multi && len(v.Lines) == 0 {
		return quill.Errorf(quill.ErrValidation, "%s needs at least one line", f.Label)
	}
	if f.Validate != nil {
		if err := f.Validate(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) validate(v Value) error {
	return Validate(s.field(), v)
}

func (s *Session) keep() *Result {
	f := s.field()
	s.values[f.Name] = f.Current
	return s.advance()
}

func (s *Session) store(v Value) *Result {
	f := s.field()
	s.values[f.Name] = v
	if !v.Equal(f.Current) {
		s.changed = append(s.changed, f.Name)
	}
	return s.advance()
}

func (s *Session) advance() *Result {
	s.index++
	if s.index < len(s.fields) {
		s.showField()
		return nil
	}
	s.summary()
	s.state = stateConfirm
	return nil
}

func (s *Session) summary() {
	changed := map[string]bool{}
	for _, name := range s.changed {
		changed[name] = true
	}
	s.out.WriteLine("", termio.StyleDefault)
	s.out.WriteLine("Summary:", termio.StyleInfo)
	for _, f := range s.fields {
		if changed[f.Name] {
			s.out.WriteLine(fmt.Sprintf("  %s: %s -> %s", f.Label, f.Current, s.values[f.Name]), termio.StyleDefault)
		} else {
			s.out.WriteLine(fmt.Sprintf("  %s: (kept)", f.Label), termio.StyleDim)
		}
	}
	s.out.WriteLine("Save changes? [y/n]", termio.StylePrompt)
}

func (s *Session) submitConfirm(line string) *Result {
	if s.cancelled(line) {
		return s.Cancel()
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	s.state = stateDone
	if answer != "y" && answer != "yes" {
		s.out.WriteLine("Edit cancelled, nothing saved.", termio.StyleInfo)
		return &Result{Cancelled: true}
	}
	return &Result{
		Values:  s.values,
		Changed: s.changed,
	}
}
