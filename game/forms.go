package game

import (
	"sort"
	"strconv"
	"strings"

	"github.com/quillmud/quill"
	"github.com/quillmud/quill/form"
	"github.com/quillmud/quill/structs"
)

// fieldsFor builds the editable field set of an entity, preloaded with
// its current values. The same set backs interactive forms and direct
// property edits.
func (s *Session) fieldsFor(entity structs.Entity) []form.Field {
	switch e := entity.(type) {
	case *structs.Adventure:
		return []form.Field{
			textField("name", "Name", true, e.Name),
			textField("description", "Description", false, e.Description),
			{
				Name:     "start",
				Label:    "Start location",
				Help:     "Location ID new players begin in.",
				Required: true,
				Current:  form.Value{Text: e.Start},
			},
		}
	case *structs.Location:
		return []form.Field{
			textField("name", "Name", true, e.Name),
			textField("description", "Description", false, e.Description),
			{
				Name:      "exits",
				Label:     "Exits",
				Help:      "One exit per line as direction=location-id.",
				Multiline: true,
				Current:   form.Value{Lines: exitLines(e.Exits), Multi: true},
				Validate:  validateExits,
			},
		}
	case *structs.Item:
		return []form.Field{
			textField("name", "Name", true, e.Name),
			textField("description", "Description", false, e.Description),
			{
				Name:     "location",
				Label:    "Location",
				Help:     "Location ID the item lies in, empty for nowhere.",
				Current:  form.Value{Text: e.Location},
				Validate: s.validateLocationRef,
			},
			boolField("portable", "Portable", e.Portable),
		}
	case *structs.Character:
		fields := []form.Field{
			textField("name", "Name", true, e.Name),
			textField("description", "Description", false, e.Description),
			{
				Name:     "location",
				Label:    "Location",
				Help:     "Location ID the character stands in.",
				Current:  form.Value{Text: e.Location},
				Validate: s.validateLocationRef,
			},
			boolField("ai", "AI driven", e.AIDriven),
			textField("persona", "Persona", false, e.Persona),
			{
				Name:       "dialogue",
				Label:      "Dialogue",
				Help:       "Lines a scripted character cycles through.",
				Multiline:  true,
				Dialogue:   true,
				AllowEmpty: e.AIDriven,
				Current:    form.Value{Lines: e.Dialogue, Multi: true},
			},
		}
		return fields
	}
	return nil
}

func textField(name, label string, required bool, current string) form.Field {
	return form.Field{
		Name:     name,
		Label:    label,
		Required: required,
		Current:  form.Value{Text: current},
	}
}

func boolField(name, label string, current bool) form.Field {
	return form.Field{
		Name:    name,
		Label:   label,
		Help:    "true or false.",
		Current: form.Value{Text: strconv.FormatBool(current)},
		Validate: func(v form.Value) error {
			if _, err := strconv.ParseBool(v.Text); err != nil {
				return quill.Errorf(quill.ErrValidation, "%q is not true or false", v.Text)
			}
			return nil
		},
	}
}

func exitLines(exits structs.ExitMap) []string {
	dirs := make([]string, 0, len(exits))
	for dir := range exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	lines := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		lines = append(lines, dir+"="+exits[dir])
	}
	return lines
}

func parseExits(lines []string) (structs.ExitMap, error) {
	exits := structs.ExitMap{}
	for _, line := range lines {
		dir, dest, found := strings.Cut(line, "=")
		dir, dest = strings.TrimSpace(dir), strings.TrimSpace(dest)
		if !found || dir == "" || dest == "" {
			return nil, quill.Errorf(quill.ErrValidation, "bad exit %q, expected direction=location-id", line)
		}
		if _, dup := exits[strings.ToLower(dir)]; dup {
			return nil, quill.Errorf(quill.ErrValidation, "duplicate exit direction %q", dir)
		}
		exits[strings.ToLower(dir)] = dest
	}
	return exits, nil
}

func validateExits(v form.Value) error {
	_, err := parseExits(v.Lines)
	return err
}

// validateLocationRef only checks shape, not existence, so content can
// be entered in any order.
func (s *Session) validateLocationRef(v form.Value) error {
	if strings.ContainsAny(v.Text, " \t") {
		return quill.Errorf(quill.ErrValidation, "location IDs contain no whitespace")
	}
	return nil
}

// directValue turns a typed property value into the field's value
// shape. Multi-line fields split on literal \n so they stay reachable
// from a one-line edit.
func directValue(field *form.Field, raw string) form.Value {
	if !field.Multiline {
		return form.Value{Text: raw}
	}
	if raw == "" {
		return form.Value{Multi: true}
	}
	return form.Value{Lines: strings.Split(raw, "\\n"), Multi: true}
}

// applyResult copies the changed values of a completed form back onto
// the entity.
func applyResult(entity structs.Entity, result *form.Result) {
	changed := result.ChangedSet()
	value := func(name string) (form.Value, bool) {
		if !changed[name] {
			return form.Value{}, false
		}
		v, found := result.Values[name]
		return v, found
	}
	switch e := entity.(type) {
	case *structs.Adventure:
		if v, ok := value("name"); ok {
			e.Name = v.Text
		}
		if v, ok := value("description"); ok {
			e.Description = v.Text
		}
		if v, ok := value("start"); ok {
			e.Start = v.Text
		}
	case *structs.Location:
		if v, ok := value("name"); ok {
			e.Name = v.Text
		}
		if v, ok := value("description"); ok {
			e.Description = v.Text
		}
		if v, ok := value("exits"); ok {
			if exits, err := parseExits(v.Lines); err == nil {
				e.Exits = exits
			}
		}
	case *structs.Item:
		if v, ok := value("name"); ok {
			e.Name = v.Text
		}
		if v, ok := value("description"); ok {
			e.Description = v.Text
		}
		if v, ok := value("location"); ok {
			e.Location = v.Text
		}
		if v, ok := value("portable"); ok {
			e.Portable, _ = strconv.ParseBool(v.Text)
		}
	case *structs.Character:
		if v, ok := value("name"); ok {
			e.Name = v.Text
		}
		if v, ok := value("description"); ok {
			e.Description = v.Text
		}
		if v, ok := value("location"); ok {
			e.Location = v.Text
		}
		if v, ok := value("ai"); ok {
			e.AIDriven, _ = strconv.ParseBool(v.Text)
		}
		if v, ok := value("persona"); ok {
			e.Persona = v.Text
		}
		if v, ok := value("dialogue"); ok {
			e.Dialogue = structs.StringList(v.Lines)
		}
	}
}
