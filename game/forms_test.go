package game

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/quillmud/quill"
	"github.com/quillmud/quill/form"
	"github.com/quillmud/quill/structs"
)

func TestParseExits(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    structs.ExitMap
		wantErr bool
	}{
		{
			name:  "simple",
			lines: []string{"north=temple-library", "Down = temple-crypt"},
			want:  structs.ExitMap{"north": "temple-library", "down": "temple-crypt"},
		},
		{
			name:  "empty",
			lines: nil,
			want:  structs.ExitMap{},
		},
		{
			name:    "missing destination",
			lines:   []string{"north="},
			wantErr: true,
		},
		{
			name:    "no separator",
			lines:   []string{"north temple-library"},
			wantErr: true,
		},
		{
			name:    "duplicate direction",
			lines:   []string{"north=a", "NORTH=b"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExits(tt.lines)
			if tt.wantErr {
				if quill.Kind(err) != quill.ErrValidation {
					t.Errorf("kind = %v, want Validation", quill.Kind(err))
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("exits mismatch:\n%s", diff)
			}
		})
	}
}

func TestApplyResultOnlyTouchesChangedFields(t *testing.T) {
	item := &structs.Item{ID: "lantern", Name: "brass lantern", Description: "Dented.", Portable: true}
	applyResult(item, &form.Result{
		Values: map[string]form.Value{
			"name":        {Text: "polished lantern"},
			"description": {Text: "Shiny."},
		},
		Changed: []string{"name"},
	})
	if item.Name != "polished lantern" {
		t.Errorf("changed field not applied, name = %q", item.Name)
	}
	if item.Description != "Dented." {
		t.Errorf("unchanged field was applied, description = %q", item.Description)
	}
}

func TestFieldsForCharacterDialogueRules(t *testing.T) {
	s := &Session{}
	scripted := &structs.Character{ID: "hermit", Dialogue: structs.StringList{"Go away."}}
	for _, f := range s.fieldsFor(scripted) {
		if f.Name == "dialogue" {
			if f.AllowEmpty {
				t.Error("scripted characters must keep at least one dialogue line")
			}
			if !f.Dialogue {
				t.Error("dialogue should use the keep/edit/replace flow")
			}
		}
	}
	ai := &structs.Character{ID: "oracle", AIDriven: true}
	for _, f := range s.fieldsFor(ai) {
		if f.Name == "dialogue" && !f.AllowEmpty {
			t.Error("AI characters may have no scripted dialogue")
		}
	}
}

func TestDirectValueShapes(t *testing.T) {
	scalar := form.Field{Name: "name"}
	if v := directValue(&scalar, "hello world"); v.Multi || v.Text != "hello world" {
		t.Errorf("scalar value = %+v", v)
	}
	multi := form.Field{Name: "dialogue", Multiline: true}
	v := directValue(&multi, `one\ntwo`)
	if !v.Multi || len(v.Lines) != 2 || v.Lines[1] != "two" {
		t.Errorf("multi value = %+v", v)
	}
	if v := directValue(&multi, ""); !v.Multi || len(v.Lines) != 0 {
		t.Errorf("empty multi value = %+v", v)
	}
}
