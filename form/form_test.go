package form

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/quillmud/quill"
	"github.com/quillmud/quill/termio"
)

func newTestSession(t *testing.T, fields []Field) (*Session, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	s := New("Edit location", fields, &termio.LinePrinter{W: buf})
	s.Start()
	return s, buf
}

func run(t *testing.T, s *Session, lines ...string) *Result {
	t.Helper()
	var result *Result
	for _, line := range lines {
		if result != nil {
			t.Fatalf("form finished early, leftover input %q", line)
		}
		var err error
		if result, err = s.Submit(line); err != nil {
			t.Fatal(err)
		}
	}
	return result
}

func threeFields() []Field {
	return []Field{
		{Name: "name", Label: "Name", Required: true, Current: Value{Text: "Temple"}},
		{Name: "description", Label: "Description", Current: Value{Text: "Old stones."}},
		{Name: "start", Label: "Start location", Current: Value{Text: "temple-entrance"}},
	}
}

func TestAllEmptyKeepsEverything(t *testing.T) {
	s, _ := newTestSession(t, threeFields())
	result := run(t, s, "", "", "", "y")
	if result == nil {
		t.Fatal("form should have completed")
	}
	if result.Cancelled {
		t.Fatal("form should not be cancelled")
	}
	if len(result.Changed) != 0 {
		t.Errorf("Changed = %v, want none", result.Changed)
	}
	want := map[string]Value{
		"name":        {Text: "Temple"},
		"description": {Text: "Old stones."},
		"start":       {Text: "temple-entrance"},
	}
	if diff := cmp.Diff(want, result.Values); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
}

func TestChangedFieldTracked(t *testing.T) {
	s, out := newTestSession(t, threeFields())
	result := run(t, s, "New Temple Name", "", "", "y")
	if diff := cmp.Diff([]string{"name"}, result.Changed); diff != "" {
		t.Errorf("Changed mismatch (-want +got):\n%s", diff)
	}
	if result.Values["name"].Text != "New Temple Name" {
		t.Errorf("name = %q", result.Values["name"].Text)
	}
	if !strings.Contains(out.String(), "Temple -> New Temple Name") {
		t.Errorf("summary should show old -> new, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "(kept)") {
		t.Errorf("summary should mark unchanged fields kept, got:\n%s", out.String())
	}
}

func TestValidatorRepromptsSameField(t *testing.T) {
	failures := 0
	fields := threeFields()
	fields[0].Validate = func(v Value) error {
		if strings.Contains(v.Text, " ") {
			return quill.Errorf(quill.ErrValidation, "name must not contain spaces")
		}
		return nil
	}
	s, out := newTestSession(t, fields)
	// Two invalid values, then a valid one: exactly one advance past
	// the field, two recorded failure displays.
	result := run(t, s, "bad value", "also bad", "good", "", "", "y")
	if result == nil || result.Cancelled {
		t.Fatal("form should complete successfully")
	}
	failures = strings.Count(out.String(), "name must not contain spaces")
	if failures != 2 {
		t.Errorf("validation failure displayed %d times, want 2", failures)
	}
	if result.Values["name"].Text != "good" {
		t.Errorf("name = %q, want %q", result.Values["name"].Text, "good")
	}
}

func TestKeepRejectsInvalidCurrentValue(t *testing.T) {
	fields := threeFields()
	fields[0].Current = Value{}
	s, out := newTestSession(t, fields)
	result := run(t, s, "", "Gatehouse", "", "", "y")
	if result == nil || result.Cancelled {
		t.Fatal("form should complete once a valid value is entered")
	}
	if !strings.Contains(out.String(), "Name is required") {
		t.Errorf("bare enter on an empty required field should reprompt, got:\n%s", out.String())
	}
	if result.Values["name"].Text != "Gatehouse" {
		t.Errorf("name = %q, want %q", result.Values["name"].Text, "Gatehouse")
	}
}

func TestCancelKeywordAborts(t *testing.T) {
	s, out := newTestSession(t, threeFields())
	result := run(t, s, "", "CANCEL")
	if result == nil || !result.Cancelled {
		t.Fatal("cancel keyword should abort the session")
	}
	if !strings.Contains(out.String(), "cancelled") {
		t.Errorf("cancellation confirmation missing:\n%s", out.String())
	}
	if s.Active() {
		t.Error("session should be finished after cancel")
	}
	// Cancellation is idempotent.
	again := s.Cancel()
	if !again.Cancelled {
		t.Error("repeated cancel should still report cancelled")
	}
}

func TestConfirmNoDiscards(t *testing.T) {
	s, _ := newTestSession(t, threeFields())
	result := run(t, s, "Renamed", "", "", "n")
	if result == nil || !result.Cancelled {
		t.Fatal("answering no at the summary should discard everything")
	}
}

func TestRequiredFieldRejectsBlankValue(t *testing.T) {
	fields := []Field{
		{Name: "name", Label: "Name", Required: true, Current: Value{Text: "Temple"}},
	}
	s, out := newTestSession(t, fields)
	// A quoted-blank style entry (whitespace) fails required validation;
	// bare Enter would instead keep the current value.
	if result := run(t, s, "   "); result != nil {
		t.Fatal("invalid value should not finish the form")
	}
	if !strings.Contains(out.String(), "Name is required") {
		t.Errorf("missing required message:\n%s", out.String())
	}
	result := run(t, s, "", "y")
	if result.Cancelled || len(result.Changed) != 0 {
		t.Errorf("keeping the current value should produce no changes: %+v", result)
	}
}

func TestMultilineCollect(t *testing.T) {
	fields := []Field{
		{Name: "description", Label: "Description", Multiline: true, Current: Value{Lines: []string{"old"}, Multi: true}},
	}
	s, _ := newTestSession(t, fields)
	result := run(t, s, "first line", "  second, indented  ", "", EndWord, "y")
	want := Value{Lines: []string{"first line", "  second, indented  ", ""}, Multi: true}
	if diff := cmp.Diff(want, result.Values["description"]); diff != "" {
		t.Errorf("lines collected verbatim mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"description"}, result.Changed); diff != "" {
		t.Errorf("Changed mismatch (-want +got):\n%s", diff)
	}
}

func TestMultilineImmediateEndKeepsCurrent(t *testing.T) {
	fields := []Field{
		{Name: "description", Label: "Description", Multiline: true, Current: Value{Lines: []string{"keep me"}, Multi: true}},
	}
	s, _ := newTestSession(t, fields)
	result := run(t, s, EndWord, "y")
	if len(result.Changed) != 0 {
		t.Errorf("immediate END should keep current value, Changed = %v", result.Changed)
	}
	if diff := cmp.Diff(Value{Lines: []string{"keep me"}, Multi: true}, result.Values["description"]); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func dialogueField(lines []string, allowEmpty bool) []Field {
	return []Field{
		{
			Name:       "dialogue",
			Label:      "Dialogue",
			Dialogue:   true,
			AllowEmpty: allowEmpty,
			Current:    Value{Lines: lines, Multi: true},
		},
	}
}

func TestDialogueKeep(t *testing.T) {
	s, _ := newTestSession(t, dialogueField([]string{"Hello.", "Goodbye."}, false))
	result := run(t, s, "keep", "y")
	if len(result.Changed) != 0 {
		t.Errorf("keep should not change anything, Changed = %v", result.Changed)
	}
}

func TestDialogueEditNumberedLine(t *testing.T) {
	s, _ := newTestSession(t, dialogueField([]string{"Hello.", "Goodbye."}, false))
	result := run(t, s, "edit 2", "Farewell, traveller.", "y")
	want := Value{Lines: []string{"Hello.", "Farewell, traveller."}, Multi: true}
	if diff := cmp.Diff(want, result.Values["dialogue"]); diff != "" {
		t.Errorf("dialogue mismatch (-want +got):\n%s", diff)
	}
}

func TestDialogueEditBadIndexReprompts(t *testing.T) {
	s, out := newTestSession(t, dialogueField([]string{"Hello."}, false))
	if result := run(t, s, "edit 5"); result != nil {
		t.Fatal("bad index should not finish the form")
	}
	if !strings.Contains(out.String(), "No line") {
		t.Errorf("expected index error:\n%s", out.String())
	}
	result := run(t, s, "edit 1", "Hi.", "y")
	if result.Values["dialogue"].Lines[0] != "Hi." {
		t.Errorf("dialogue = %v", result.Values["dialogue"].Lines)
	}
}

func TestDialogueReplaceAll(t *testing.T) {
	s, _ := newTestSession(t, dialogueField([]string{"Hello."}, false))
	result := run(t, s, "replace", "One.", "Two.", EndWord, "y")
	want := Value{Lines: []string{"One.", "Two."}, Multi: true}
	if diff := cmp.Diff(want, result.Values["dialogue"]); diff != "" {
		t.Errorf("dialogue mismatch (-want +got):\n%s", diff)
	}
}

func TestDialogueEmptyNotAllowed(t *testing.T) {
	s, out := newTestSession(t, dialogueField(nil, false))
	// Keeping an empty list on a field that disallows empty content is
	// itself a validation failure requiring re-entry.
	if result := run(t, s, "keep"); result != nil {
		t.Fatal("empty dialogue should not pass validation")
	}
	if !strings.Contains(out.String(), "at least one line") {
		t.Errorf("expected empty-content failure:\n%s", out.String())
	}
	result := run(t, s, "replace", "Say something.", EndWord, "y")
	if result == nil || result.Cancelled {
		t.Fatal("form should complete after supplying a line")
	}
}

func TestDialogueEmptyAllowedForAIDriven(t *testing.T) {
	s, _ := newTestSession(t, dialogueField(nil, true))
	result := run(t, s, "keep", "y")
	if result == nil || result.Cancelled {
		t.Fatal("empty dialogue should be fine when allowed")
	}
}
