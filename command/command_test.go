package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/quillmud/quill"
)

type testCtx struct{}

func noop(testCtx, *Invocation[testCtx]) error { return nil }

func testRegistry(t *testing.T) *Registry[testCtx] {
	t.Helper()
	r := NewRegistry[testCtx]()
	for _, d := range []*Descriptor[testCtx]{
		{Name: "look", Aliases: []string{"l"}, Mode: Player, Handler: noop},
		{Name: "show", Mode: Admin, Handler: noop},
		{Name: "show locations", Aliases: []string{"ls loc"}, Mode: Admin, Handler: noop},
		{Name: "edit location", Mode: Admin, Slot: LocationSlot, Handler: noop},
		{Name: "help", Aliases: []string{"?"}, Mode: Both, Handler: noop},
	} {
		if err := r.Register(d); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func TestResolveModeGating(t *testing.T) {
	r := testRegistry(t)
	tests := []struct {
		name  string
		mode  Mode
		found bool
	}{
		{"look", Player, true},
		{"l", Player, true},
		{"look", Admin, false},
		{"show", Admin, true},
		{"show", Player, false},
		{"help", Player, true},
		{"help", Admin, true},
		{"?", Player, true},
		{"?", Admin, true},
		{"LOOK", Player, false}, // case-sensitive exact match
	}
	for _, tt := range tests {
		if _, found := r.Resolve(tt.name, tt.mode); found != tt.found {
			t.Errorf("Resolve(%q, %s) found = %v, want %v", tt.name, tt.mode, found, tt.found)
		}
	}
}

func TestRegisterCollision(t *testing.T) {
	r := testRegistry(t)
	err := r.Register(&Descriptor[testCtx]{Name: "l", Mode: Player, Handler: noop})
	if err == nil {
		t.Error("registering a name colliding with an alias should fail")
	}
	err = r.Register(&Descriptor[testCtx]{Name: "look", Mode: Both, Handler: noop})
	if err == nil {
		t.Error("a Both command colliding with a Player command should fail")
	}
	// No collision across modes.
	if err := r.Register(&Descriptor[testCtx]{Name: "look", Mode: Admin, Handler: noop}); err != nil {
		t.Errorf("same name in the other mode should register: %v", err)
	}
}

func TestParseQuotedArguments(t *testing.T) {
	r := testRegistry(t)
	tests := []struct {
		line string
		args []string
	}{
		{`edit location loc-1 name "New Temple Name"`, []string{"loc-1", "name", "New Temple Name"}},
		{`edit location loc-1 "name" "New Temple Name"`, []string{"loc-1", "name", "New Temple Name"}},
		{`edit location "loc-1" name value`, []string{"loc-1", "name", "value"}},
	}
	for _, tt := range tests {
		inv, err := r.Parse(tt.line, Admin)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.line, err)
		}
		if inv.Command.Name != "edit location" {
			t.Errorf("Parse(%q) matched %q", tt.line, inv.Command.Name)
		}
		if diff := cmp.Diff(tt.args, inv.Args); diff != "" {
			t.Errorf("Parse(%q) args mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestParseLongestNameWins(t *testing.T) {
	r := testRegistry(t)
	inv, err := r.Parse("show locations", Admin)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Command.Name != "show locations" {
		t.Errorf("matched %q, want the two-word command", inv.Command.Name)
	}
	inv, err = r.Parse("show items", Admin)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Command.Name != "show" {
		t.Errorf("matched %q, want fallback to the one-word command", inv.Command.Name)
	}
	if diff := cmp.Diff([]string{"items"}, inv.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	// Multi-word alias.
	inv, err = r.Parse("ls loc", Admin)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Command.Name != "show locations" {
		t.Errorf("alias matched %q", inv.Command.Name)
	}
}

func TestParseUnknown(t *testing.T) {
	r := testRegistry(t)
	_, err := r.Parse("frobnicate the widget", Player)
	if err == nil {
		t.Fatal("unknown command should fail")
	}
	if !errors.Is(err, quill.ErrInvalidInput) {
		t.Errorf("unknown command error kind = %v", quill.Kind(err))
	}
	_, err = r.Parse("   ", Player)
	if !errors.Is(err, quill.ErrInvalidInput) {
		t.Errorf("blank line error kind = %v", quill.Kind(err))
	}
	_, err = r.Parse(`look "unbalanced`, Player)
	if !errors.Is(err, quill.ErrInvalidInput) {
		t.Errorf("unbalanced quote error kind = %v", quill.Kind(err))
	}
}
