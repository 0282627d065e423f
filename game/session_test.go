package game

import (
	"context"
	"strings"
	"testing"

	"github.com/quillmud/quill"
	"github.com/quillmud/quill/auth"
	"github.com/quillmud/quill/command"
	"github.com/quillmud/quill/storage"
	"github.com/quillmud/quill/structs"
	"github.com/quillmud/quill/termio"
)

const testSecret = "open sesame"

type recorder struct {
	lines  []string
	styles []termio.Style
}

func (r *recorder) WriteLine(text string, style termio.Style) {
	r.lines = append(r.lines, text)
	r.styles = append(r.styles, style)
}

func (r *recorder) dump() string {
	return strings.Join(r.lines, "\n")
}

func (r *recorder) contains(substr string) bool {
	return strings.Contains(r.dump(), substr)
}

func (r *recorder) reset() {
	r.lines = nil
	r.styles = nil
}

func seedWorld(t *testing.T, ctx context.Context, store *storage.Storage) {
	t.Helper()
	entities := []structs.Entity{
		&structs.Adventure{ID: "temple", Name: "The Sunken Temple", Description: "An old ruin.", Start: "temple-entrance"},
		&structs.Location{
			ID: "temple-entrance", Adventure: "temple", Name: "Temple Entrance",
			Description: "Vines cover the doorway.",
			Exits:       structs.ExitMap{"north": "temple-library"},
		},
		&structs.Location{
			ID: "temple-library", Adventure: "temple", Name: "Temple Library",
			Description: "Rotting shelves.",
			Exits:       structs.ExitMap{"south": "temple-entrance"},
		},
		&structs.Item{ID: "lantern", Adventure: "temple", Location: "temple-entrance", Name: "brass lantern", Portable: true},
		&structs.Item{ID: "statue", Adventure: "temple", Location: "temple-entrance", Name: "stone statue", Portable: false},
		&structs.Character{
			ID: "hermit", Adventure: "temple", Location: "temple-entrance", Name: "old hermit",
			Dialogue: structs.StringList{"Leave me be.", "The library holds answers."},
		},
		&structs.Character{
			ID: "oracle", Adventure: "temple", Location: "temple-entrance", Name: "blind oracle",
			AIDriven: true, Persona: "Cryptic, kind.",
		},
	}
	for _, entity := range entities {
		if err := store.SaveEntity(ctx, entity); err != nil {
			t.Fatal(err)
		}
	}
	hash, err := auth.HashSecret(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.StoreUser(ctx, &structs.User{Name: "ilse", PasswordHash: hash, Admin: true}); err != nil {
		t.Fatal(err)
	}
}

func newTestGame(t *testing.T, chat *scriptedChat) (*Game, *Session, *recorder) {
	t.Helper()
	ctx := context.Background()
	store, err := storage.New(ctx, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	seedWorld(t, ctx, store)
	g := New(store, auth.New(ctx, store, 0), nil, "temple")
	if chat != nil {
		g.chat = chat
	}
	rec := &recorder{}
	user, err := store.LoadUser(ctx, "ilse")
	if err != nil {
		t.Fatal(err)
	}
	s := g.NewSession(user, rec)
	s.Start(ctx)
	rec.reset()
	return g, s, rec
}

func elevate(t *testing.T, s *Session, rec *recorder) {
	t.Helper()
	ctx := context.Background()
	s.SubmitLine(ctx, "admin")
	if _, ok := s.sub.(subPassword); !ok {
		t.Fatalf("expected password sub-session, got %T", s.sub)
	}
	s.SubmitLine(ctx, testSecret)
	if s.mode != command.Admin {
		t.Fatalf("expected admin mode after elevation: %s", rec.dump())
	}
	rec.reset()
}

func TestLookAndMove(t *testing.T) {
	ctx := context.Background()
	_, s, rec := newTestGame(t, nil)

	s.SubmitLine(ctx, "look")
	for _, want := range []string{"Temple Entrance", "brass lantern", "Old hermit is here", "Exits: north"} {
		if !rec.contains(want) {
			t.Errorf("look output missing %q:\n%s", want, rec.dump())
		}
	}

	rec.reset()
	s.SubmitLine(ctx, "go north")
	if !rec.contains("Temple Library") {
		t.Errorf("expected to arrive in the library:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "go up")
	if !rec.contains("can't go") {
		t.Errorf("expected a bad-exit message:\n%s", rec.dump())
	}
	if s.location.ID != "temple-library" {
		t.Errorf("bad exit moved the player to %q", s.location.ID)
	}
}

func TestTakeDropInventory(t *testing.T) {
	ctx := context.Background()
	_, s, rec := newTestGame(t, nil)

	s.SubmitLine(ctx, "take lantern")
	if !rec.contains("You take the brass lantern") {
		t.Fatalf("take failed:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "inventory")
	if !rec.contains("brass lantern") {
		t.Errorf("inventory missing the lantern:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "look")
	if rec.contains("brass lantern") {
		t.Errorf("taken item still shown in the location:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "take statue")
	if !rec.contains("won't budge") {
		t.Errorf("expected the statue to stay put:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "go north")
	rec.reset()
	s.SubmitLine(ctx, "drop lantern")
	if !rec.contains("You drop the brass lantern") {
		t.Fatalf("drop failed:\n%s", rec.dump())
	}
	rec.reset()
	s.SubmitLine(ctx, "look")
	if !rec.contains("brass lantern") {
		t.Errorf("dropped item not shown in the new location:\n%s", rec.dump())
	}
}

func TestPartialReferences(t *testing.T) {
	ctx := context.Background()
	_, s, rec := newTestGame(t, nil)

	s.SubmitLine(ctx, "take l")
	if !rec.contains("too short") {
		t.Errorf("one-character reference should be rejected:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "take st")
	if !rec.contains("won't budge") {
		t.Errorf("word-prefix reference should resolve the statue:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "talk ol")
	if !rec.contains("Leave me be.") {
		t.Errorf("prefix reference should resolve the hermit:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "take xyz")
	if !rec.contains("no item called") {
		t.Errorf("unknown reference should be a not-found message:\n%s", rec.dump())
	}
}

func TestScriptedDialogueCycles(t *testing.T) {
	ctx := context.Background()
	_, s, rec := newTestGame(t, nil)

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		rec.reset()
		s.SubmitLine(ctx, "talk hermit")
		for _, line := range []string{"Leave me be.", "The library holds answers."} {
			if rec.contains(line) {
				seen[line] = true
			}
		}
	}
	if len(seen) != 2 {
		t.Errorf("expected both dialogue lines over repeated talks, saw %d", len(seen))
	}
}

func TestUnknownAndUnauthorized(t *testing.T) {
	ctx := context.Background()
	_, s, rec := newTestGame(t, nil)

	s.SubmitLine(ctx, "frobnicate")
	if !rec.contains("Unknown command") {
		t.Errorf("expected an unknown-command message:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "select adventure temple")
	if !rec.contains("requires admin mode") {
		t.Errorf("admin-only command should hint at elevation:\n%s", rec.dump())
	}
}

func TestElevationAndLogout(t *testing.T) {
	ctx := context.Background()
	_, s, rec := newTestGame(t, nil)

	s.SubmitLine(ctx, "admin")
	s.SubmitLine(ctx, "wrong password")
	if s.mode != command.Player {
		t.Fatal("bad password must not elevate")
	}
	if !rec.contains("Invalid credentials") {
		t.Errorf("expected a credentials error:\n%s", rec.dump())
	}

	rec.reset()
	elevate(t, s, rec)
	if got := s.PromptState().Prompt; got != "# " {
		t.Errorf("admin prompt = %q", got)
	}

	s.SubmitLine(ctx, "logout")
	if s.mode != command.Player {
		t.Error("logout should drop back to player mode")
	}
	if s.token != "" {
		t.Error("logout should clear the token")
	}
}

func TestPasswordPromptIsMasked(t *testing.T) {
	ctx := context.Background()
	_, s, _ := newTestGame(t, nil)

	s.SubmitLine(ctx, "admin")
	state := s.PromptState()
	if !state.Mask {
		t.Error("password entry must mask input")
	}
	if state.Prompt != "Password: " {
		t.Errorf("prompt = %q", state.Prompt)
	}
}

func TestAdminListings(t *testing.T) {
	ctx := context.Background()
	_, s, rec := newTestGame(t, nil)
	elevate(t, s, rec)

	s.SubmitLine(ctx, "show locations")
	if !rec.contains("No adventure selected") {
		t.Errorf("listing without a selection should fail:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "select adventure temple")
	rec.reset()
	s.SubmitLine(ctx, "show locations")
	for _, want := range []string{"temple-entrance", "temple-library", "Temple Entrance"} {
		if !rec.contains(want) {
			t.Errorf("listing missing %q:\n%s", want, rec.dump())
		}
	}

	rec.reset()
	s.SubmitLine(ctx, "ls loc")
	if !rec.contains("temple-entrance") {
		t.Errorf("alias listing missing content:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "show location temple-entrance")
	if !rec.contains(`"id": "temple-entrance"`) {
		t.Errorf("single-entity dump missing the ID:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "show adventures")
	if !rec.contains("temple") {
		t.Errorf("adventure listing missing content:\n%s", rec.dump())
	}
}

func TestEditDirect(t *testing.T) {
	ctx := context.Background()
	g, s, rec := newTestGame(t, nil)
	elevate(t, s, rec)
	s.SubmitLine(ctx, "select adventure temple")
	rec.reset()

	s.SubmitLine(ctx, `edit location temple-entrance name "Grand Gate"`)
	if s.sub != nil {
		t.Fatal("direct edit must not open a form")
	}
	if !rec.contains(`"Temple Entrance" -> "Grand Gate"`) {
		t.Errorf("direct edit should report old and new value:\n%s", rec.dump())
	}
	loc, err := g.storage.LoadLocation(ctx, "temple-entrance")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Name != "Grand Gate" {
		t.Errorf("name not persisted, got %q", loc.Name)
	}

	rec.reset()
	s.SubmitLine(ctx, "edit location temple-entrance bogus value")
	if !rec.contains("No property") {
		t.Errorf("unknown property should be rejected with the valid set:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "edit location temple-entrance name")
	if !rec.contains("Usage:") {
		t.Errorf("property without value should show usage:\n%s", rec.dump())
	}
}

func TestEditDirectRequiredField(t *testing.T) {
	ctx := context.Background()
	g, s, rec := newTestGame(t, nil)
	elevate(t, s, rec)
	s.SubmitLine(ctx, "select adventure temple")
	rec.reset()

	s.SubmitLine(ctx, `edit location temple-entrance name "   "`)
	if !rec.contains("Name is required") {
		t.Errorf("blank value for a required property should be rejected:\n%s", rec.dump())
	}
	loc, err := g.storage.LoadLocation(ctx, "temple-entrance")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Name != "Temple Entrance" {
		t.Errorf("rejected edit should leave the name alone, got %q", loc.Name)
	}
}

func TestEditFormFlow(t *testing.T) {
	ctx := context.Background()
	g, s, rec := newTestGame(t, nil)
	elevate(t, s, rec)
	s.SubmitLine(ctx, "select adventure temple")
	rec.reset()

	s.SubmitLine(ctx, "edit location temple-library")
	if _, ok := s.sub.(*subForm); !ok {
		t.Fatalf("single-argument edit should open a form, got %T", s.sub)
	}

	s.SubmitLine(ctx, "Dusty Library") // name
	s.SubmitLine(ctx, "")              // description kept
	s.SubmitLine(ctx, "END")           // exits kept
	if !rec.contains("Save changes?") {
		t.Fatalf("expected the confirmation summary:\n%s", rec.dump())
	}
	rec.reset()
	s.SubmitLine(ctx, "y")
	if s.sub != nil {
		t.Fatal("form should be finished after confirmation")
	}
	if !rec.contains("name") {
		t.Errorf("save report should name the changed field:\n%s", rec.dump())
	}
	loc, err := g.storage.LoadLocation(ctx, "temple-library")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Name != "Dusty Library" {
		t.Errorf("form edit not persisted, got %q", loc.Name)
	}
	if len(loc.Exits) != 1 || loc.Exits["south"] != "temple-entrance" {
		t.Errorf("kept exits were altered: %v", loc.Exits)
	}
}

func TestEditFormAllKeptSavesNothing(t *testing.T) {
	ctx := context.Background()
	g, s, rec := newTestGame(t, nil)
	elevate(t, s, rec)
	s.SubmitLine(ctx, "select adventure temple")
	rec.reset()

	before, err := g.storage.LoadLocation(ctx, "temple-library")
	if err != nil {
		t.Fatal(err)
	}

	s.SubmitLine(ctx, "edit location temple-library")
	s.SubmitLine(ctx, "")
	s.SubmitLine(ctx, "")
	s.SubmitLine(ctx, "END")
	rec.reset()
	s.SubmitLine(ctx, "y")
	if !rec.contains("No changes.") {
		t.Errorf("all-kept form should report no changes:\n%s", rec.dump())
	}
	after, err := g.storage.LoadLocation(ctx, "temple-library")
	if err != nil {
		t.Fatal(err)
	}
	if before.Name != after.Name || len(before.Exits) != len(after.Exits) {
		t.Error("all-kept form must not mutate the entity")
	}
}

func TestEditFormDiscardOnNo(t *testing.T) {
	ctx := context.Background()
	g, s, rec := newTestGame(t, nil)
	elevate(t, s, rec)
	s.SubmitLine(ctx, "select adventure temple")
	rec.reset()

	s.SubmitLine(ctx, "edit location temple-library")
	s.SubmitLine(ctx, "Forgotten Library")
	s.SubmitLine(ctx, "")
	s.SubmitLine(ctx, "END")
	s.SubmitLine(ctx, "n")
	if s.sub != nil {
		t.Fatal("declined confirmation should end the form")
	}
	loc, err := g.storage.LoadLocation(ctx, "temple-library")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Name == "Forgotten Library" {
		t.Error("declined form must not persist changes")
	}
}

func TestCreateViaForm(t *testing.T) {
	ctx := context.Background()
	g, s, rec := newTestGame(t, nil)
	elevate(t, s, rec)
	s.SubmitLine(ctx, "select adventure temple")
	rec.reset()

	s.SubmitLine(ctx, "create location temple-crypt")
	s.SubmitLine(ctx, "Crypt")
	s.SubmitLine(ctx, "Cold and dark.")
	s.SubmitLine(ctx, "up=temple-library")
	s.SubmitLine(ctx, "END")
	s.SubmitLine(ctx, "y")

	loc, err := g.storage.LoadLocation(ctx, "temple-crypt")
	if err != nil {
		t.Fatalf("created location not stored: %v", err)
	}
	if loc.Adventure != "temple" || loc.Exits["up"] != "temple-library" {
		t.Errorf("created location wrong: %+v", loc)
	}

	rec.reset()
	s.SubmitLine(ctx, "create location temple-crypt")
	if !rec.contains("already exists") {
		t.Errorf("duplicate create should be rejected:\n%s", rec.dump())
	}
}

func TestDeleteConfirmation(t *testing.T) {
	ctx := context.Background()
	g, s, rec := newTestGame(t, nil)
	elevate(t, s, rec)
	s.SubmitLine(ctx, "select adventure temple")
	rec.reset()

	s.SubmitLine(ctx, "delete item lantern")
	if _, ok := s.sub.(*subConfirm); !ok {
		t.Fatalf("delete should ask for confirmation, got %T", s.sub)
	}
	s.SubmitLine(ctx, "n")
	if _, err := g.storage.LoadItem(ctx, "lantern"); err != nil {
		t.Fatalf("declined delete removed the item: %v", err)
	}

	rec.reset()
	s.SubmitLine(ctx, "delete item lantern")
	s.SubmitLine(ctx, "y")
	if _, err := g.storage.LoadItem(ctx, "lantern"); quill.Kind(err) != quill.ErrNotFound {
		t.Fatalf("confirmed delete should remove the item, got %v", err)
	}
}

func TestConfirmReasksOnUnrecognizedAnswer(t *testing.T) {
	ctx := context.Background()
	g, s, rec := newTestGame(t, nil)
	elevate(t, s, rec)
	s.SubmitLine(ctx, "select adventure temple")
	rec.reset()

	s.SubmitLine(ctx, "delete item lantern")
	s.SubmitLine(ctx, "maybe")
	if _, ok := s.sub.(*subConfirm); !ok {
		t.Fatalf("unrecognized answer should keep the confirmation open, got %T", s.sub)
	}
	if !rec.contains("Answer y or n.") || !rec.contains("Delete item") {
		t.Errorf("unrecognized answer should re-ask the question:\n%s", rec.dump())
	}

	s.SubmitLine(ctx, "n")
	if s.sub != nil {
		t.Fatalf("answering n should close the confirmation, got %T", s.sub)
	}
	if _, err := g.storage.LoadItem(ctx, "lantern"); err != nil {
		t.Fatalf("declined delete removed the item: %v", err)
	}
}

func TestHistoryRecall(t *testing.T) {
	ctx := context.Background()
	_, s, rec := newTestGame(t, nil)

	s.SubmitLine(ctx, "look")
	s.SubmitLine(ctx, "inventory")
	s.SubmitLine(ctx, "frobnicate") // fails, not recorded

	if line, ok := s.History(Up); !ok || line != "inventory" {
		t.Errorf("Up = %q, %v; want inventory", line, ok)
	}
	if line, ok := s.History(Up); !ok || line != "look" {
		t.Errorf("Up = %q, %v; want look", line, ok)
	}
	if line, ok := s.History(Up); !ok || line != "look" {
		t.Errorf("Up past the oldest should pin, got %q, %v", line, ok)
	}
	if line, ok := s.History(Down); !ok || line != "inventory" {
		t.Errorf("Down = %q, %v; want inventory", line, ok)
	}
	if _, ok := s.History(Down); ok {
		t.Error("Down past the newest should signal a clear")
	}

	rec.reset()
	s.SubmitLine(ctx, "history")
	if !rec.contains("look") || !rec.contains("inventory") {
		t.Errorf("history listing incomplete:\n%s", rec.dump())
	}
	if rec.contains("frobnicate") {
		t.Errorf("failed commands must not be recorded:\n%s", rec.dump())
	}
}

func TestHistoryDisabledInSubSessions(t *testing.T) {
	ctx := context.Background()
	_, s, _ := newTestGame(t, nil)

	s.SubmitLine(ctx, "look")
	s.SubmitLine(ctx, "admin")
	if _, ok := s.History(Up); ok {
		t.Error("history recall must be disabled during a sub-session")
	}
}

func TestInterrupt(t *testing.T) {
	ctx := context.Background()
	g, s, rec := newTestGame(t, nil)
	elevate(t, s, rec)
	s.SubmitLine(ctx, "select adventure temple")

	s.SubmitLine(ctx, "edit location temple-library")
	s.SubmitLine(ctx, "Changed Name")
	s.Interrupt()
	if s.sub != nil {
		t.Fatal("interrupt should abort the form")
	}
	s.Interrupt() // idempotent

	loc, err := g.storage.LoadLocation(ctx, "temple-library")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Name == "Changed Name" {
		t.Error("interrupted form must not persist")
	}
}

func TestPanicRecovery(t *testing.T) {
	ctx := context.Background()
	g, s, rec := newTestGame(t, nil)
	g.registry.MustRegister(&command.Descriptor[*Call]{
		Name: "detonate",
		Mode: command.Player,
		Handler: func(c *Call, inv *command.Invocation[*Call]) error {
			panic("boom")
		},
	})

	s.SubmitLine(ctx, "detonate")
	if !rec.contains("Something went wrong") {
		t.Errorf("panic should surface as an internal error:\n%s", rec.dump())
	}
	if s.sub != nil {
		t.Error("panic recovery should return the session to idle")
	}

	rec.reset()
	s.SubmitLine(ctx, "look")
	if !rec.contains("Temple Entrance") {
		t.Errorf("session should keep working after a panic:\n%s", rec.dump())
	}
}

func TestTabCompleteCommands(t *testing.T) {
	ctx := context.Background()
	_, s, _ := newTestGame(t, nil)

	line, result := s.TabComplete(ctx, "lo", 2)
	if result.Applied != "look" || line != "look " {
		t.Errorf("lo should complete to look, got line=%q result=%+v", line, result)
	}

	_, result = s.TabComplete(ctx, "ta", 2)
	if result.Applied != "" || len(result.Candidates) < 2 {
		t.Errorf("ta is ambiguous (take, talk), got %+v", result)
	}

	line, result = s.TabComplete(ctx, "zz", 2)
	if !result.Empty() || line != "zz" {
		t.Errorf("no match should leave the line alone, got line=%q result=%+v", line, result)
	}

	// Mid-line completion is unsupported.
	_, result = s.TabComplete(ctx, "look", 2)
	if !result.Empty() {
		t.Errorf("mid-line Tab should do nothing, got %+v", result)
	}
}

func TestTabCompleteSlots(t *testing.T) {
	ctx := context.Background()
	_, s, rec := newTestGame(t, nil)
	elevate(t, s, rec)
	s.SubmitLine(ctx, "select adventure temple")

	line, result := s.TabComplete(ctx, "edit location temple-l", 22)
	if result.Applied != "temple-library" {
		t.Fatalf("unique prefix should apply, got %+v", result)
	}
	if line != "edit location temple-library" {
		t.Errorf("line = %q", line)
	}

	_, result = s.TabComplete(ctx, "edit location temple-", 21)
	if len(result.Candidates) != 2 {
		t.Errorf("shared prefix should list both locations, got %+v", result)
	}

	// Display-name word prefix works too.
	_, result = s.TabComplete(ctx, "edit location Lib", 17)
	if result.Applied != "temple-library" {
		t.Errorf("name-word prefix should resolve, got %+v", result)
	}

	// Empty partial lists the whole universe.
	_, result = s.TabComplete(ctx, "edit location ", 14)
	if len(result.Candidates) != 2 {
		t.Errorf("empty partial should list all locations, got %+v", result)
	}
}

func TestTabCompleteDisabledInSubSessions(t *testing.T) {
	ctx := context.Background()
	_, s, _ := newTestGame(t, nil)

	s.SubmitLine(ctx, "admin")
	if _, result := s.TabComplete(ctx, "lo", 2); !result.Empty() {
		t.Errorf("Tab during a sub-session should do nothing, got %+v", result)
	}
}

func TestQuitClosesSession(t *testing.T) {
	ctx := context.Background()
	g, s, _ := newTestGame(t, nil)

	s.SubmitLine(ctx, "quit")
	if !s.Closed() {
		t.Fatal("quit should close the session")
	}
	if _, found := g.sessions.GetHas(s.ID); found {
		t.Error("closed session should be unregistered")
	}
}

func TestHelp(t *testing.T) {
	ctx := context.Background()
	_, s, rec := newTestGame(t, nil)

	s.SubmitLine(ctx, "help")
	for _, want := range []string{"look", "take", "talk", "history"} {
		if !rec.contains(want) {
			t.Errorf("help missing %q:\n%s", want, rec.dump())
		}
	}
	if rec.contains("select adventure") {
		t.Errorf("player help must not list admin commands:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, "help go")
	if !rec.contains("go <direction>") {
		t.Errorf("detailed help missing syntax:\n%s", rec.dump())
	}
}

func TestQuotedArguments(t *testing.T) {
	ctx := context.Background()
	_, s, rec := newTestGame(t, nil)

	s.SubmitLine(ctx, `take "brass lantern"`)
	if !rec.contains("You take the brass lantern") {
		t.Errorf("quoted multi-word reference should resolve:\n%s", rec.dump())
	}

	rec.reset()
	s.SubmitLine(ctx, `take "unbalanced`)
	if !rec.contains("Can't parse input") {
		t.Errorf("unbalanced quote should be an input error:\n%s", rec.dump())
	}
}
