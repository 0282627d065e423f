package game

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/quillmud/quill"
	"github.com/quillmud/quill/command"
	"github.com/quillmud/quill/complete"
	"github.com/quillmud/quill/form"
	"github.com/quillmud/quill/history"
	"github.com/quillmud/quill/structs"
	"github.com/quillmud/quill/termio"
)

// Direction selects history recall direction.
type Direction int

const (
	Up Direction = iota
	Down
)

// subSession is the active sub-session variant, nil while idle. Each
// variant consumes submitted lines until it resolves.
type subSession interface {
	prompt() termio.PromptState
}

type subPassword struct {
	username string
}

func (subPassword) prompt() termio.PromptState {
	return termio.PromptState{Prompt: "Password: ", Mask: true}
}

type subConfirm struct {
	question string
	onResult func(ctx context.Context, confirmed bool) error
}

func (c *subConfirm) prompt() termio.PromptState {
	return termio.PromptState{Prompt: "[y/n] "}
}

type subForm struct {
	form  *form.Session
	apply func(ctx context.Context, result *form.Result) error
}

func (*subForm) prompt() termio.PromptState {
	return termio.PromptState{Prompt: "> "}
}

// Session is the interactive state machine behind one connection. Lines
// are pushed in with SubmitLine; the caller is expected to feed at most
// one line at a time.
type Session struct {
	ID string

	game *Game
	out  termio.Printer
	user *structs.User

	mode  command.Mode
	token string

	// selected is the admin working adventure; playing and location are
	// the player's position in the world.
	selected  *structs.Adventure
	playing   *structs.Adventure
	location  *structs.Location
	inventory map[string]*structs.Item

	history *history.Ring
	sub     subSession
	closed  bool
}

// NewSession registers a session for the given user. Output produced by
// command handlers is written to out.
func (g *Game) NewSession(user *structs.User, out termio.Printer) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		game:      g,
		out:       out,
		user:      user,
		mode:      command.Player,
		inventory: map[string]*structs.Item{},
		history:   history.New(history.DefaultRetention),
	}
	g.sessions.Set(s.ID, s)
	return s
}

// Start greets the user and drops them into the default adventure when
// one is configured.
func (s *Session) Start(ctx context.Context) {
	s.out.WriteLine(fmt.Sprintf("Welcome, %s.", s.user.Name), termio.StyleInfo)
	if s.game.defaultAdventure == "" {
		s.out.WriteLine("No adventure is loaded. An admin can create one.", termio.StyleDim)
		return
	}
	if err := s.enterAdventure(ctx, s.game.defaultAdventure); err != nil {
		s.report(err)
	}
}

// Close unregisters the session. Idempotent.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.token != "" {
		s.game.auth.Logout(s.token)
		s.token = ""
	}
	s.game.sessions.Del(s.ID)
}

func (s *Session) Closed() bool {
	return s.closed
}

// PromptState tells the shell what prompt to render and whether input
// echo must be suppressed.
func (s *Session) PromptState() termio.PromptState {
	if s.sub != nil {
		return s.sub.prompt()
	}
	if s.mode == command.Admin {
		return termio.PromptState{Prompt: "# "}
	}
	return termio.PromptState{Prompt: "> "}
}

// SubmitLine feeds one completed input line into the session. Panics in
// handlers are contained here so a single bad command never takes the
// connection down.
func (s *Session) SubmitLine(ctx context.Context, line string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("session %s: panic handling input: %v\n%s", s.ID, rec, debug.Stack())
			s.sub = nil
			s.report(quill.Errorf(quill.ErrInternal, "internal error"))
		}
	}()
	switch sub := s.sub.(type) {
	case subPassword:
		s.sub = nil
		s.finishElevation(ctx, sub.username, line)
	case *subConfirm:
		s.history.ResetCursor()
		var confirmed bool
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			confirmed = true
		case "n", "no":
		default:
			s.out.WriteLine("Answer y or n.", termio.StyleError)
			s.out.WriteLine(sub.question, termio.StylePrompt)
			return
		}
		s.sub = nil
		if err := sub.onResult(ctx, confirmed); err != nil {
			s.report(err)
		}
	case *subChat:
		s.chatLine(ctx, sub, line)
	case *subForm:
		result, err := sub.form.Submit(line)
		if err != nil {
			s.report(err)
			return
		}
		if result == nil {
			return
		}
		s.sub = nil
		s.history.ResetCursor()
		if result.Cancelled {
			s.out.WriteLine("Cancelled, nothing changed.", termio.StyleDim)
			return
		}
		if err := sub.apply(ctx, result); err != nil {
			s.report(err)
		}
	default:
		s.dispatch(ctx, line)
	}
}

func (s *Session) dispatch(ctx context.Context, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	inv, err := s.game.registry.Parse(line, s.mode)
	if err != nil {
		s.report(s.upgradeUnknown(line, err))
		return
	}
	if err := inv.Command.Handler(&Call{Ctx: ctx, Session: s}, inv); err != nil {
		s.report(err)
		return
	}
	s.history.Record(line)
}

// upgradeUnknown turns an unknown-command error into an authorization
// error when the same line would resolve in admin mode, so players get
// a hint instead of a dead end.
func (s *Session) upgradeUnknown(line string, err error) error {
	if s.mode != command.Player || quill.Kind(err) != quill.ErrInvalidInput {
		return err
	}
	if _, adminErr := s.game.registry.Parse(line, command.Admin); adminErr == nil {
		return quill.Errorf(quill.ErrUnauthorized, "that command requires admin mode, try \"admin\"")
	}
	return err
}

// Interrupt aborts whatever sub-session is active and returns the
// session to idle. Safe to call while idle.
func (s *Session) Interrupt() {
	switch sub := s.sub.(type) {
	case nil:
		return
	case *subForm:
		sub.form.Cancel()
	}
	s.sub = nil
	s.history.ResetCursor()
	s.out.WriteLine("Cancelled.", termio.StyleDim)
}

// History recalls the previous or next recorded line. The second return
// is false when recall should clear the input instead.
func (s *Session) History(dir Direction) (string, bool) {
	if s.sub != nil {
		return "", false
	}
	if dir == Up {
		return s.history.Up()
	}
	return s.history.Down()
}

// TabComplete resolves completion for the line at the given cursor and
// returns the possibly rewritten line. Completion only engages at the
// end of the line while no sub-session is active.
func (s *Session) TabComplete(ctx context.Context, line string, cursor int) (string, complete.Result) {
	if s.sub != nil || cursor != len(line) {
		return line, complete.Result{}
	}
	partialStart := strings.LastIndexByte(line, ' ') + 1
	partial := line[partialStart:]

	inv, err := s.game.registry.Parse(line, s.mode)
	if err != nil || (len(inv.Args) == 0 && !strings.HasSuffix(line, " ")) {
		// Still typing the command name itself; names may span words.
		names := s.game.registry.Names(s.mode)
		candidates := make([]complete.Candidate, 0, len(names))
		for _, name := range names {
			candidates = append(candidates, complete.Candidate{ID: name})
		}
		result := complete.Resolve(strings.TrimLeft(line, " "), candidates)
		if result.Applied != "" {
			return result.Applied + " ", result
		}
		return line, result
	}

	if inv.Command.Slot == command.NoSlot {
		return line, complete.Result{}
	}
	// The slot is the command's first argument; later arguments are
	// free-form.
	if len(inv.Args) > 1 || (len(inv.Args) == 1 && strings.HasSuffix(line, " ")) {
		return line, complete.Result{}
	}
	if len(inv.Args) == 0 {
		partial = ""
		partialStart = len(line)
	}
	result := complete.Resolve(partial, s.game.slotCandidates(ctx, inv.Command.Slot, s.slotAdventure()))
	if result.Applied != "" {
		return line[:partialStart] + result.Applied, result
	}
	return line, result
}

// slotAdventure is the adventure scoping entity completion: the admin
// selection when elevated, otherwise the adventure being played.
func (s *Session) slotAdventure() string {
	if s.mode == command.Admin {
		if s.selected == nil {
			return ""
		}
		return s.selected.ID
	}
	if s.playing == nil {
		return ""
	}
	return s.playing.ID
}

func (s *Session) confirm(question string, onResult func(ctx context.Context, confirmed bool) error) {
	s.sub = &subConfirm{question: question, onResult: onResult}
	s.history.ResetCursor()
	s.out.WriteLine(question, termio.StylePrompt)
}

func (s *Session) startForm(f *form.Session, apply func(ctx context.Context, result *form.Result) error) {
	s.sub = &subForm{form: f, apply: apply}
	s.history.ResetCursor()
	f.Start()
}

func (s *Session) finishElevation(ctx context.Context, username, secret string) {
	token, user, err := s.game.auth.ValidateCredentials(ctx, username, secret)
	if err != nil {
		s.report(err)
		return
	}
	s.token = token
	s.user = user
	s.mode = command.Admin
	s.out.WriteLine("You are now in admin mode. \"logout\" returns to play.", termio.StyleInfo)
}

// report renders an error for the user, styled by kind. Internal errors
// are logged with their stack and shown without detail.
func (s *Session) report(err error) {
	switch quill.Kind(err) {
	case quill.ErrCancelled:
		s.out.WriteLine("Cancelled.", termio.StyleDim)
	case quill.ErrUnavailable, quill.ErrTimeout:
		s.out.WriteLine(fmt.Sprintf("%s Try again in a moment.", capitalizeMsg(err)), termio.StyleError)
	case quill.ErrInternal:
		log.Printf("session %s: %+v", s.ID, err)
		s.out.WriteLine("Something went wrong on our side.", termio.StyleError)
	default:
		s.out.WriteLine(capitalizeMsg(err), termio.StyleError)
	}
}

func capitalizeMsg(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
