// Package server exposes the game over SSH: one terminal shell per
// connection, feeding lines into a game session.
package server

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/gliderlabs/ssh"
	"github.com/pkg/errors"
	"github.com/quillmud/quill"
	"github.com/quillmud/quill/auth"
	"github.com/quillmud/quill/game"
	"github.com/quillmud/quill/structs"
	"github.com/quillmud/quill/termio"
	"golang.org/x/term"
)

var errAborted = quill.Errorf(quill.ErrCancelled, "operation aborted")

// Control characters the shell maps to session operations.
const (
	keyTab    = '\t'
	keyCtrlN  = 0x0e
	keyCtrlP  = 0x10
	abortWord = "abort"
)

type Server struct {
	game *game.Game
	auth *auth.Authenticator
}

func New(g *game.Game, a *auth.Authenticator) *Server {
	return &Server{game: g, auth: a}
}

// ListenAndServe accepts SSH connections on addr using the given host
// key PEM. It blocks until the listener fails.
func (s *Server) ListenAndServe(addr string, hostKeyPEM []byte) error {
	return errors.WithStack(ssh.ListenAndServe(addr, s.HandleSession, ssh.HostKeyPEM(hostKeyPEM)))
}

// HandleSession runs one SSH session to completion.
func (s *Server) HandleSession(sess ssh.Session) {
	t := term.NewTerminal(sess, "> ")
	conn := &conn{
		server: s,
		term:   t,
		out:    &termio.TermPrinter{Term: t},
	}
	if err := conn.run(sess.Context()); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintln(t, "Internal server error.")
		log.Printf("session from %s: %+v", sess.RemoteAddr(), err)
	}
}

// conn is the per-connection shell state. Lines are read and submitted
// one at a time, so a session never has more than one command in
// flight.
type conn struct {
	server  *Server
	term    *term.Terminal
	out     termio.Printer
	session *game.Session
}

func (c *conn) run(ctx context.Context) error {
	fmt.Fprint(c.term, "Welcome!\n\n")
	user, err := c.authenticate(ctx)
	if err != nil {
		return err
	}

	c.session = c.server.game.NewSession(user, c.out)
	defer c.session.Close()
	c.term.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
		return c.keyPressed(ctx, line, pos, key)
	}
	defer func() { c.term.AutoCompleteCallback = nil }()

	c.session.Start(ctx)
	for !c.session.Closed() {
		state := c.session.PromptState()
		var line string
		var err error
		if state.Mask {
			line, err = c.term.ReadPassword(state.Prompt)
		} else {
			c.term.SetPrompt(string(c.term.Escape.Green) + state.Prompt + string(c.term.Escape.Reset))
			line, err = c.term.ReadLine()
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.WithStack(err)
		}
		c.session.SubmitLine(ctx, line)
	}
	return nil
}

// keyPressed is the terminal's per-keypress hook: Tab triggers
// completion, Ctrl-P and Ctrl-N recall history.
func (c *conn) keyPressed(ctx context.Context, line string, pos int, key rune) (string, int, bool) {
	switch key {
	case keyTab:
		newLine, result := c.session.TabComplete(ctx, line, pos)
		if len(result.Candidates) > 0 {
			fmt.Fprintln(c.term)
			for _, candidate := range result.Candidates {
				if candidate.Name != "" && candidate.Name != candidate.ID {
					fmt.Fprintf(c.term, "  %s (%s)\n", candidate.ID, candidate.Name)
				} else {
					fmt.Fprintf(c.term, "  %s\n", candidate.ID)
				}
			}
			return line, pos, true
		}
		if newLine != line {
			return newLine, len(newLine), true
		}
		return line, pos, false
	case keyCtrlP:
		if recalled, ok := c.session.History(game.Up); ok {
			return recalled, len(recalled), true
		}
		return line, pos, false
	case keyCtrlN:
		recalled, ok := c.session.History(game.Down)
		if !ok {
			return "", 0, true
		}
		return recalled, len(recalled), true
	}
	return "", 0, false
}

// authenticate walks the login-or-create menu until a user is
// established. Aborting an option returns to the menu.
func (c *conn) authenticate(ctx context.Context) (*structs.User, error) {
	var user *structs.User
	sel := func() error {
		return termio.SelectExec(c.term, map[string]func() error{
			"login user": func() error {
				u, err := c.loginUser(ctx)
				if err != nil {
					return err
				}
				user = u
				return nil
			},
			"create user": func() error {
				u, err := c.createUser(ctx)
				if err != nil {
					return err
				}
				user = u
				return nil
			},
		})
	}
	var err error
	for err = sel(); errors.Is(err, quill.ErrCancelled); err = sel() {
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (c *conn) loginUser(ctx context.Context) (*structs.User, error) {
	fmt.Fprint(c.term, "** Login user **\n\n")
	for {
		fmt.Fprintf(c.term, "Enter username or [%s]:\n", abortWord)
		username, err := c.term.ReadLine()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if username == abortWord {
			return nil, errors.WithStack(errAborted)
		}
		fmt.Fprint(c.term, "Enter password:\n")
		password, err := c.term.ReadPassword("> ")
		if err != nil {
			return nil, errors.WithStack(err)
		}
		user, err := c.server.auth.LoginUser(ctx, username, password)
		if err == nil {
			return user, nil
		}
		if quill.Kind(err) != quill.ErrUnauthorized {
			return nil, err
		}
		fmt.Fprintf(c.term, "%v!\n", err)
	}
}

func (c *conn) createUser(ctx context.Context) (*structs.User, error) {
	fmt.Fprint(c.term, "** Create user **\n\n")
	for {
		fmt.Fprintf(c.term, "Enter new username or [%s]:\n", abortWord)
		username, err := c.term.ReadLine()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if username == abortWord {
			return nil, errors.WithStack(errAborted)
		}
		fmt.Fprint(c.term, "Enter new password:\n")
		password, err := c.term.ReadPassword("> ")
		if err != nil {
			return nil, errors.WithStack(err)
		}
		fmt.Fprint(c.term, "Repeat new password:\n")
		verification, err := c.term.ReadPassword("> ")
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if password != verification {
			fmt.Fprint(c.term, "Passwords don't match!\n")
			continue
		}
		selection, err := termio.Select(c.term, fmt.Sprintf("Create user %q with the provided password?", username), []string{"y", "n", abortWord})
		if err != nil {
			return nil, err
		}
		switch selection {
		case abortWord:
			return nil, errors.WithStack(errAborted)
		case "n":
			continue
		}
		user, err := c.server.auth.RegisterUser(ctx, username, password, false)
		if err == nil {
			return user, nil
		}
		if quill.Kind(err) != quill.ErrInvalidInput {
			return nil, err
		}
		fmt.Fprintf(c.term, "%v!\n", err)
	}
}
