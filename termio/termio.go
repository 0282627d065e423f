// Package termio is the display surface the session core writes to,
// plus small prompt helpers for terminal-backed shells.
package termio

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/quillmud/quill"
	"github.com/quillmud/quill/lang"
	"golang.org/x/term"
)

// Style tags a written line so the shell can render it; the core never
// emits escape codes itself.
type Style string

const (
	StyleDefault Style = ""
	StyleDim     Style = "dim"
	StyleError   Style = "error"
	StyleInfo    Style = "info"
	StylePrompt  Style = "prompt"
)

// Printer is the one-way output surface of the session core.
type Printer interface {
	WriteLine(text string, style Style)
}

// PromptState describes how the next input line should be collected.
type PromptState struct {
	Prompt string
	Mask   bool
}

// TermPrinter writes styled lines to a golang.org/x/term Terminal,
// using the terminal's escape palette where one is available.
type TermPrinter struct {
	Term *term.Terminal
}

func (p *TermPrinter) WriteLine(text string, style Style) {
	esc := p.Term.Escape
	switch style {
	case StyleError:
		fmt.Fprintf(p.Term, "%s%s%s\n", esc.Red, text, esc.Reset)
	case StyleInfo:
		fmt.Fprintf(p.Term, "%s%s%s\n", esc.Cyan, text, esc.Reset)
	case StyleDim, StylePrompt:
		fmt.Fprintf(p.Term, "%s%s%s\n", esc.Yellow, text, esc.Reset)
	default:
		fmt.Fprintln(p.Term, text)
	}
}

// LinePrinter writes plain lines to any writer. Used by tests and
// non-terminal shells.
type LinePrinter struct {
	W io.Writer
}

func (p *LinePrinter) WriteLine(text string, style Style) {
	fmt.Fprintln(p.W, text)
}

// Select keeps prompting until the line matches one of the options,
// case-insensitively, and returns the matched option.
func Select(t *term.Terminal, prompt string, options []string) (string, error) {
	for {
		fmt.Fprintf(t, "%s [%s]\n", prompt, strings.Join(options, "/"))
		line, err := t.ReadLine()
		if err != nil {
			return "", quill.WithStack(err)
		}
		for _, option := range options {
			if strings.EqualFold(line, option) {
				return option, nil
			}
		}
	}
}

// SelectExec prompts with the sorted option names and runs the chosen
// function.
func SelectExec(t *term.Terminal, options map[string]func() error) error {
	names := make(sort.StringSlice, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Sort(names)
	prompt := fmt.Sprintf("%s\n", lang.Enumerator{Pattern: "[%s]", Operator: "or"}.Do(names...))
	for {
		fmt.Fprint(t, prompt)
		line, err := t.ReadLine()
		if err != nil {
			return quill.WithStack(err)
		}
		if f, found := options[line]; found {
			return quill.WithStack(f())
		}
	}
}
