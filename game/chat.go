package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/quillmud/quill"
	"github.com/quillmud/quill/structs"
	"github.com/quillmud/quill/termio"
)

// chatExitWords end a conversation, matched case-insensitively after
// trimming.
var chatExitWords = map[string]bool{
	"exit": true,
	"quit": true,
}

type subChat struct {
	npc      *structs.Character
	location *structs.Location
	turns    []structs.ConversationTurn
}

func (c *subChat) prompt() termio.PromptState {
	return termio.PromptState{Prompt: fmt.Sprintf("%s> ", c.npc.ID)}
}

func (s *Session) talk(ctx context.Context, ref string) error {
	if err := s.requireLocation(); err != nil {
		return err
	}
	chars, err := s.charactersHere(ctx)
	if err != nil {
		return err
	}
	npc, err := findEntity(ref, chars, "character")
	if err != nil {
		return err
	}
	if !npc.AIDriven {
		line := "..."
		if len(npc.Dialogue) > 0 {
			line = npc.Dialogue[s.history.Len()%len(npc.Dialogue)]
		}
		s.out.WriteLine(fmt.Sprintf("%s says: %q", npc.Name, line), termio.StyleDefault)
		return nil
	}
	if s.game.chat == nil {
		return quill.Errorf(quill.ErrUnavailable, "%s has nothing to say right now", npc.Name)
	}
	s.sub = &subChat{npc: npc, location: s.location}
	s.history.ResetCursor()
	s.out.WriteLine(fmt.Sprintf("You strike up a conversation with %s. Say \"exit\" to stop.", npc.Name), termio.StyleInfo)
	return nil
}

// chatLine handles one line while a conversation is active. Failures
// are reported and the conversation stays open; the failed message is
// not kept so a retry doesn't double it in the transcript.
func (s *Session) chatLine(ctx context.Context, sub *subChat, line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	if chatExitWords[strings.ToLower(trimmed)] {
		s.sub = nil
		s.history.ResetCursor()
		s.out.WriteLine(fmt.Sprintf("You end the conversation with %s.", sub.npc.Name), termio.StyleInfo)
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()
	reply, err := s.game.chat.GenerateReply(callCtx, sub.npc, trimmed, sub.turns, sub.location)
	if err != nil {
		s.report(err)
		return
	}
	sub.turns = append(sub.turns,
		structs.ConversationTurn{Role: structs.RoleUser, Text: trimmed},
		structs.ConversationTurn{Role: structs.RoleAssistant, Text: reply},
	)
	s.out.WriteLine(fmt.Sprintf("%s says: %q", sub.npc.Name, reply), termio.StyleDefault)
}
