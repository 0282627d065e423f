// Package ai is the chat collaborator: it turns a character, a player
// message and the running conversation into a reply. Generation
// internals are opaque to the session core; only the error classes
// matter to it.
package ai

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"github.com/quillmud/quill"
	"github.com/quillmud/quill/structs"
)

// Client generates one in-character reply. Implementations classify
// failures as quill.ErrUnavailable, ErrTimeout, ErrNotFound or
// ErrInvalidInput so the chat sub-session can report them distinctly.
type Client interface {
	GenerateReply(ctx context.Context, npc *structs.Character, message string, history []structs.ConversationTurn, location *structs.Location) (string, error)
}

const defaultMaxTokens = 512

// Anthropic implements Client on the Anthropic Messages API.
type Anthropic struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewAnthropic(apiKey string, model string) *Anthropic {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_5)
	}
	return &Anthropic{
		client:    &client,
		model:     anthropic.Model(model),
		maxTokens: defaultMaxTokens,
	}
}

func (a *Anthropic) GenerateReply(ctx context.Context, npc *structs.Character, message string, history []structs.ConversationTurn, location *structs.Location) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, turn := range history {
		if turn.Role == structs.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Text)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Text)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt(npc, location)},
		},
		Messages: messages,
	})
	if err != nil {
		return "", Classify(err)
	}

	reply := &strings.Builder{}
	for _, block := range resp.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
		}
	}
	if reply.Len() == 0 {
		return "", quill.Errorf(quill.ErrUnavailable, "%s has nothing to say right now", npc.Name)
	}
	return reply.String(), nil
}

func systemPrompt(npc *structs.Character, location *structs.Location) string {
	prompt := &strings.Builder{}
	fmt.Fprintf(prompt, "You are %s, a character in a text adventure.\n", npc.Name)
	if npc.Persona != "" {
		fmt.Fprintf(prompt, "Persona: %s\n", npc.Persona)
	}
	if npc.Description != "" {
		fmt.Fprintf(prompt, "Appearance: %s\n", npc.Description)
	}
	if location != nil {
		fmt.Fprintf(prompt, "You are currently in %s. %s\n", location.Name, location.Description)
	}
	prompt.WriteString("Stay in character and answer in at most a few sentences.")
	return prompt.String()
}

// Classify maps transport and API failures onto the session core's
// error kinds.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return quill.Errorf(quill.ErrTimeout, "the reply took too long: %v", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return quill.Errorf(quill.ErrTimeout, "the reply took too long: %v", err)
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 404:
			return quill.Errorf(quill.ErrNotFound, "chat model not found: %v", err)
		case apiErr.StatusCode == 408:
			return quill.Errorf(quill.ErrTimeout, "the reply took too long: %v", err)
		case apiErr.StatusCode == 429:
			return quill.Errorf(quill.ErrUnavailable, "chat service is overloaded: %v", err)
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			return quill.Errorf(quill.ErrInvalidInput, "chat request rejected: %v", err)
		default:
			return quill.Errorf(quill.ErrUnavailable, "chat service unavailable: %v", err)
		}
	}
	return quill.Errorf(quill.ErrUnavailable, "chat service unreachable: %v", err)
}
