package game

import (
	"context"
	"fmt"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
	"github.com/pkg/errors"
	"github.com/quillmud/quill"
	"github.com/quillmud/quill/ai"
	"github.com/quillmud/quill/auth"
	"github.com/quillmud/quill/command"
	"github.com/quillmud/quill/complete"
	"github.com/quillmud/quill/storage"
	"github.com/quillmud/quill/structs"
)

var (
	candidateTTL = 5 * time.Second

	chatTimeout = 30 * time.Second
)

// Game binds the shared collaborators together and hands out sessions.
// One Game serves every connection of a server process.
type Game struct {
	storage *storage.Storage
	auth    *auth.Authenticator
	chat    ai.Client

	defaultAdventure string

	registry   *command.Registry[*Call]
	candidates cache.Cache[string, []complete.Candidate]
	sessions   *quill.SyncMap[string, *Session]
}

// Call is what command handlers receive. It carries the request context
// alongside the session so handlers never reach for a stored context.
type Call struct {
	Ctx     context.Context
	Session *Session
}

// New creates a Game on top of the given collaborators. chat may be nil,
// in which case conversations with AI driven characters are unavailable.
func New(s *storage.Storage, a *auth.Authenticator, chat ai.Client, defaultAdventure string) *Game {
	g := &Game{
		storage:          s,
		auth:             a,
		chat:             chat,
		defaultAdventure: defaultAdventure,
		candidates:       cache.NewCache[string, []complete.Candidate]().WithTTL(candidateTTL),
		sessions:         quill.NewSyncMap[string, *Session](),
	}
	g.registry = g.buildRegistry()
	return g
}

func (g *Game) buildRegistry() *command.Registry[*Call] {
	r := command.NewRegistry[*Call]()
	g.registerPlayerCommands(r)
	g.registerAdminCommands(r)
	return r
}

// slotCandidates returns the autocomplete universe for a slot, scoped to the
// session's adventure. Results are cached briefly since Tab tends to arrive
// in bursts.
func (g *Game) slotCandidates(ctx context.Context, slot command.Slot, adventure string) []complete.Candidate {
	var kind structs.Kind
	switch slot {
	case command.AdventureSlot:
		kind = structs.KindAdventure
	case command.LocationSlot:
		kind = structs.KindLocation
	case command.ItemSlot:
		kind = structs.KindItem
	case command.CharacterSlot:
		kind = structs.KindCharacter
	default:
		return nil
	}
	if kind == structs.KindAdventure {
		adventure = ""
	} else if adventure == "" {
		return nil
	}
	key := fmt.Sprintf("%s/%s", kind, adventure)
	if cached, found := g.candidates.Get(key); found {
		return cached
	}
	filter := storage.Filter{}
	if kind != structs.KindAdventure {
		filter.Adventure = adventure
	}
	entities, err := g.storage.ListEntities(ctx, kind, filter)
	if err != nil {
		return nil
	}
	result := make([]complete.Candidate, 0, len(entities))
	for _, entity := range entities {
		result = append(result, complete.Candidate{ID: entity.EntityID(), Name: entity.DisplayName()})
	}
	g.candidates.Set(key, result, candidateTTL)
	return result
}

// invalidateCandidates drops cached autocomplete sets after a mutation so
// freshly created entities complete right away.
func (g *Game) invalidateCandidates(kind structs.Kind, adventure string) {
	if kind == structs.KindAdventure {
		adventure = ""
	}
	g.candidates.Invalidate(fmt.Sprintf("%s/%s", kind, adventure))
}

func (g *Game) loadEntity(ctx context.Context, kind structs.Kind, id string) (structs.Entity, error) {
	entity, err := g.storage.LoadEntity(ctx, kind, id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return entity, nil
}
