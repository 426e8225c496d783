package services

import (
	"context"
	"log/slog"
	"strings"

	"krishi-mitra/domain"
	"krishi-mitra/errors"
	"krishi-mitra/intent"
	"krishi-mitra/repositories"

	"github.com/abadojack/whatlanggo"
)

type IChatService interface {
	HandlePrompt(ctx context.Context, prompt, identity string) (PromptResult, error)
	History(identity string) ([]domain.ChatMessage, error)
}

// PromptResult carries the reply plus, for authenticated callers, whether the
// turn made it to storage. Persisted is nil for guests: nothing was meant to
// be stored.
type PromptResult struct {
	Reply     domain.Reply
	Persisted *bool
}

type ChatService struct {
	resolver      *intent.Resolver
	conversations repositories.IConversationRepository
	log           *slog.Logger
}

func NewChatService(resolver *intent.Resolver,
	conversations repositories.IConversationRepository, log *slog.Logger) *ChatService {
	return &ChatService{resolver: resolver, conversations: conversations, log: log}
}

// HandlePrompt resolves a prompt and, for authenticated callers, appends the
// turn to their conversation log. An empty identity means "guest": the reply
// is computed statelessly and nothing is persisted.
//
// A persistence failure does not withhold the reply — the resolver already
// produced a valid answer — but it is surfaced through Persisted=false and
// logged so the missing turn is known.
func (s *ChatService) HandlePrompt(ctx context.Context, prompt, identity string) (PromptResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return PromptResult{}, errors.ErrEmptyPrompt
	}

	info := whatlanggo.Detect(prompt)
	reply := s.resolver.Resolve(prompt)
	s.log.Debug("Prompt resolved",
		"lang", info.Lang.Iso6391(),
		"guest", identity == "")

	if identity == "" {
		return PromptResult{Reply: reply}, nil
	}

	persisted := true
	if err := s.conversations.AppendTurn(identity, domain.Turn{UserText: prompt, BotText: reply.Text}); err != nil {
		persisted = false
		s.log.Error("Turn not persisted",
			"identity", identity,
			"err", err)
	}
	return PromptResult{Reply: reply, Persisted: &persisted}, nil
}

// History returns the caller's full ordered conversation log. The identity
// must already be verified by the auth boundary.
func (s *ChatService) History(identity string) ([]domain.ChatMessage, error) {
	if identity == "" {
		return nil, errors.ErrUnauthorized
	}
	return s.conversations.GetHistory(identity)
}
