package services

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"krishi-mitra/domain"
	"krishi-mitra/errors"
	"krishi-mitra/intent"
	"krishi-mitra/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newChatService(t *testing.T) (*ChatService, repositories.ConversationRepository) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	resolver, err := intent.NewResolver()
	require.NoError(t, err)

	repo := repositories.NewConversationRepository(db, slog.Default())
	return NewChatService(resolver, repo, slog.Default()), repo
}

func TestChatService_GuestGetsReplyWithoutPersistence(t *testing.T) {
	req := require.New(t)
	svc, repo := newChatService(t)

	result, err := svc.HandlePrompt(context.Background(), "hello", "")
	req.NoError(err)
	req.Contains(result.Reply.Text, "Krishi Mitra")
	req.Nil(result.Persisted, "guest turns carry no persistence outcome")

	history, err := repo.GetHistory("")
	req.NoError(err)
	req.Empty(history)
}

func TestChatService_AuthenticatedTurnIsPersisted(t *testing.T) {
	req := require.New(t)
	svc, _ := newChatService(t)
	identity := "farmer-7"

	result, err := svc.HandlePrompt(context.Background(), "What are the msp rates?", identity)
	req.NoError(err)
	req.NotNil(result.Persisted)
	req.True(*result.Persisted)

	history, err := svc.History(identity)
	req.NoError(err)
	req.Len(history, 2)
	req.Equal(domain.RoleUser, history[0].Role)
	req.Equal("What are the msp rates?", history[0].Content)
	req.Equal(domain.RoleBot, history[1].Role)
	req.Equal(result.Reply.Text, history[1].Content)
}

func TestChatService_SequentialTurnsAccumulate(t *testing.T) {
	req := require.New(t)
	svc, _ := newChatService(t)
	identity := "farmer-8"

	const turns = 5
	for i := 0; i < turns; i++ {
		_, err := svc.HandlePrompt(context.Background(), fmt.Sprintf("hello %d", i), identity)
		req.NoError(err)
	}

	history, err := svc.History(identity)
	req.NoError(err)
	req.Len(history, 2*turns)
	for i, msg := range history {
		if i%2 == 0 {
			req.Equal(domain.RoleUser, msg.Role)
		} else {
			req.Equal(domain.RoleBot, msg.Role)
		}
		if i > 0 {
			req.False(msg.Timestamp.Before(history[i-1].Timestamp))
		}
	}
}

func TestChatService_EmptyPromptRejectedBeforeResolution(t *testing.T) {
	req := require.New(t)
	svc, repo := newChatService(t)

	for _, prompt := range []string{"", "   ", "\t\n"} {
		_, err := svc.HandlePrompt(context.Background(), prompt, "farmer-9")
		req.ErrorIs(err, errors.ErrEmptyPrompt)
	}

	history, err := repo.GetHistory("farmer-9")
	req.NoError(err)
	req.Empty(history, "rejected prompts must leave no trace")
}

func TestChatService_HistoryWithoutIdentity(t *testing.T) {
	req := require.New(t)
	svc, _ := newChatService(t)

	_, err := svc.History("")
	req.ErrorIs(err, errors.ErrUnauthorized)
}

// failingConversations simulates a storage outage.
type failingConversations struct{}

func (failingConversations) AppendTurn(string, domain.Turn) error {
	return fmt.Errorf("disk full")
}

func (failingConversations) GetHistory(string) ([]domain.ChatMessage, error) {
	return nil, nil
}

func TestChatService_ReplyStillReturnedWhenPersistenceFails(t *testing.T) {
	req := require.New(t)

	resolver, err := intent.NewResolver()
	req.NoError(err)
	svc := NewChatService(resolver, failingConversations{}, slog.Default())

	result, err := svc.HandlePrompt(context.Background(), "hello", "farmer-10")
	req.NoError(err, "a storage outage must not fail the chat request")
	req.Contains(result.Reply.Text, "Krishi Mitra")
	req.NotNil(result.Persisted)
	req.False(*result.Persisted)
}
