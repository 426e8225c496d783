package repositories

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"krishi-mitra/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestConversationRepository_AppendAndGetHistory(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(openTestDB(t), slog.Default())
	identity := "farmer-1"

	turns := []domain.Turn{
		{UserText: "hello", BotText: "Hello! I am Krishi Mitra's assistant."},
		{UserText: "What are the msp rates?", BotText: "You can find the latest MSP rates on our 'MSP' page."},
		{UserText: "I want to sell rice", BotText: "Our 'Marketplace' is the perfect place to buy or sell."},
	}
	for _, turn := range turns {
		req.NoError(repo.AppendTurn(identity, turn))
	}

	history, err := repo.GetHistory(identity)
	req.NoError(err)
	req.Len(history, 2*len(turns))

	for i, turn := range turns {
		user := history[2*i]
		bot := history[2*i+1]
		req.Equal(domain.RoleUser, user.Role)
		req.Equal(turn.UserText, user.Content)
		req.Equal(domain.RoleBot, bot.Role)
		req.Equal(turn.BotText, bot.Content)
		req.False(bot.Timestamp.Before(user.Timestamp), "bot entry must not predate the user entry")
	}

	// Timestamps are non-decreasing over the whole log.
	for i := 1; i < len(history); i++ {
		req.False(history[i].Timestamp.Before(history[i-1].Timestamp))
	}
}

func TestConversationRepository_EmptyHistoryIsNotAnError(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(openTestDB(t), slog.Default())

	history, err := repo.GetHistory("never-chatted")
	req.NoError(err)
	req.Empty(history)
}

func TestConversationRepository_IdentitiesAreIsolated(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(openTestDB(t), slog.Default())

	req.NoError(repo.AppendTurn("farmer-a", domain.Turn{UserText: "hi", BotText: "hello"}))
	req.NoError(repo.AppendTurn("farmer-b", domain.Turn{UserText: "menu", BotText: "here you go"}))

	historyA, err := repo.GetHistory("farmer-a")
	req.NoError(err)
	req.Len(historyA, 2)
	req.Equal("hi", historyA[0].Content)

	historyB, err := repo.GetHistory("farmer-b")
	req.NoError(err)
	req.Len(historyB, 2)
	req.Equal("menu", historyB[0].Content)
}

func TestConversationRepository_ConcurrentTurnsLoseNothing(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(openTestDB(t), slog.Default())
	identity := "busy-farmer"

	const concurrentTurns = 32
	var wg sync.WaitGroup
	errs := make(chan error, concurrentTurns)
	for i := 0; i < concurrentTurns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.AppendTurn(identity, domain.Turn{
				UserText: fmt.Sprintf("prompt %d", i),
				BotText:  fmt.Sprintf("reply %d", i),
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	history, err := repo.GetHistory(identity)
	req.NoError(err)
	req.Len(history, 2*concurrentTurns, "every concurrent turn must survive")

	users, bots := 0, 0
	for _, msg := range history {
		switch msg.Role {
		case domain.RoleUser:
			users++
		case domain.RoleBot:
			bots++
		}
	}
	req.Equal(concurrentTurns, users)
	req.Equal(concurrentTurns, bots)
}
