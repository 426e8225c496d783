//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"krishi-mitra/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IConversationRepository interface {
	AppendTurn(identity string, turn domain.Turn) error
	GetHistory(identity string) ([]domain.ChatMessage, error)
}

type ConversationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewConversationRepository(db *badger.DB, log *slog.Logger) ConversationRepository {
	return ConversationRepository{db: db, log: log}
}

// storedMessage is the persisted record shape: two of these per turn,
// user first, then bot.
type storedMessage struct {
	Role      domain.Role `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// AppendTurn persists one user/bot message pair in BadgerDB.
// Each message gets its own key "chat:{identity}:{timestamp_padded}:{uuid}":
//  1. The 19-digit zero padding makes lexicographical order chronological.
//  2. A fresh key per message means appends never rewrite the log, so
//     concurrent turns for the same identity cannot lose each other's
//     messages; the UUID suffix disconnects same-nanosecond collisions
//     between turns.
//
// Both entries are written in one transaction: either the whole turn is
// durable or none of it is.
func (c ConversationRepository) AppendTurn(identity string, turn domain.Turn) error {
	userAt := time.Now().UTC()
	botAt := time.Now().UTC()
	// The bot entry must sort after the user entry even when the clock
	// reads the same nanosecond twice.
	if !botAt.After(userAt) {
		botAt = userAt.Add(time.Nanosecond)
	}

	userKey := messageKey(identity, userAt)
	botKey := messageKey(identity, botAt)

	userBytes, err := json.Marshal(storedMessage{Role: domain.RoleUser, Content: turn.UserText, Timestamp: userAt})
	if err != nil {
		return err
	}
	botBytes, err := json.Marshal(storedMessage{Role: domain.RoleBot, Content: turn.BotText, Timestamp: botAt})
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(userKey, userBytes); err != nil {
			return err
		}
		return txn.Set(botKey, botBytes)
	})
}

// GetHistory returns the full ordered log for an identity using a forward
// prefix scan. Thanks to the padded timestamp in the key, messages come back
// naturally sorted by time. An identity with no log yields an empty slice,
// not an error.
func (c ConversationRepository) GetHistory(identity string) ([]domain.ChatMessage, error) {
	var raw [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("chat:%s:", identity))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				copied := make([]byte, len(value))
				copy(copied, value)
				raw = append(raw, copied)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, 0, len(raw))
	for _, b := range raw {
		var stored storedMessage
		if err := json.Unmarshal(b, &stored); err != nil {
			return nil, err
		}
		messages = append(messages, domain.ChatMessage{
			Role:      stored.Role,
			Content:   stored.Content,
			Timestamp: stored.Timestamp,
		})
	}
	return messages, nil
}

func messageKey(identity string, at time.Time) []byte {
	return []byte(fmt.Sprintf("chat:%s:%019d:%s", identity, at.UnixNano(), uuid.New()))
}
