//go:generate go run go.uber.org/mock/mockgen -source=listing.go -destination=../mocks/mock_listing_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"krishi-mitra/domain"
	"krishi-mitra/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IListingRepository interface {
	Store(listing domain.Listing) error
	List() ([]domain.Listing, error)
	GetByID(id uuid.UUID) (domain.Listing, error)
	StoreImage(id uuid.UUID, data []byte) error
	GetImage(id uuid.UUID) ([]byte, error)
}

type ListingRepository struct {
	db           *badger.DB
	log          *slog.Logger
	limitResults *int
}

func NewListingRepository(db *badger.DB, log *slog.Logger, limitResults *int) ListingRepository {
	return ListingRepository{db: db, log: log, limitResults: limitResults}
}

// Store persists a listing under "listing:{timestamp_padded}:{uuid}" plus an
// id index so detail lookups don't need a scan. The padded timestamp keeps
// listings chronologically sorted for the feed.
func (l ListingRepository) Store(listing domain.Listing) error {
	key := fmt.Sprintf("listing:%019d:%s", listing.CreatedAt.UnixNano(), listing.ID)
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return l.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), data); err != nil {
			return err
		}
		return txn.Set([]byte("listingid:"+listing.ID.String()), []byte(key))
	})
}

// List returns listings newest first, capped by the configured limit.
func (l ListingRepository) List() ([]domain.Listing, error) {
	var raw [][]byte
	err := l.db.View(func(txn *badger.Txn) error {
		prefix := []byte("listing:")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Reverse iteration starts past the newest possible key.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if l.limitResults != nil && len(raw) == *l.limitResults {
				l.log.Debug(fmt.Sprintf("Maximum of %d listings reached", *l.limitResults))
				break
			}
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

	listings := make([]domain.Listing, 0, len(raw))
	for _, b := range raw {
		var listing domain.Listing
		if err := json.Unmarshal(b, &listing); err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (l ListingRepository) GetByID(id uuid.UUID) (domain.Listing, error) {
	var listing domain.Listing
	err := l.db.View(func(txn *badger.Txn) error {
		indexItem, err := txn.Get([]byte("listingid:" + id.String()))
		if err != nil {
			return errors.ErrListingNotFound
		}
		var key []byte
		if err := indexItem.Value(func(val []byte) error {
			key = append([]byte{}, val...)
			return nil
		}); err != nil {
			return err
		}

		item, err := txn.Get(key)
		if err != nil {
			return errors.ErrListingNotFound
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &listing)
		})
	})
	if err != nil {
		return domain.Listing{}, err
	}
	return listing, nil
}

func (l ListingRepository) StoreImage(id uuid.UUID, data []byte) error {
	return l.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte("listingid:" + id.String())); err != nil {
			return errors.ErrListingNotFound
		}
		return txn.Set([]byte("listingimg:"+id.String()), data)
	})
}

func (l ListingRepository) GetImage(id uuid.UUID) ([]byte, error) {
	var data []byte
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("listingimg:" + id.String()))
		if err != nil {
			return errors.ErrListingNotFound
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
