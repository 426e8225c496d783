package services

import (
	"context"
	"log/slog"
	"time"

	"krishi-mitra/domain"
	"krishi-mitra/errors"
	"krishi-mitra/repositories"
	"krishi-mitra/search"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var listingValidate = validator.New()

type IMarketService interface {
	CreateListing(sellerID string, req CreateListingRequest) (domain.Listing, error)
	Listings() ([]domain.Listing, error)
	AttachImage(listingID uuid.UUID, data []byte) (string, error)
	ListingImage(listingID uuid.UUID) ([]byte, error)
	Search(ctx context.Context, raw string) ([]search.Hit, uint64, error)
}

type CreateListingRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=120"`
	Crop        string  `json:"crop" validate:"required,min=2,max=60"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Quantity    string  `json:"quantity" validate:"max=60"`
	Location    string  `json:"location" validate:"max=120"`
}

type MarketService struct {
	listings repositories.IListingRepository
	index    *search.Index
	log      *slog.Logger
}

func NewMarketService(listings repositories.IListingRepository,
	index *search.Index, log *slog.Logger) *MarketService {
	return &MarketService{listings: listings, index: index, log: log}
}

// CreateListing validates, persists and indexes a new marketplace offer.
// Persistence comes first: a listing that exists but is briefly unsearchable
// beats a search hit pointing at nothing.
func (s *MarketService) CreateListing(sellerID string, req CreateListingRequest) (domain.Listing, error) {
	if err := listingValidate.Struct(req); err != nil {
		return domain.Listing{}, err
	}

	listing := domain.Listing{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       req.Title,
		Crop:        req.Crop,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Location:    req.Location,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.listings.Store(listing); err != nil {
		return domain.Listing{}, err
	}
	if err := s.index.IndexListing(listing); err != nil {
		s.log.Error("Listing stored but not indexed",
			"listing", listing.ID,
			"err", err)
	}
	return listing, nil
}

func (s *MarketService) Listings() ([]domain.Listing, error) {
	return s.listings.List()
}

// AttachImage sniffs the uploaded bytes and stores them when they are an
// actual PNG or JPEG, whatever the client claimed. Returns the detected
// content type.
func (s *MarketService) AttachImage(listingID uuid.UUID, data []byte) (string, error) {
	detected := mimetype.Detect(data)
	if !detected.Is("image/png") && !detected.Is("image/jpeg") {
		s.log.Debug("Rejected listing image",
			"listing", listingID,
			"detected", detected.String())
		return "", errors.ErrUnsupportedImage
	}

	if err := s.listings.StoreImage(listingID, data); err != nil {
		return "", err
	}
	return detected.String(), nil
}

func (s *MarketService) ListingImage(listingID uuid.UUID) ([]byte, error) {
	return s.listings.GetImage(listingID)
}

// Search runs a full-text query over listings and news articles.
func (s *MarketService) Search(ctx context.Context, raw string) ([]search.Hit, uint64, error) {
	return s.index.Search(ctx, search.ParseQuery(raw))
}
