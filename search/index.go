package search

import (
	"context"
	"log/slog"
	"strings"

	"krishi-mitra/domain"

	"github.com/blugelabs/bluge"
)

// Index wraps a bluge writer with the portal's document conventions.
// Listings and articles share one index, distinguished by a "kind" field.
type Index struct {
	writer   *bluge.Writer
	log      *slog.Logger
	pageSize int
}

func NewIndex(writer *bluge.Writer, log *slog.Logger, pageSize int) *Index {
	return &Index{writer: writer, log: log, pageSize: pageSize}
}

// Hit is one search result row.
type Hit struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

// IndexListing makes a marketplace listing searchable by title, description
// and crop. Re-indexing the same listing updates the existing document.
func (i *Index) IndexListing(listing domain.Listing) error {
	doc := bluge.NewDocument("listing:" + listing.ID.String()).
		AddField(bluge.NewTextField("title", listing.Title).StoreValue()).
		AddField(bluge.NewTextField("body", listing.Description)).
		AddField(bluge.NewTextField("crop", strings.ToLower(listing.Crop))).
		AddField(bluge.NewKeywordField("kind", "listing").StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// IndexArticle makes a news article searchable by title and summary.
func (i *Index) IndexArticle(article domain.Article) error {
	doc := bluge.NewDocument("news:" + article.Title).
		AddField(bluge.NewTextField("title", article.Title).StoreValue()).
		AddField(bluge.NewTextField("body", article.Summary)).
		AddField(bluge.NewKeywordField("kind", "news").StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// Search runs a parsed query and returns one page of hits plus the total
// match count.
func (i *Index) Search(ctx context.Context, query *Query) ([]Hit, uint64, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = reader.Close() }()

	boolean := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(query.Terms).SetField("title")).
		AddShould(bluge.NewMatchQuery(query.Terms).SetField("body")).
		AddShould(bluge.NewMatchQuery(query.Terms).SetField("crop"))
	if query.Crop != "" {
		boolean.AddMust(bluge.NewTermQuery(query.Crop).SetField("crop"))
	}

	request := bluge.NewTopNSearch(i.pageSize, boolean).
		SetFrom(query.Page * i.pageSize).
		WithStandardAggregations()

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	var hits []Hit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, 0, err
		}
		if match == nil {
			break
		}

		var hit Hit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.ID = string(value)
			case "title":
				hit.Title = string(value)
			case "kind":
				hit.Kind = string(value)
			}
			return true
		})
		if err != nil {
			return nil, 0, err
		}
		hits = append(hits, hit)
	}

	return hits, iterator.Aggregations().Count(), nil
}
