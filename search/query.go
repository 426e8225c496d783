// Package search maintains the portal's full-text index over marketplace
// listings and news articles.
package search

import (
	"strconv"
	"strings"
)

// Query represents the structured parameters of a portal search.
// It decouples the raw input from the index engine requirements.
type Query struct {
	RawInput string // The original search input
	Terms    string // The text to match in the index
	Crop     string // Optional crop filter
	Page     int    // Pagination: zero-based page number
}

// ParseQuery extracts command-line style arguments from a raw search string.
// Example: wheat seeds --crop wheat --page 2
func ParseQuery(input string) *Query {
	query := &Query{RawInput: input}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "crop":
				query.Crop = strings.ToLower(val)
			case "page":
				if page, err := strconv.Atoi(val); err == nil && page > 0 {
					query.Page = page
				}
			}
			i++ // Skip the value part in next iteration
			continue
		}

		textTerms = append(textTerms, part)
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
