package service

import (
	"context"

	"github.com/Marga-Ghale/backpackers-backend/internal/search"
)

// CatalogSource hands out the current catalog snapshot.
type CatalogSource interface {
	Snapshot() search.Catalog
}

type SearchService interface {
	Search(ctx context.Context, query, location string) search.Results
}

type searchService struct {
	catalog CatalogSource
}

func NewSearchService(catalog CatalogSource) SearchService {
	return &searchService{catalog: catalog}
}

func (s *searchService) Search(ctx context.Context, query, location string) search.Results {
	var snapshot search.Catalog
	if s.catalog != nil {
		snapshot = s.catalog.Snapshot()
	}
	return search.Search(snapshot, query, location)
}
