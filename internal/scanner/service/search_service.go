package service

import (
	"context"
	"strings"

	"golang-stock-scanner/internal/scanner/dto"
	"golang-stock-scanner/internal/scanner/repository"
	"golang-stock-scanner/pkg/logger"
)

// SearchService looks up known tickers by symbol or company name.
type SearchService interface {
	Search(ctx context.Context, term string) ([]dto.Suggestion, error)
}

type searchService struct {
	snapshotRepo repository.StockSnapshotRepository
	log          *logger.Logger
	limit        int
}

// NewSearchService creates a SearchService returning at most limit suggestions.
func NewSearchService(snapshotRepo repository.StockSnapshotRepository, log *logger.Logger, limit int) SearchService {
	if limit <= 0 {
		limit = 20
	}
	return &searchService{snapshotRepo: snapshotRepo, log: log, limit: limit}
}

// Search returns an empty list for a blank term.
func (s *searchService) Search(ctx context.Context, term string) ([]dto.Suggestion, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []dto.Suggestion{}, nil
	}

	snapshots, err := s.snapshotRepo.Search(ctx, term, s.limit)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to search stock snapshots", logger.ErrorField(err), logger.StringField("term", term))
		return nil, err
	}

	suggestions := make([]dto.Suggestion, 0, len(snapshots))
	for _, snapshot := range snapshots {
		suggestions = append(suggestions, dto.Suggestion{
			Ticker: snapshot.Ticker,
			Name:   snapshot.CompanyName,
			Score:  snapshot.Score,
		})
	}
	return suggestions, nil
}
