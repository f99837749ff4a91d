package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// ValidationError reports a rejected create request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func requiredField(field string) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf("Field '%s' is required", field)}
}

// Cache stores the rendered active listing. A miss returns (false, nil).
type Cache interface {
	Load(ctx context.Context, dst any) (bool, error)
	Store(ctx context.Context, v any) error
	Invalidate(ctx context.Context) error
}

type nopCache struct{}

func (nopCache) Load(context.Context, any) (bool, error) { return false, nil }
func (nopCache) Store(context.Context, any) error        { return nil }
func (nopCache) Invalidate(context.Context) error        { return nil }

type Service struct {
	repo   Repository
	cache  Cache
	logger *zap.Logger
}

// NewService wires the catalog. cache may be nil.
func NewService(repo Repository, cache Cache, logger *zap.Logger) *Service {
	if cache == nil {
		cache = nopCache{}
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// List returns active packages, popular ones first. Cache failures fall
// through to the database.
func (s *Service) List(ctx context.Context) ([]Package, error) {
	var cached []Package
	hit, err := s.cache.Load(ctx, &cached)
	if err != nil {
		s.logger.Warn("catalog cache read failed", zap.Error(err))
	}
	if hit && err == nil {
		return cached, nil
	}

	pkgs, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	if err := s.cache.Store(ctx, pkgs); err != nil {
		s.logger.Warn("catalog cache write failed", zap.Error(err))
	}

	return pkgs, nil
}

// Create validates in, applies defaults and stores the new active package.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Package, error) {
	p, err := buildPackage(in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err), zap.Int64("service_id", created.ID))
	}

	s.logger.Info("service created", zap.Int64("service_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func buildPackage(in CreateInput) (Package, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Package{}, requiredField("name")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return Package{}, requiredField("description")
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price <= 0 {
		return Package{}, requiredField("price")
	}
	if in.Price > MaxPrice {
		return Package{}, &ValidationError{Field: "price", Message: fmt.Sprintf("Field 'price' must not exceed %.2f", MaxPrice)}
	}

	p := Package{
		Name:        name,
		Description: description,
		Price:       in.Price,
		Currency:    DefaultCurrency,
		Duration:    DefaultDuration,
		Features:    []string{},
		Icon:        DefaultIcon,
		Status:      StatusActive,
	}

	if in.Currency != nil && strings.TrimSpace(*in.Currency) != "" {
		p.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.Duration != nil {
		if *in.Duration <= 0 {
			return Package{}, &ValidationError{Field: "duration", Message: "Field 'duration' must be a positive number of minutes"}
		}
		p.Duration = *in.Duration
	}
	if in.Icon != nil && strings.TrimSpace(*in.Icon) != "" {
		p.Icon = strings.TrimSpace(*in.Icon)
	}
	if in.Popular != nil {
		p.Popular = *in.Popular
	}
	for _, f := range in.Features {
		if f = strings.TrimSpace(f); f != "" {
			p.Features = append(p.Features, f)
		}
	}

	return p, nil
}
