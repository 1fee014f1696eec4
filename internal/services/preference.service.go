package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/nimasrn/verse-gateway/internal/bible"
	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/nimasrn/verse-gateway/internal/repository"
)

var (
	ErrUnknownTranslation = fmt.Errorf("unknown translation")
)

type PreferenceRepository interface {
	Create(ctx context.Context, p *model.Preference) (*model.Preference, error)
	GetByPhone(ctx context.Context, phone string) (*model.Preference, error)
	List(ctx context.Context) ([]*model.Preference, error)
	Update(ctx context.Context, phone string, req model.PreferenceUpdateRequest) (*model.Preference, error)
	Delete(ctx context.Context, phone string) error
}

// PreferenceService validates and normalizes subscriber settings before they
// reach the store. Phone numbers are trimmed and translation codes
// lowercased so lookups and dedup keys stay consistent.
type PreferenceService struct {
	repo PreferenceRepository
}

func NewPreferenceService(repo PreferenceRepository) *PreferenceService {
	return &PreferenceService{repo: repo}
}

func (s *PreferenceService) Create(ctx context.Context, req model.PreferenceCreateRequest) (*model.Preference, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	translations, err := normalizeTranslations(req.Translations)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &model.Preference{
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		Method:         req.Method,
		DeliveryTime:   req.DeliveryTime,
		Translations:   translations,
		VerseReference: strings.TrimSpace(req.VerseReference),
	})
}

func (s *PreferenceService) Get(ctx context.Context, phone string) (*model.Preference, error) {
	return s.repo.GetByPhone(ctx, strings.TrimSpace(phone))
}

func (s *PreferenceService) List(ctx context.Context) ([]*model.Preference, error) {
	return s.repo.List(ctx)
}

func (s *PreferenceService) Update(ctx context.Context, phone string, req model.PreferenceUpdateRequest) (*model.Preference, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Translations != nil {
		translations, err := normalizeTranslations(req.Translations)
		if err != nil {
			return nil, err
		}
		req.Translations = translations
	}
	if req.VerseReference != nil {
		trimmed := strings.TrimSpace(*req.VerseReference)
		req.VerseReference = &trimmed
	}

	return s.repo.Update(ctx, strings.TrimSpace(phone), req)
}

func (s *PreferenceService) Delete(ctx context.Context, phone string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(phone))
}

func normalizeTranslations(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if !bible.KnownTranslation(code) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTranslation, code)
		}
		out = append(out, code)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one translation is required")
	}
	return out, nil
}

// reexported so handlers can branch on store errors without importing the
// repository package directly.
var (
	ErrPreferenceNotFound = repository.ErrPreferenceNotFound
	ErrDuplicatePhone     = repository.ErrDuplicatePhone
	ErrNothingToUpdate    = repository.ErrNothingToUpdate
)
