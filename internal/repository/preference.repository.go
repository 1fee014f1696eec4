package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/nimasrn/verse-gateway/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrPreferenceNotFound is returned when no preference exists for a phone number.
	ErrPreferenceNotFound = errors.New("preference not found")
	// ErrDuplicatePhone is returned when a create collides with an existing phone number.
	ErrDuplicatePhone = errors.New("phone number already registered")
	// ErrNothingToUpdate is returned when a partial update carries no fields.
	ErrNothingToUpdate = errors.New("nothing updated")
)

type PreferenceRepository struct {
	*pg.DB
}

func NewPreferenceRepository(db *pg.DB) *PreferenceRepository {
	return &PreferenceRepository{
		db,
	}
}

func (r *PreferenceRepository) Create(ctx context.Context, p *model.Preference) (*model.Preference, error) {
	entity := toPreferenceEntity(p)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePhone
		}
		return nil, err
	}

	return toPreferenceModel(entity), nil
}

func (r *PreferenceRepository) GetByPhone(ctx context.Context, phone string) (*model.Preference, error) {
	var entity PreferenceEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("phone_number = ?", phone).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPreferenceNotFound
		}
		return nil, err
	}
	return toPreferenceModel(&entity), nil
}

func (r *PreferenceRepository) List(ctx context.Context) ([]*model.Preference, error) {
	var entities []*PreferenceEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("phone_number ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toPreferenceModels(entities), nil
}

// Update applies the non-nil fields of req to the row keyed by phone.
// An empty request is reported as ErrNothingToUpdate without touching the
// store; an unknown phone is ErrPreferenceNotFound.
func (r *PreferenceRepository) Update(ctx context.Context, phone string, req model.PreferenceUpdateRequest) (*model.Preference, error) {
	if req.Empty() {
		return nil, ErrNothingToUpdate
	}

	updates := map[string]interface{}{}
	if req.Method != nil {
		updates["preferred_method"] = string(*req.Method)
	}
	if req.DeliveryTime != nil {
		updates["delivery_time"] = *req.DeliveryTime
	}
	if req.Translations != nil {
		updates["translations"] = joinTranslations(req.Translations)
	}
	if req.VerseReference != nil {
		updates["verse_reference"] = *req.VerseReference
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&PreferenceEntity{}).
		Where("phone_number = ?", phone).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrPreferenceNotFound
	}

	return r.GetByPhone(ctx, phone)
}

func (r *PreferenceRepository) Delete(ctx context.Context, phone string) error {
	result := r.Write(ctx).WithContext(ctx).
		Where("phone_number = ?", phone).
		Delete(&PreferenceEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPreferenceNotFound
	}
	return nil
}

// isUniqueViolation matches duplicate-key failures from both the postgres
// and the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
