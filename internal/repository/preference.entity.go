package repository

import (
	"strings"
	"time"

	"github.com/nimasrn/verse-gateway/internal/model"
)

type PreferenceEntity struct {
	ID             int64     `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	PhoneNumber    string    `db:"phone_number"     gorm:"column:phone_number;not null;uniqueIndex"`
	Method         string    `db:"preferred_method" gorm:"column:preferred_method;not null"`
	DeliveryTime   string    `db:"delivery_time"    gorm:"column:delivery_time;not null"`
	Translations   string    `db:"translations"     gorm:"column:translations;not null"`
	VerseReference string    `db:"verse_reference"  gorm:"column:verse_reference;not null"`
	CreatedAt      time.Time `db:"created_at"       gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `db:"updated_at"       gorm:"column:updated_at;autoUpdateTime"`
}

func (PreferenceEntity) TableName() string {
	return "preferences"
}

// Translations are stored comma-joined so the column stays a plain text
// field across drivers; order is preserved.
func joinTranslations(ids []string) string {
	return strings.Join(ids, ",")
}

func splitTranslations(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func toPreferenceEntity(p *model.Preference) *PreferenceEntity {
	if p == nil {
		return nil
	}
	return &PreferenceEntity{
		ID:             p.ID,
		PhoneNumber:    p.PhoneNumber,
		Method:         string(p.Method),
		DeliveryTime:   p.DeliveryTime,
		Translations:   joinTranslations(p.Translations),
		VerseReference: p.VerseReference,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toPreferenceModel(e *PreferenceEntity) *model.Preference {
	if e == nil {
		return nil
	}
	return &model.Preference{
		ID:             e.ID,
		PhoneNumber:    e.PhoneNumber,
		Method:         model.DeliveryMethod(e.Method),
		DeliveryTime:   e.DeliveryTime,
		Translations:   splitTranslations(e.Translations),
		VerseReference: e.VerseReference,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func toPreferenceModels(entities []*PreferenceEntity) []*model.Preference {
	if entities == nil {
		return nil
	}
	models := make([]*model.Preference, len(entities))
	for i, e := range entities {
		models[i] = toPreferenceModel(e)
	}
	return models
}
