package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// DeliveryMethod is the channel a user receives their daily verse through.
type DeliveryMethod string

const (
	MethodSMS               DeliveryMethod = "sms"
	MethodWhatsAppText      DeliveryMethod = "whatsapp_text"
	MethodWhatsAppVoiceNote DeliveryMethod = "whatsapp_voice_note"
	MethodCall              DeliveryMethod = "call"
)

func (m DeliveryMethod) Valid() bool {
	switch m {
	case MethodSMS, MethodWhatsAppText, MethodWhatsAppVoiceNote, MethodCall:
		return true
	}
	return false
}

// VerseReferenceRandom asks for the configured default reference instead of
// a literal passage.
const VerseReferenceRandom = "random"

type Preference struct {
	ID             int64          `json:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	PhoneNumber    string         `json:"phone_number"    gorm:"column:phone_number;not null;uniqueIndex"`
	Method         DeliveryMethod `json:"preferred_method" gorm:"column:preferred_method;not null"`
	DeliveryTime   string         `json:"delivery_time"   gorm:"column:delivery_time;not null"` // HH:MM local
	Translations   []string       `json:"translations"    gorm:"-"`
	VerseReference string         `json:"verse_reference" gorm:"column:verse_reference;not null"`
	CreatedAt      time.Time      `json:"created_at"      gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at"      gorm:"column:updated_at;autoUpdateTime"`
}

func (Preference) TableName() string { return "preferences" }

var phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// PreferenceCreateRequest is the input for registering a user.
type PreferenceCreateRequest struct {
	PhoneNumber    string
	Method         DeliveryMethod
	DeliveryTime   string
	Translations   []string
	VerseReference string
}

func (p PreferenceCreateRequest) Validate() error {
	if strings.TrimSpace(p.PhoneNumber) == "" {
		return errors.New("phone_number is required")
	}
	if !phoneRe.MatchString(strings.TrimSpace(p.PhoneNumber)) {
		return errors.New("phone_number must be E.164-like digits")
	}
	if !p.Method.Valid() {
		return errors.New("preferred_method must be one of sms, whatsapp_text, whatsapp_voice_note, call")
	}
	if err := ValidateDeliveryTime(p.DeliveryTime); err != nil {
		return err
	}
	if len(p.Translations) == 0 {
		return errors.New("at least one translation is required")
	}
	if strings.TrimSpace(p.VerseReference) == "" {
		return errors.New("verse_reference is required")
	}
	return nil
}

// PreferenceUpdateRequest carries a partial update; nil fields are untouched.
type PreferenceUpdateRequest struct {
	Method         *DeliveryMethod
	DeliveryTime   *string
	Translations   []string
	VerseReference *string
}

func (p PreferenceUpdateRequest) Empty() bool {
	return p.Method == nil && p.DeliveryTime == nil && p.Translations == nil && p.VerseReference == nil
}

func (p PreferenceUpdateRequest) Validate() error {
	if p.Method != nil && !p.Method.Valid() {
		return errors.New("preferred_method must be one of sms, whatsapp_text, whatsapp_voice_note, call")
	}
	if p.DeliveryTime != nil {
		if err := ValidateDeliveryTime(*p.DeliveryTime); err != nil {
			return err
		}
	}
	if p.Translations != nil && len(p.Translations) == 0 {
		return errors.New("translations cannot be emptied")
	}
	return nil
}

// ValidateDeliveryTime accepts wall-clock "HH:MM".
func ValidateDeliveryTime(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return errors.New("delivery_time must be HH:MM")
	}
	return nil
}
