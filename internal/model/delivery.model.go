package model

import "time"

// DeliveryStatus is the terminal state of one delivery attempt.
type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
	// DeliveryStatusIncomplete marks media deliveries whose artifact was
	// generated but could not be handed to the messaging provider, e.g.
	// when no public URL is configured for published artifacts.
	DeliveryStatusIncomplete DeliveryStatus = "incomplete"
)

// Delivery is the audit row written after every delivery attempt.
type Delivery struct {
	ID          int64          `json:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	PhoneNumber string         `json:"phone_number" gorm:"column:phone_number;not null;index"`
	Method      DeliveryMethod `json:"method"       gorm:"column:method;not null"`
	Status      DeliveryStatus `json:"status"       gorm:"column:status;not null"`
	Detail      string         `json:"detail"       gorm:"column:detail"`
	Reference   string         `json:"reference"    gorm:"column:reference"`
	Translation string         `json:"translation"  gorm:"column:translation"`
	CreatedAt   time.Time      `json:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (Delivery) TableName() string { return "deliveries" }

// DeliveryFilter controls audit listing.
type DeliveryFilter struct {
	PhoneNumber *string
	Statuses    []DeliveryStatus
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
	Desc        bool
}
