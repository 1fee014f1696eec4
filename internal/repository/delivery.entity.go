package repository

import (
	"time"

	"github.com/nimasrn/verse-gateway/internal/model"
)

type DeliveryEntity struct {
	ID          int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	PhoneNumber string    `db:"phone_number" gorm:"column:phone_number;not null;index"`
	Method      string    `db:"method"       gorm:"column:method;not null"`
	Status      string    `db:"status"       gorm:"column:status;not null"`
	Detail      string    `db:"detail"       gorm:"column:detail"`
	Reference   string    `db:"reference"    gorm:"column:reference"`
	Translation string    `db:"translation"  gorm:"column:translation"`
	CreatedAt   time.Time `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (DeliveryEntity) TableName() string {
	return "deliveries"
}

func toDeliveryEntity(d *model.Delivery) *DeliveryEntity {
	if d == nil {
		return nil
	}
	return &DeliveryEntity{
		ID:          d.ID,
		PhoneNumber: d.PhoneNumber,
		Method:      string(d.Method),
		Status:      string(d.Status),
		Detail:      d.Detail,
		Reference:   d.Reference,
		Translation: d.Translation,
		CreatedAt:   d.CreatedAt,
	}
}

func toDeliveryModel(e *DeliveryEntity) *model.Delivery {
	if e == nil {
		return nil
	}
	return &model.Delivery{
		ID:          e.ID,
		PhoneNumber: e.PhoneNumber,
		Method:      model.DeliveryMethod(e.Method),
		Status:      model.DeliveryStatus(e.Status),
		Detail:      e.Detail,
		Reference:   e.Reference,
		Translation: e.Translation,
		CreatedAt:   e.CreatedAt,
	}
}

func toDeliveryModels(entities []*DeliveryEntity) []*model.Delivery {
	if entities == nil {
		return nil
	}
	models := make([]*model.Delivery, len(entities))
	for i, e := range entities {
		models[i] = toDeliveryModel(e)
	}
	return models
}
