package services

import (
	"context"

	"github.com/nimasrn/verse-gateway/internal/model"
)

type DeliveryRepository interface {
	List(ctx context.Context, f model.DeliveryFilter) ([]*model.Delivery, int64, error) // results, totalCount
}

// DeliveryService exposes the delivery audit trail.
type DeliveryService struct {
	repo DeliveryRepository
}

func NewDeliveryService(repo DeliveryRepository) *DeliveryService {
	return &DeliveryService{repo: repo}
}

func (s *DeliveryService) List(ctx context.Context, f model.DeliveryFilter) ([]*model.Delivery, int64, error) {
	return s.repo.List(ctx, f)
}
