package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewDeliveryRepository(db)
	ctx := context.Background()

	d := &model.Delivery{
		PhoneNumber: "+15550000000",
		Method:      model.MethodSMS,
		Status:      model.DeliveryStatusSent,
		Reference:   "John 3:16",
		Translation: "King James Version",
	}

	created, err := repo.Create(ctx, d)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, model.DeliveryStatusSent, created.Status)
	assert.NotZero(t, created.CreatedAt)
}

func TestDeliveryRepository_List(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewDeliveryRepository(db)
	ctx := context.Background()

	phone := "+15550000001"
	rows := []model.DeliveryStatus{
		model.DeliveryStatusSent,
		model.DeliveryStatusFailed,
		model.DeliveryStatusIncomplete,
		model.DeliveryStatusSent,
	}
	for _, status := range rows {
		_, err := repo.Create(ctx, &model.Delivery{
			PhoneNumber: phone,
			Method:      model.MethodWhatsAppVoiceNote,
			Status:      status,
		})
		require.NoError(t, err)
	}

	t.Run("list by phone", func(t *testing.T) {
		deliveries, total, err := repo.List(ctx, model.DeliveryFilter{PhoneNumber: &phone})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, deliveries, 4)
	})

	t.Run("filter by status", func(t *testing.T) {
		deliveries, total, err := repo.List(ctx, model.DeliveryFilter{
			PhoneNumber: &phone,
			Statuses:    []model.DeliveryStatus{model.DeliveryStatusSent},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, d := range deliveries {
			assert.Equal(t, model.DeliveryStatusSent, d.Status)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		deliveries, total, err := repo.List(ctx, model.DeliveryFilter{
			PhoneNumber: &phone,
			Limit:       2,
			Offset:      3,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, deliveries, 1)
	})
}
