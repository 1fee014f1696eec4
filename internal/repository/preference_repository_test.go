package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferenceRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewPreferenceRepository(db)
	ctx := context.Background()

	t.Run("create preference successfully", func(t *testing.T) {
		pref := &model.Preference{
			PhoneNumber:    "+15550000000",
			Method:         model.MethodSMS,
			DeliveryTime:   "08:00",
			Translations:   []string{"kjv", "web"},
			VerseReference: "john 3:16",
		}

		created, err := repo.Create(ctx, pref)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, pref.PhoneNumber, created.PhoneNumber)
		assert.Equal(t, pref.Method, created.Method)
		assert.Equal(t, []string{"kjv", "web"}, created.Translations)
		assert.NotZero(t, created.CreatedAt)
	})

	t.Run("duplicate phone number is rejected", func(t *testing.T) {
		pref := &model.Preference{
			PhoneNumber:    "+15550000001",
			Method:         model.MethodSMS,
			DeliveryTime:   "08:00",
			Translations:   []string{"kjv"},
			VerseReference: "john 3:16",
		}
		_, err := repo.Create(ctx, pref)
		require.NoError(t, err)

		dup := &model.Preference{
			PhoneNumber:    "+15550000001",
			Method:         model.MethodCall,
			DeliveryTime:   "09:00",
			Translations:   []string{"web"},
			VerseReference: "random",
		}
		_, err = repo.Create(ctx, dup)
		assert.ErrorIs(t, err, ErrDuplicatePhone)
	})
}

func TestPreferenceRepository_GetByPhone(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewPreferenceRepository(db)
	ctx := context.Background()

	pref := &model.Preference{
		PhoneNumber:    "+15550000002",
		Method:         model.MethodWhatsAppText,
		DeliveryTime:   "06:30",
		Translations:   []string{"web", "asv", "kjv"},
		VerseReference: "psalm 23",
	}
	_, err := repo.Create(ctx, pref)
	require.NoError(t, err)

	t.Run("round-trip preserves translation order", func(t *testing.T) {
		got, err := repo.GetByPhone(ctx, "+15550000002")
		require.NoError(t, err)
		assert.Equal(t, []string{"web", "asv", "kjv"}, got.Translations)
		assert.Equal(t, model.MethodWhatsAppText, got.Method)
		assert.Equal(t, "06:30", got.DeliveryTime)
		assert.Equal(t, "psalm 23", got.VerseReference)
	})

	t.Run("unknown phone returns not found", func(t *testing.T) {
		_, err := repo.GetByPhone(ctx, "+19999999999")
		assert.ErrorIs(t, err, ErrPreferenceNotFound)
	})
}

func TestPreferenceRepository_Update(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewPreferenceRepository(db)
	ctx := context.Background()

	pref := &model.Preference{
		PhoneNumber:    "+15550000003",
		Method:         model.MethodSMS,
		DeliveryTime:   "08:00",
		Translations:   []string{"kjv"},
		VerseReference: "john 3:16",
	}
	_, err := repo.Create(ctx, pref)
	require.NoError(t, err)

	t.Run("partial update", func(t *testing.T) {
		method := model.MethodCall
		timeStr := "09:30"
		updated, err := repo.Update(ctx, "+15550000003", model.PreferenceUpdateRequest{
			Method:       &method,
			DeliveryTime: &timeStr,
			Translations: []string{"kjv", "asv"},
		})
		require.NoError(t, err)
		assert.Equal(t, model.MethodCall, updated.Method)
		assert.Equal(t, "09:30", updated.DeliveryTime)
		assert.Equal(t, []string{"kjv", "asv"}, updated.Translations)
		assert.Equal(t, "john 3:16", updated.VerseReference)
	})

	t.Run("empty update reports nothing updated", func(t *testing.T) {
		_, err := repo.Update(ctx, "+15550000003", model.PreferenceUpdateRequest{})
		assert.ErrorIs(t, err, ErrNothingToUpdate)
	})

	t.Run("unknown phone returns not found", func(t *testing.T) {
		ref := "luke 2:10"
		_, err := repo.Update(ctx, "+18888888888", model.PreferenceUpdateRequest{VerseReference: &ref})
		assert.ErrorIs(t, err, ErrPreferenceNotFound)
	})
}

func TestPreferenceRepository_List(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewPreferenceRepository(db)
	ctx := context.Background()

	phones := []string{"+15550000010", "+15550000011", "+15550000012"}
	for _, phone := range phones {
		_, err := repo.Create(ctx, &model.Preference{
			PhoneNumber:    phone,
			Method:         model.MethodSMS,
			DeliveryTime:   "07:00",
			Translations:   []string{"kjv"},
			VerseReference: "random",
		})
		require.NoError(t, err)
	}

	prefs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, prefs, 3)
	for i, p := range prefs {
		assert.Equal(t, phones[i], p.PhoneNumber)
	}
}

func TestPreferenceRepository_Delete(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewPreferenceRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &model.Preference{
		PhoneNumber:    "+15550000020",
		Method:         model.MethodSMS,
		DeliveryTime:   "07:00",
		Translations:   []string{"kjv"},
		VerseReference: "random",
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "+15550000020"))

	_, err = repo.GetByPhone(ctx, "+15550000020")
	assert.ErrorIs(t, err, ErrPreferenceNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "+15550000020"), ErrPreferenceNotFound)
}
