package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fasthttp/router"
	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/nimasrn/verse-gateway/internal/services"
	xhttp "github.com/nimasrn/verse-gateway/pkg/http"
)

type PreferenceService interface {
	Create(ctx context.Context, req model.PreferenceCreateRequest) (*model.Preference, error)
	Get(ctx context.Context, phone string) (*model.Preference, error)
	List(ctx context.Context) ([]*model.Preference, error)
	Update(ctx context.Context, phone string, req model.PreferenceUpdateRequest) (*model.Preference, error)
	Delete(ctx context.Context, phone string) error
}

type PreferenceHandler struct {
	svc PreferenceService
}

func RegisterPreferenceRoutes(e *router.Group, h *PreferenceHandler) {
	e.POST("/preferences", h.CreatePreference)
	e.GET("/preferences", h.ListPreferences)
	e.GET("/preferences/{phone}", h.GetPreference)
	e.PUT("/preferences/{phone}", h.UpdatePreference)
	e.DELETE("/preferences/{phone}", h.DeletePreference)
}

func NewPreferenceHandler(svc PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

type createPreferenceRequest struct {
	PhoneNumber    string   `json:"phone_number"`
	Method         string   `json:"preferred_method"`
	DeliveryTime   string   `json:"delivery_time"`
	Translations   []string `json:"translations"`
	VerseReference string   `json:"verse_reference"`
}

type updatePreferenceRequest struct {
	Method         *string  `json:"preferred_method"`
	DeliveryTime   *string  `json:"delivery_time"`
	Translations   []string `json:"translations"`
	VerseReference *string  `json:"verse_reference"`
}

type preferenceListResponse struct {
	Items []*model.Preference `json:"items"`
	Total int                 `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *PreferenceHandler) CreatePreference(ctx *xhttp.RequestCtx) {
	var req createPreferenceRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	pref, err := h.svc.Create(ctx, model.PreferenceCreateRequest{
		PhoneNumber:    req.PhoneNumber,
		Method:         model.DeliveryMethod(req.Method),
		DeliveryTime:   req.DeliveryTime,
		Translations:   req.Translations,
		VerseReference: req.VerseReference,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicatePhone) {
			writeError(ctx, 409, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, pref)
}

func (h *PreferenceHandler) ListPreferences(ctx *xhttp.RequestCtx) {
	items, err := h.svc.List(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, preferenceListResponse{Items: items, Total: len(items)})
}

func (h *PreferenceHandler) GetPreference(ctx *xhttp.RequestCtx) {
	pref, err := h.svc.Get(ctx, param(ctx, "phone"))
	if err != nil {
		if errors.Is(err, services.ErrPreferenceNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, pref)
}

func (h *PreferenceHandler) UpdatePreference(ctx *xhttp.RequestCtx) {
	var req updatePreferenceRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	update := model.PreferenceUpdateRequest{
		DeliveryTime:   req.DeliveryTime,
		Translations:   req.Translations,
		VerseReference: req.VerseReference,
	}
	if req.Method != nil {
		m := model.DeliveryMethod(*req.Method)
		update.Method = &m
	}

	pref, err := h.svc.Update(ctx, param(ctx, "phone"), update)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPreferenceNotFound):
			writeError(ctx, 404, err.Error())
		case errors.Is(err, services.ErrNothingToUpdate):
			writeError(ctx, 400, err.Error())
		default:
			writeError(ctx, 400, err.Error())
		}
		return
	}
	writeJSON(ctx, 200, pref)
}

func (h *PreferenceHandler) DeletePreference(ctx *xhttp.RequestCtx) {
	if err := h.svc.Delete(ctx, param(ctx, "phone")); err != nil {
		if errors.Is(err, services.ErrPreferenceNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	ctx.Response.SetStatusCode(204)
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func param(ctx *xhttp.RequestCtx, name string) string {
	if v, ok := ctx.UserValue(name).(string); ok {
		return v
	}
	return ""
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}
