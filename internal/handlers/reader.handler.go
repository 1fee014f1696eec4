package handlers

import (
	"context"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/nimasrn/verse-gateway/internal/bible"
	"github.com/nimasrn/verse-gateway/internal/model"
	xhttp "github.com/nimasrn/verse-gateway/pkg/http"
)

type ChapterResolver interface {
	ResolveChapter(ctx context.Context, translationID, bookName string, chapter int) (*model.Chapter, error)
}

// ReaderHandler serves the read-only scripture browsing API backed by the
// static catalog plus live chapter fetches.
type ReaderHandler struct {
	resolver ChapterResolver
}

func RegisterReaderRoutes(e *router.Group, h *ReaderHandler) {
	e.GET("/translations", h.ListTranslations)
	e.GET("/translations/{translation}/books", h.ListBooks)
	e.GET("/translations/{translation}/books/{book}/chapters/{chapter}", h.GetChapter)
}

func NewReaderHandler(resolver ChapterResolver) *ReaderHandler {
	return &ReaderHandler{resolver: resolver}
}

func (h *ReaderHandler) ListTranslations(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, 200, bible.Translations())
}

func (h *ReaderHandler) ListBooks(ctx *xhttp.RequestCtx) {
	books := bible.BooksFor(param(ctx, "translation"))
	if books == nil {
		writeError(ctx, 404, "unknown translation")
		return
	}
	writeJSON(ctx, 200, books)
}

func (h *ReaderHandler) GetChapter(ctx *xhttp.RequestCtx) {
	chapterNum, err := strconv.Atoi(param(ctx, "chapter"))
	if err != nil || chapterNum < 1 {
		writeError(ctx, 400, "chapter must be a positive number")
		return
	}
	if !bible.KnownTranslation(param(ctx, "translation")) {
		writeError(ctx, 404, "unknown translation")
		return
	}

	chapter, err := h.resolver.ResolveChapter(ctx, param(ctx, "translation"), param(ctx, "book"), chapterNum)
	if err != nil {
		writeError(ctx, 502, err.Error())
		return
	}
	writeJSON(ctx, 200, chapter)
}
