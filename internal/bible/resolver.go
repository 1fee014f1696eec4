package bible

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/pkg/errors"
)

// Resolver turns a preference into deliverable verse content.
type Resolver struct {
	client           *Client
	defaultReference string
}

func NewResolver(client *Client, defaultReference string) *Resolver {
	if defaultReference == "" {
		defaultReference = "john 3:16"
	}
	return &Resolver{
		client:           client,
		defaultReference: defaultReference,
	}
}

// Resolve fetches the verse for a preference. The translation is picked
// uniformly from the preference's list, and the sentinel reference "random"
// maps to the configured default. A fetch failure never fails the delivery:
// the returned verse carries the explanation in Text with empty Reference
// and Translation.
func (r *Resolver) Resolve(ctx context.Context, pref *model.Preference) model.Verse {
	translation := r.pickTranslation(pref.Translations)

	reference := strings.TrimSpace(pref.VerseReference)
	if reference == "" || strings.EqualFold(reference, model.VerseReferenceRandom) {
		reference = r.defaultReference
	}

	resp, err := r.client.Fetch(ctx, reference, translation)
	if err != nil {
		logger.Warn("Verse resolution failed", "error", err, "phone", pref.PhoneNumber, "reference", reference, "translation", translation)
		return model.Verse{Text: fmt.Sprintf("Could not fetch verse: %v", err)}
	}

	return resp.toVerse(translation)
}

// ResolveChapter fetches a whole chapter for the read-only browsing API.
func (r *Resolver) ResolveChapter(ctx context.Context, translationID, bookName string, chapter int) (*model.Chapter, error) {
	if !KnownTranslation(translationID) {
		return nil, errors.Errorf("unknown translation: %s", translationID)
	}

	reference := fmt.Sprintf("%s %d", bookName, chapter)
	resp, err := r.client.Fetch(ctx, reference, strings.ToLower(translationID))
	if err != nil {
		return nil, err
	}

	verses := make([]model.ChapterVerse, 0, len(resp.Verses))
	parts := make([]string, 0, len(resp.Verses))
	for _, frag := range resp.Verses {
		verses = append(verses, model.ChapterVerse{
			BookName: frag.BookName,
			Chapter:  frag.Chapter,
			Verse:    frag.Verse,
			Text:     frag.Text,
		})
		parts = append(parts, frag.Text)
	}

	return &model.Chapter{
		Text:        strings.TrimSpace(strings.Join(parts, " ")),
		BookName:    resp.Verses[0].BookName,
		Chapter:     resp.Verses[0].Chapter,
		Translation: strings.ToLower(translationID),
		Verses:      verses,
	}, nil
}

func (r *Resolver) pickTranslation(translations []string) string {
	if len(translations) == 0 {
		return "web"
	}
	return strings.ToLower(translations[rand.Intn(len(translations))])
}
