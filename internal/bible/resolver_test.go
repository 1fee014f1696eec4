package bible

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPassage struct {
	Reference       string            `json:"reference"`
	Verses          []passageFragment `json:"verses"`
	TranslationID   string            `json:"translation_id"`
	TranslationName string            `json:"translation_name"`
}

func newStubServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string, maxRetries int) *Client {
	t.Helper()
	client, err := NewClient(&ClientConfig{
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		RetryDelay: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestFetchJoinsFragmentsWithSingleSpace(t *testing.T) {
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(stubPassage{
			Reference: "John 3:16-17",
			Verses: []passageFragment{
				{BookName: "John", Chapter: 3, Verse: 16, Text: "For God so loved the world.\n"},
				{BookName: "John", Chapter: 3, Verse: 17, Text: "For God didn't send his Son to judge.\n"},
			},
			TranslationID: "web",
		})
	})

	client := newTestClient(t, srv.URL, 0)
	resp, err := client.Fetch(context.Background(), "john 3:16-17", "web")
	require.NoError(t, err)

	verse := resp.toVerse("web")
	// Fragments join with a single space and keep their interior line
	// breaks; only the outer whitespace is stripped.
	assert.Equal(t, "For God so loved the world.\n For God didn't send his Son to judge.", verse.Text)
	assert.False(t, strings.HasPrefix(verse.Text, " "))
	assert.False(t, strings.HasSuffix(verse.Text, " "))
	assert.False(t, strings.HasSuffix(verse.Text, "\n"))
	assert.Equal(t, "John 3:16", verse.Reference)
	assert.Equal(t, "web", verse.Translation)
}

func TestFetchEmptyPassage(t *testing.T) {
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(stubPassage{Reference: "John 99:1", Verses: nil})
	})

	client := newTestClient(t, srv.URL, 0)
	_, err := client.Fetch(context.Background(), "john 99:1", "web")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	attempts := 0
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(stubPassage{
			Reference: "John 3:16",
			Verses:    []passageFragment{{BookName: "John", Chapter: 3, Verse: 16, Text: "text"}},
		})
	})

	client := newTestClient(t, srv.URL, 3)
	_, err := client.Fetch(context.Background(), "john 3:16", "kjv")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := newTestClient(t, srv.URL, 2)
	_, err := client.Fetch(context.Background(), "john 3:16", "kjv")
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestResolvePicksTranslationFromPreference(t *testing.T) {
	var seen []string
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query().Get("translation"))
		json.NewEncoder(w).Encode(stubPassage{
			Reference: "John 3:16",
			Verses:    []passageFragment{{BookName: "John", Chapter: 3, Verse: 16, Text: "text"}},
		})
	})

	resolver := NewResolver(newTestClient(t, srv.URL, 0), "john 3:16")
	pref := &model.Preference{
		PhoneNumber:    "+15551234567",
		VerseReference: "john 3:16",
		Translations:   []string{"kjv", "web", "asv"},
	}

	allowed := map[string]bool{"kjv": true, "web": true, "asv": true}
	for i := 0; i < 20; i++ {
		verse := resolver.Resolve(context.Background(), pref)
		require.False(t, verse.Failed())
		assert.True(t, allowed[verse.Translation], "unexpected translation %q", verse.Translation)
	}
	for _, tr := range seen {
		assert.True(t, allowed[tr])
	}
}

func TestResolveRandomReferenceUsesDefault(t *testing.T) {
	var requested []string
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		ref, _ := url.PathUnescape(strings.TrimPrefix(r.URL.EscapedPath(), "/"))
		requested = append(requested, ref)
		json.NewEncoder(w).Encode(stubPassage{
			Reference: "Psalms 23:1",
			Verses:    []passageFragment{{BookName: "Psalms", Chapter: 23, Verse: 1, Text: "text"}},
		})
	})

	resolver := NewResolver(newTestClient(t, srv.URL, 0), "psalms 23:1")
	pref := &model.Preference{
		PhoneNumber:    "+15551234567",
		VerseReference: model.VerseReferenceRandom,
		Translations:   []string{"web"},
	}

	verse := resolver.Resolve(context.Background(), pref)
	require.False(t, verse.Failed())
	require.Len(t, requested, 1)
	assert.Equal(t, "psalms 23:1", requested[0])
	assert.NotEqual(t, model.VerseReferenceRandom, requested[0])
}

func TestResolveSoftFailure(t *testing.T) {
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	resolver := NewResolver(newTestClient(t, srv.URL, 0), "john 3:16")
	pref := &model.Preference{
		PhoneNumber:    "+15551234567",
		VerseReference: "john 3:16",
		Translations:   []string{"web"},
	}

	verse := resolver.Resolve(context.Background(), pref)
	assert.True(t, verse.Failed())
	assert.Contains(t, verse.Text, "Could not fetch verse:")
	assert.Empty(t, verse.Reference)
	assert.Empty(t, verse.Translation)
}

func TestResolveChapter(t *testing.T) {
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(stubPassage{
			Reference: "Jude 1",
			Verses: []passageFragment{
				{BookName: "Jude", Chapter: 1, Verse: 1, Text: "Jude, a servant.\n"},
				{BookName: "Jude", Chapter: 1, Verse: 2, Text: "Mercy to you.\n"},
			},
			TranslationID: "kjv",
		})
	})

	resolver := NewResolver(newTestClient(t, srv.URL, 0), "john 3:16")

	chapter, err := resolver.ResolveChapter(context.Background(), "KJV", "Jude", 1)
	require.NoError(t, err)
	assert.Equal(t, "Jude", chapter.BookName)
	assert.Equal(t, 1, chapter.Chapter)
	assert.Equal(t, "kjv", chapter.Translation)
	assert.Len(t, chapter.Verses, 2)
	assert.Equal(t, "Jude, a servant.\n Mercy to you.", chapter.Text)

	_, err = resolver.ResolveChapter(context.Background(), "nope", "Jude", 1)
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	translations := Translations()
	assert.Len(t, translations, 16)
	assert.True(t, KnownTranslation("kjv"))
	assert.True(t, KnownTranslation("KJV"))
	assert.False(t, KnownTranslation("nab"))

	books := BooksFor("web")
	require.Len(t, books, 66)
	assert.Equal(t, "Genesis", books[0].Name)
	assert.Equal(t, 50, books[0].Chapters)
	assert.Equal(t, "Revelation", books[65].Name)
	assert.Equal(t, 22, books[65].Chapters)

	assert.Nil(t, BooksFor("nope"))
}
