package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeFfmpeg(t *testing.T) string {
	t.Helper()
	// Mimics "ffmpeg -y -i src -c:a libopus dst" by copying src to dst.
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\ncp \"$3\" \"$6\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func newTestSynthesizer(t *testing.T, artifactDir string) *VoiceSynthesizer {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake mp3 bytes"))
	}))
	t.Cleanup(srv.Close)

	synth, err := NewVoiceSynthesizer(&VoiceConfig{
		BaseURL:     srv.URL,
		Language:    "en",
		Timeout:     2 * time.Second,
		FfmpegPath:  newFakeFfmpeg(t),
		ArtifactDir: artifactDir,
	})
	require.NoError(t, err)
	return synth
}

func TestTextMessagePrefix(t *testing.T) {
	verse := model.Verse{Text: "For God so loved the world.", Reference: "John 3:16", Translation: "web"}
	assert.Equal(t, "Daily Verse: For God so loved the world.", TextMessage(verse))

	failed := model.Verse{Text: "Could not fetch verse: timeout"}
	assert.Equal(t, "Daily Verse: Could not fetch verse: timeout", TextMessage(failed))
}

func TestRenderTextChannels(t *testing.T) {
	renderer := NewRenderer(newTestSynthesizer(t, t.TempDir()))
	verse := model.Verse{Text: "text", Reference: "John 3:16", Translation: "web"}

	for _, method := range []model.DeliveryMethod{model.MethodSMS, model.MethodWhatsAppText} {
		pref := &model.Preference{PhoneNumber: "+15551234567", Method: method}
		payload, err := renderer.Render(context.Background(), pref, verse)
		require.NoError(t, err)
		assert.Equal(t, model.PayloadText, payload.Kind)
		assert.Equal(t, "Daily Verse: text", payload.Body)
		assert.Empty(t, payload.LocalPath)
		assert.False(t, payload.NeedsPublicURL())
	}
}

func TestRenderVoiceNote(t *testing.T) {
	dir := t.TempDir()
	renderer := NewRenderer(newTestSynthesizer(t, dir))
	pref := &model.Preference{PhoneNumber: "+15551234567", Method: model.MethodWhatsAppVoiceNote}

	payload, err := renderer.Render(context.Background(), pref, model.Verse{Text: "text", Reference: "John 3:16", Translation: "web"})
	require.NoError(t, err)

	assert.Equal(t, model.PayloadAudio, payload.Kind)
	assert.Equal(t, filepath.Join(dir, "voice_note_+15551234567.ogg"), payload.LocalPath)
	assert.True(t, payload.NeedsPublicURL())

	_, err = os.Stat(payload.LocalPath)
	assert.NoError(t, err)

	// Intermediate mp3s are cleaned up.
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSynthesizeConcurrentRecipients(t *testing.T) {
	dir := t.TempDir()

	// The stub echoes the requested text back as the audio bytes, and the
	// fake ffmpeg copies them verbatim, so each ogg proves which request
	// produced it.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Query().Get("q")))
	}))
	t.Cleanup(srv.Close)

	synth, err := NewVoiceSynthesizer(&VoiceConfig{
		BaseURL:     srv.URL,
		Language:    "en",
		Timeout:     2 * time.Second,
		FfmpegPath:  newFakeFfmpeg(t),
		ArtifactDir: dir,
	})
	require.NoError(t, err)

	phones := []string{"+15550000001", "+15550000002", "+15550000003", "+15550000004"}
	paths := make([]string, len(phones))

	var wg sync.WaitGroup
	for i, phone := range phones {
		wg.Add(1)
		go func(i int, phone string) {
			defer wg.Done()
			path, err := synth.Synthesize(context.Background(), phone, "Daily Verse: for "+phone)
			assert.NoError(t, err)
			paths[i] = path
		}(i, phone)
	}
	wg.Wait()

	for i, phone := range phones {
		assert.Equal(t, filepath.Join(dir, VoiceNoteFilename(phone)), paths[i])
		body, err := os.ReadFile(paths[i])
		require.NoError(t, err)
		assert.Equal(t, "Daily Verse: for "+phone, string(body))
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRenderCallScript(t *testing.T) {
	dir := t.TempDir()
	renderer := NewRenderer(newTestSynthesizer(t, dir))
	pref := &model.Preference{PhoneNumber: "+15551234567", Method: model.MethodCall}

	payload, err := renderer.Render(context.Background(), pref, model.Verse{Text: "text", Reference: "John 3:16", Translation: "web"})
	require.NoError(t, err)

	assert.Equal(t, model.PayloadCallScript, payload.Kind)
	assert.Equal(t, filepath.Join(dir, "twiml_verse_+15551234567.xml"), payload.LocalPath)
	assert.True(t, payload.NeedsPublicURL())

	body, err := os.ReadFile(payload.LocalPath)
	require.NoError(t, err)
	content := string(body)

	assert.Contains(t, content, "<Response>")
	assert.Contains(t, content, "<Say>Hello from your daily Bible verse app!</Say>")
	assert.Contains(t, content, `<Pause length="1"></Pause>`)
	assert.Contains(t, content, "<Say>Here is your verse for today:</Say>")
	assert.Contains(t, content, "<Say>Daily Verse: text</Say>")
	assert.Contains(t, content, "<Say>Have a blessed day!</Say>")

	// Greeting comes before the verse, the verse before the closing.
	assert.Less(t,
		strings.Index(content, "Hello from"),
		strings.Index(content, "Daily Verse: text"))
	assert.Less(t,
		strings.Index(content, "Daily Verse: text"),
		strings.Index(content, "Have a blessed day"))
}

func TestRenderUnsupportedMethod(t *testing.T) {
	renderer := NewRenderer(newTestSynthesizer(t, t.TempDir()))
	pref := &model.Preference{PhoneNumber: "+15551234567", Method: model.DeliveryMethod("carrier_pigeon")}

	_, err := renderer.Render(context.Background(), pref, model.Verse{Text: "text"})
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}
