package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Path string
	Form map[string]string
	Auth string
}

func newTwilioStub(t *testing.T, status int) (*TwilioClient, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form := make(map[string]string)
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		requests = append(requests, recordedRequest{
			Path: r.URL.Path,
			Form: form,
			Auth: r.Header.Get("Authorization"),
		})
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"sid": "SM123", "status": "queued"})
	}))
	t.Cleanup(srv.Close)

	client, err := NewTwilioClient(&TwilioConfig{
		BaseURL:        srv.URL,
		AccountSID:     "AC_test",
		AuthToken:      "token",
		PhoneNumber:    "+15550001111",
		WhatsAppNumber: "+15550002222",
		Timeout:        2 * time.Second,
	})
	require.NoError(t, err)
	return client, &requests
}

func TestSendSMS(t *testing.T) {
	client, requests := newTwilioStub(t, http.StatusCreated)

	sid, err := client.SendSMS(context.Background(), "+15551234567", "Daily Verse: text")
	require.NoError(t, err)
	assert.Equal(t, "SM123", sid)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/2010-04-01/Accounts/AC_test/Messages.json", req.Path)
	assert.Equal(t, "+15551234567", req.Form["To"])
	assert.Equal(t, "+15550001111", req.Form["From"])
	assert.Equal(t, "Daily Verse: text", req.Form["Body"])
	assert.Contains(t, req.Auth, "Basic ")
}

func TestWhatsAppAddressing(t *testing.T) {
	client, requests := newTwilioStub(t, http.StatusCreated)

	_, err := client.SendWhatsAppText(context.Background(), "+15551234567", "Daily Verse: text")
	require.NoError(t, err)
	_, err = client.SendWhatsAppMedia(context.Background(), "+15551234567", "https://example.github.io/verses/voice_note.ogg")
	require.NoError(t, err)

	require.Len(t, *requests, 2)
	text := (*requests)[0]
	assert.Equal(t, "whatsapp:+15551234567", text.Form["To"])
	assert.Equal(t, "whatsapp:+15550002222", text.Form["From"])

	media := (*requests)[1]
	assert.Equal(t, "whatsapp:+15551234567", media.Form["To"])
	assert.Equal(t, "https://example.github.io/verses/voice_note.ogg", media.Form["MediaUrl"])
	assert.Empty(t, media.Form["Body"])
}

func TestMakeCall(t *testing.T) {
	client, requests := newTwilioStub(t, http.StatusCreated)

	_, err := client.MakeCall(context.Background(), "+15551234567", "https://example.github.io/verses/twiml_verse_+15551234567.xml")
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/2010-04-01/Accounts/AC_test/Calls.json", req.Path)
	assert.Equal(t, "+15550001111", req.Form["From"])
	assert.Equal(t, "https://example.github.io/verses/twiml_verse_+15551234567.xml", req.Form["Url"])
}

func TestTwilioErrorStatus(t *testing.T) {
	client, _ := newTwilioStub(t, http.StatusUnauthorized)

	_, err := client.SendSMS(context.Background(), "+15551234567", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

type fakeSender struct {
	calls []string
}

func (f *fakeSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	f.calls = append(f.calls, "sms")
	return "SM1", nil
}
func (f *fakeSender) SendWhatsAppText(ctx context.Context, to, body string) (string, error) {
	f.calls = append(f.calls, "whatsapp_text")
	return "SM2", nil
}
func (f *fakeSender) SendWhatsAppMedia(ctx context.Context, to, mediaURL string) (string, error) {
	f.calls = append(f.calls, "whatsapp_media")
	return "SM3", nil
}
func (f *fakeSender) MakeCall(ctx context.Context, to, scriptURL string) (string, error) {
	f.calls = append(f.calls, "call")
	return "CA1", nil
}

func TestDispatchRouting(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewDispatcher(sender)

	cases := []struct {
		method  model.DeliveryMethod
		payload model.Payload
		want    string
	}{
		{model.MethodSMS, model.Payload{Kind: model.PayloadText, Body: "b"}, "sms"},
		{model.MethodWhatsAppText, model.Payload{Kind: model.PayloadText, Body: "b"}, "whatsapp_text"},
		{model.MethodWhatsAppVoiceNote, model.Payload{Kind: model.PayloadAudio, PublicURL: "https://x/voice_note.ogg"}, "whatsapp_media"},
		{model.MethodCall, model.Payload{Kind: model.PayloadCallScript, PublicURL: "https://x/twiml.xml"}, "call"},
	}

	for _, tc := range cases {
		pref := &model.Preference{PhoneNumber: "+15551234567", Method: tc.method}
		_, err := dispatcher.Dispatch(context.Background(), pref, &tc.payload)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"sms", "whatsapp_text", "whatsapp_media", "call"}, sender.calls)
}

func TestDispatchUnsupportedMethodSendsNothing(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewDispatcher(sender)

	pref := &model.Preference{PhoneNumber: "+15551234567", Method: model.DeliveryMethod("fax")}
	_, err := dispatcher.Dispatch(context.Background(), pref, &model.Payload{Kind: model.PayloadText, Body: "b"})
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
	assert.Empty(t, sender.calls)
}

func TestDispatchMediaWithoutPublicURL(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewDispatcher(sender)

	pref := &model.Preference{PhoneNumber: "+15551234567", Method: model.MethodWhatsAppVoiceNote}
	_, err := dispatcher.Dispatch(context.Background(), pref, &model.Payload{Kind: model.PayloadAudio})
	assert.Error(t, err)
	assert.Empty(t, sender.calls)
}
