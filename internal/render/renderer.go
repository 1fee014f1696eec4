package render

import (
	"context"

	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/pkg/errors"
)

var ErrUnsupportedMethod = errors.New("unsupported delivery method")

const textPrefix = "Daily Verse: "

// Renderer turns a resolved verse into the channel-specific payload.
type Renderer struct {
	voice *VoiceSynthesizer
}

func NewRenderer(voice *VoiceSynthesizer) *Renderer {
	return &Renderer{voice: voice}
}

// Render produces the payload for one delivery. Text channels never touch
// disk; voice notes and call scripts write an artifact and report its local
// path.
func (r *Renderer) Render(ctx context.Context, pref *model.Preference, verse model.Verse) (*model.Payload, error) {
	switch pref.Method {
	case model.MethodSMS, model.MethodWhatsAppText:
		return &model.Payload{
			Kind: model.PayloadText,
			Body: TextMessage(verse),
		}, nil

	case model.MethodWhatsAppVoiceNote:
		path, err := r.voice.Synthesize(ctx, pref.PhoneNumber, TextMessage(verse))
		if err != nil {
			return nil, err
		}
		return &model.Payload{
			Kind:      model.PayloadAudio,
			LocalPath: path,
		}, nil

	case model.MethodCall:
		path, err := WriteCallScript(r.voice.ArtifactDir(), pref.PhoneNumber, TextMessage(verse))
		if err != nil {
			return nil, err
		}
		return &model.Payload{
			Kind:      model.PayloadCallScript,
			LocalPath: path,
		}, nil
	}

	return nil, errors.Wrapf(ErrUnsupportedMethod, "%q", pref.Method)
}

// TextMessage is the canonical text form, shared by SMS, WhatsApp and the
// spoken channels. Soft-failure verses go out as-is so the user still hears
// from us.
func TextMessage(verse model.Verse) string {
	return textPrefix + verse.Text
}
