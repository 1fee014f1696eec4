package dispatch

import (
	"context"

	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/pkg/errors"
)

var ErrUnsupportedMethod = errors.New("unsupported delivery method")

// Sender is the outbound messaging surface the dispatcher needs. TwilioClient
// satisfies it; tests substitute a recorder.
type Sender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
	SendWhatsAppText(ctx context.Context, to, body string) (string, error)
	SendWhatsAppMedia(ctx context.Context, to, mediaURL string) (string, error)
	MakeCall(ctx context.Context, to, scriptURL string) (string, error)
}

// Dispatcher routes a rendered payload to the right outbound channel.
type Dispatcher struct {
	sender Sender
}

func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Dispatch sends the payload to the recipient and returns the provider's
// message or call identifier. Media payloads must already carry a public
// url; the pipeline holds back incomplete ones before dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, pref *model.Preference, payload *model.Payload) (string, error) {
	switch pref.Method {
	case model.MethodSMS:
		return d.sender.SendSMS(ctx, pref.PhoneNumber, payload.Body)
	case model.MethodWhatsAppText:
		return d.sender.SendWhatsAppText(ctx, pref.PhoneNumber, payload.Body)
	case model.MethodWhatsAppVoiceNote:
		if payload.PublicURL == "" {
			return "", errors.New("voice note has no public url")
		}
		return d.sender.SendWhatsAppMedia(ctx, pref.PhoneNumber, payload.PublicURL)
	case model.MethodCall:
		if payload.PublicURL == "" {
			return "", errors.New("call script has no public url")
		}
		return d.sender.MakeCall(ctx, pref.PhoneNumber, payload.PublicURL)
	}
	return "", errors.Wrapf(ErrUnsupportedMethod, "%q", pref.Method)
}
