package dispatch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

type TwilioConfig struct {
	BaseURL        string
	AccountSID     string
	AuthToken      string
	PhoneNumber    string // From number for sms and calls
	WhatsAppNumber string // From number for whatsapp channels
	Timeout        time.Duration
}

// TwilioClient talks to the Twilio REST API. Requests are form-encoded with
// basic auth, the way Twilio's own helper libraries do it.
type TwilioClient struct {
	config *TwilioConfig
	http   *fasthttp.Client
}

type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewTwilioClient(config *TwilioConfig) (*TwilioClient, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.twilio.com"
	}
	if config.AccountSID == "" || config.AuthToken == "" {
		return nil, errors.New("account sid and auth token are required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &TwilioClient{
		config: config,
		http: &fasthttp.Client{
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}, nil
}

// SendSMS sends a plain text message.
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.config.PhoneNumber)
	form.Set("Body", body)
	return c.create(ctx, "Messages.json", form)
}

// SendWhatsAppText sends a text message over the WhatsApp channel. Twilio
// addresses WhatsApp endpoints with a "whatsapp:" prefix on both numbers.
func (c *TwilioClient) SendWhatsAppText(ctx context.Context, to, body string) (string, error) {
	form := url.Values{}
	form.Set("To", "whatsapp:"+to)
	form.Set("From", "whatsapp:"+c.config.WhatsAppNumber)
	form.Set("Body", body)
	return c.create(ctx, "Messages.json", form)
}

// SendWhatsAppMedia sends a media-only WhatsApp message pointing at a
// publicly reachable artifact.
func (c *TwilioClient) SendWhatsAppMedia(ctx context.Context, to, mediaURL string) (string, error) {
	form := url.Values{}
	form.Set("To", "whatsapp:"+to)
	form.Set("From", "whatsapp:"+c.config.WhatsAppNumber)
	form.Set("MediaUrl", mediaURL)
	return c.create(ctx, "Messages.json", form)
}

// MakeCall places an outbound call that fetches its TwiML from scriptURL.
func (c *TwilioClient) MakeCall(ctx context.Context, to, scriptURL string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.config.PhoneNumber)
	form.Set("Url", scriptURL)
	return c.create(ctx, "Calls.json", form)
}

func (c *TwilioClient) create(ctx context.Context, resource string, form url.Values) (string, error) {
	uri := fmt.Sprintf("%s/2010-04-01/Accounts/%s/%s", c.config.BaseURL, c.config.AccountSID, resource)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set("Authorization", c.basicAuth())
	req.SetBodyString(form.Encode())

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return "", errors.Wrap(err, "twilio request failed")
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", errors.Errorf("twilio returned status %d: %s", resp.StatusCode(), resp.Body())
	}

	var body twilioResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal twilio response")
	}

	logger.Info("Twilio request accepted", "resource", resource, "sid", body.SID, "status", body.Status)

	return body.SID, nil
}

func (c *TwilioClient) basicAuth() string {
	creds := c.config.AccountSID + ":" + c.config.AuthToken
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}
