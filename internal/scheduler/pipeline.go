package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/nimasrn/verse-gateway/internal/bible"
	"github.com/nimasrn/verse-gateway/internal/dispatch"
	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/nimasrn/verse-gateway/internal/publish"
	"github.com/nimasrn/verse-gateway/internal/render"
	"github.com/nimasrn/verse-gateway/internal/repository"
	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/nimasrn/verse-gateway/pkg/prom"
	"github.com/pkg/errors"
)

const (
	skipReasonAlreadyDelivered = "already_delivered"
)

// Pipeline executes one end-to-end delivery: claim, resolve, render,
// publish media, dispatch, audit.
type Pipeline struct {
	resolver   *bible.Resolver
	renderer   *render.Renderer
	publisher  *publish.Publisher
	dispatcher *dispatch.Dispatcher
	deliveries *repository.DeliveryRepository
	dedup      *Deduper
	timeout    time.Duration
	now        func() time.Time
}

func NewPipeline(
	resolver *bible.Resolver,
	renderer *render.Renderer,
	publisher *publish.Publisher,
	dispatcher *dispatch.Dispatcher,
	deliveries *repository.DeliveryRepository,
	dedup *Deduper,
	timeout time.Duration,
) *Pipeline {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Pipeline{
		resolver:   resolver,
		renderer:   renderer,
		publisher:  publisher,
		dispatcher: dispatcher,
		deliveries: deliveries,
		dedup:      dedup,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Deliver runs the whole delivery for one preference. A duplicate claim is a
// silent skip. Failures release the claim so a retried job can go again.
func (p *Pipeline) Deliver(ctx context.Context, pref *model.Preference) error {
	day := p.now()

	acquired, err := p.dedup.Acquire(pref.PhoneNumber, day)
	if err != nil {
		return errors.Wrap(err, "failed to claim delivery")
	}
	if !acquired {
		logger.Info("Delivery already made today, skipping", "phone", pref.PhoneNumber)
		prom.IncDeliverySkipped(skipReasonAlreadyDelivered)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	verse := p.resolver.Resolve(ctx, pref)
	if verse.Failed() {
		logger.Warn("Delivering fetch-failure notice instead of scripture", "phone", pref.PhoneNumber, "text", verse.Text)
	}

	payload, err := p.renderer.Render(ctx, pref, verse)
	if err != nil {
		p.dedup.Release(pref.PhoneNumber, day)
		p.record(pref, verse, model.DeliveryStatusFailed, fmt.Sprintf("render: %v", err))
		return err
	}

	if payload.NeedsPublicURL() {
		url, err := p.publisher.Publish(ctx, payload.LocalPath, commitMessage(pref))
		if errors.Is(err, publish.ErrNoPublicURL) {
			// Artifact is pushed and will not be regenerated today; the
			// claim stays so we don't spam the repository.
			p.record(pref, verse, model.DeliveryStatusIncomplete, "awaiting public URL configuration")
			return nil
		}
		if err != nil {
			p.dedup.Release(pref.PhoneNumber, day)
			p.record(pref, verse, model.DeliveryStatusFailed, fmt.Sprintf("publish: %v", err))
			return err
		}
		payload.PublicURL = url
	}

	sid, err := p.dispatcher.Dispatch(ctx, pref, payload)
	if err != nil {
		p.dedup.Release(pref.PhoneNumber, day)
		p.record(pref, verse, model.DeliveryStatusFailed, fmt.Sprintf("dispatch: %v", err))
		return err
	}

	logger.Info("Verse delivered", "phone", pref.PhoneNumber, "method", string(pref.Method), "sid", sid)
	p.record(pref, verse, model.DeliveryStatusSent, sid)
	return nil
}

// record writes the audit row on its own context so a timed-out delivery
// still gets accounted for.
func (p *Pipeline) record(pref *model.Preference, verse model.Verse, status model.DeliveryStatus, detail string) {
	prom.IncDeliveryResult(string(pref.Method), string(status))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.deliveries.Create(ctx, &model.Delivery{
		PhoneNumber: pref.PhoneNumber,
		Method:      pref.Method,
		Status:      status,
		Detail:      detail,
		Reference:   verse.Reference,
		Translation: verse.Translation,
	})
	if err != nil {
		logger.Error("Failed to record delivery", "error", err, "phone", pref.PhoneNumber, "status", string(status))
	}
}

func commitMessage(pref *model.Preference) string {
	if pref.Method == model.MethodCall {
		return fmt.Sprintf("Add TwiML for call to %s", pref.PhoneNumber)
	}
	return fmt.Sprintf("Add voice note for %s", pref.PhoneNumber)
}
