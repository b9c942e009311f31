// Package analytics is the tracking data layer: UI interactions become flat
// key/value events enriched with page context and handed to a Sink.
package analytics

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	logx "github.com/storefront-poc-v1/server/pkg/logger"
)

// Event is one data-layer entry. Keys follow the snake_case names tag managers expect.
type Event map[string]any

// Name returns the event name, or "" when unset.
func (e Event) Name() string {
	s, _ := e["event"].(string)
	return s
}

// Sink receives events pushed to the data layer.
type Sink interface {
	Push(ctx context.Context, e Event) error
}

// Page is the context stamped on every event.
type Page struct {
	Title    string
	Location string
}

// Path returns the path component of Location, "/" when it cannot be parsed.
func (p Page) Path() string {
	u, err := url.Parse(p.Location)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

type DataLayer struct {
	sink Sink
	page Page
	now  func() time.Time
}

type Option func(*DataLayer)

// WithClock overrides time.Now, for trackers that measure elapsed time.
func WithClock(now func() time.Time) Option {
	return func(d *DataLayer) { d.now = now }
}

// New returns a data layer writing to sink. A nil sink only logs events.
func New(sink Sink, page Page, opts ...Option) *DataLayer {
	d := &DataLayer{sink: sink, page: page, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Push builds the event, stamps page context and forwards it to the sink.
// Payload keys win over the page context. Sink failures are logged, never returned.
func (d *DataLayer) Push(ctx context.Context, name string, payload map[string]any) Event {
	e := Event{
		"event":         name,
		"event_id":      uuid.NewString(),
		"page_title":    d.page.Title,
		"page_location": d.page.Location,
		"page_path":     d.page.Path(),
	}
	for k, v := range payload {
		e[k] = v
	}

	logx.Debug().Str("event", name).Interface("payload", payload).Msg("[DL]")

	if d.sink != nil {
		if err := d.sink.Push(ctx, e); err != nil {
			logx.Warn().Err(err).Str("event", name).Msg("failed to push data layer event")
		}
	}
	return e
}

func (d *DataLayer) PageView(ctx context.Context) Event {
	return d.Push(ctx, "page_view", nil)
}

// CTAClick records a call-to-action button press; area is e.g. "header" or "hero".
func (d *DataLayer) CTAClick(ctx context.Context, buttonID, text, area string) Event {
	return d.Push(ctx, "cta_click", map[string]any{
		"button_id":   buttonID,
		"button_text": text,
		"cta_context": area,
	})
}

// NavClick records a header/footer link click. An empty area is reported as "unknown".
func (d *DataLayer) NavClick(ctx context.Context, text, href string, external bool, area string) Event {
	linkType := "internal"
	if external {
		linkType = "external"
	}
	if area == "" {
		area = "unknown"
	}
	return d.Push(ctx, "nav_click", map[string]any{
		"link_text": text,
		"link_url":  href,
		"link_type": linkType,
		"nav_area":  area,
	})
}

// PricingSelect records a plan choice. An empty plan is reported as "Unknown".
func (d *DataLayer) PricingSelect(ctx context.Context, plan, buttonText string) Event {
	if plan == "" {
		plan = "Unknown"
	}
	return d.Push(ctx, "pricing_select", map[string]any{
		"pricing_plan": plan,
		"button_text":  buttonText,
	})
}
