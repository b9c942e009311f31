package analytics

import (
	"context"
	"fmt"
	"math"
	"time"
)

// FormTracker follows one form from first focus to submit.
type FormTracker struct {
	dl          *DataLayer
	formID      string
	fieldsCount int
	startedAt   time.Time
	started     bool
}

func (d *DataLayer) NewFormTracker(formID string, fieldsCount int) *FormTracker {
	return &FormTracker{dl: d, formID: formID, fieldsCount: fieldsCount}
}

// Focus emits form_start on the first focus since the last submit; later calls return nil.
func (f *FormTracker) Focus(ctx context.Context) Event {
	if f.started {
		return nil
	}
	f.started = true
	f.startedAt = f.dl.now()
	return f.dl.Push(ctx, "form_start", map[string]any{
		"form_id":           f.formID,
		"form_fields_count": f.fieldsCount,
	})
}

// FileAttach records an attached file. Size is reported in whole KB.
func (f *FormTracker) FileAttach(ctx context.Context, name, mimeType string, sizeBytes int64) Event {
	if mimeType == "" {
		mimeType = "unknown"
	}
	return f.dl.Push(ctx, "file_attach", map[string]any{
		"form_id":            f.formID,
		"attachment_name":    name,
		"attachment_type":    mimeType,
		"attachment_size_kb": sizeKB(sizeBytes),
	})
}

// FileMeta is the human-readable summary shown next to the file input.
func FileMeta(name, mimeType string, sizeBytes int64) string {
	if mimeType == "" {
		mimeType = "unknown/type"
	}
	return fmt.Sprintf("Selected: %s • %s • %d KB", name, mimeType, sizeKB(sizeBytes))
}

// Submit emits form_submit and resets the tracker. time_to_submit_seconds is
// nil when the form was never focused.
func (f *FormTracker) Submit(ctx context.Context) Event {
	var elapsed any
	if f.started {
		elapsed = int(math.Round(f.dl.now().Sub(f.startedAt).Seconds()))
	}

	e := f.dl.Push(ctx, "form_submit", map[string]any{
		"form_id":                f.formID,
		"form_fields_count":      f.fieldsCount,
		"time_to_submit_seconds": elapsed,
	})

	f.started = false
	f.startedAt = time.Time{}
	return e
}

func sizeKB(sizeBytes int64) int64 {
	return int64(math.Round(float64(sizeBytes) / 1024))
}
