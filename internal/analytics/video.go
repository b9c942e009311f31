package analytics

import (
	"context"
	"math"
)

const defaultVideoTitle = "Featured video"

// VideoTracker reports playback and quartile progress for one video element.
type VideoTracker struct {
	dl           *DataLayer
	title        string
	src          string
	lastQuartile int
}

func (d *DataLayer) NewVideoTracker(title, src string) *VideoTracker {
	if title == "" {
		title = defaultVideoTitle
	}
	if src == "" {
		src = "unknown"
	}
	return &VideoTracker{dl: d, title: title, src: src}
}

func (v *VideoTracker) Play(ctx context.Context) Event {
	return v.dl.Push(ctx, "video_play", map[string]any{
		"video_title": v.title,
		"video_src":   v.src,
	})
}

func (v *VideoTracker) Pause(ctx context.Context, currentTime float64) Event {
	return v.dl.Push(ctx, "video_pause", map[string]any{
		"video_title":      v.title,
		"current_time_sec": int(math.Floor(currentTime)),
	})
}

func (v *VideoTracker) Ended(ctx context.Context) Event {
	return v.dl.Push(ctx, "video_complete", map[string]any{
		"video_title": v.title,
	})
}

// TimeUpdate emits video_progress when playback crosses into a new quartile
// (25, 50, 75). Unknown or zero durations are ignored.
func (v *VideoTracker) TimeUpdate(ctx context.Context, currentTime, duration float64) Event {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil
	}
	q := quartile(currentTime / duration * 100)
	if q == 0 || q == v.lastQuartile {
		return nil
	}
	v.lastQuartile = q
	return v.dl.Push(ctx, "video_progress", map[string]any{
		"video_title":    v.title,
		"percent_viewed": q,
	})
}

func quartile(pct float64) int {
	switch {
	case pct >= 75:
		return 75
	case pct >= 50:
		return 50
	case pct >= 25:
		return 25
	default:
		return 0
	}
}
