package timer

import (
	"fmt"
	"strings"
	"time"
)

// MarkPoint is one named phase of an invocation and how long it took.
type MarkPoint struct {
	Tag   string
	Delta time.Duration
}

// XTimer records phase durations of a single invocation. It is not safe for
// concurrent use; every invocation owns its timer.
type XTimer struct {
	bornTime   time.Time
	latestTime time.Time
	points     []MarkPoint
}

func NewXTimer() *XTimer {
	now := time.Now()
	return &XTimer{
		bornTime:   now,
		latestTime: now,
	}
}

// Mark closes the current phase under tag.
func (t *XTimer) Mark(tag string) {
	now := time.Now()
	t.points = append(t.points, MarkPoint{Tag: tag, Delta: now.Sub(t.latestTime)})
	t.latestTime = now
}

func (t *XTimer) Points() []MarkPoint {
	out := make([]MarkPoint, len(t.points))
	copy(out, t.points)
	return out
}

// Elapsed returns the time since the timer was created.
func (t *XTimer) Elapsed() time.Duration {
	return time.Since(t.bornTime)
}

// Print renders the marks as "tag:1.23ms,...,total:4.56ms".
func (t *XTimer) Print() string {
	msg := make([]string, 0, len(t.points)+1)
	for _, point := range t.points {
		msg = append(msg, fmt.Sprintf("%s:%.2fms", point.Tag, ms(point.Delta)))
	}
	msg = append(msg, fmt.Sprintf("total:%.2fms", ms(t.Elapsed())))
	return strings.Join(msg, ",")
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
