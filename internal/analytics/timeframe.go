package analytics

import (
	"fmt"
	"time"

	"suq-dashboard-service/internal/model"
)

// Timeframe is a symbolic reporting period resolved against a concrete clock.
type Timeframe string

const (
	TimeframeToday   Timeframe = "today"
	TimeframeWeek    Timeframe = "week"
	TimeframeMonth   Timeframe = "month"
	TimeframeQuarter Timeframe = "quarter"
	TimeframeYear    Timeframe = "year"
	TimeframeTotal   Timeframe = "total"
)

func ParseTimeframe(v string) (Timeframe, error) {
	switch Timeframe(v) {
	case TimeframeToday, TimeframeWeek, TimeframeMonth, TimeframeQuarter,
		TimeframeYear, TimeframeTotal:
		return Timeframe(v), nil
	case "":
		return TimeframeTotal, nil
	}
	return "", fmt.Errorf("unknown timeframe %q", v)
}

type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Range resolves the timeframe to a concrete window ending at now. A nil
// result means no filtering (total). The start bound uses calendar offsets,
// so month/quarter/year windows vary with month length.
func (tf Timeframe) Range(now time.Time) *DateRange {
	switch tf {
	case TimeframeToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return &DateRange{Start: start, End: now}
	case TimeframeWeek:
		return &DateRange{Start: now.AddDate(0, 0, -7), End: now}
	case TimeframeMonth:
		return &DateRange{Start: now.AddDate(0, -1, 0), End: now}
	case TimeframeQuarter:
		return &DateRange{Start: now.AddDate(0, -3, 0), End: now}
	case TimeframeYear:
		return &DateRange{Start: now.AddDate(-1, 0, 0), End: now}
	default:
		return nil
	}
}

// PreviousRange resolves the window immediately preceding Range(now), used
// for period-over-period growth. For today the comparison is yesterday's
// same span; other timeframes shift the start bound back by the matching
// calendar offset and end where the current window starts. Calendar-month
// arithmetic means adjacent windows are approximate near month-length edges.
func (tf Timeframe) PreviousRange(now time.Time) *DateRange {
	current := tf.Range(now)
	if current == nil {
		return nil
	}

	switch tf {
	case TimeframeToday:
		return &DateRange{
			Start: current.Start.AddDate(0, 0, -1),
			End:   current.End.AddDate(0, 0, -1),
		}
	case TimeframeWeek:
		return &DateRange{Start: current.Start.AddDate(0, 0, -7), End: current.Start}
	case TimeframeMonth:
		return &DateRange{Start: current.Start.AddDate(0, -1, 0), End: current.Start}
	case TimeframeQuarter:
		return &DateRange{Start: current.Start.AddDate(0, -3, 0), End: current.Start}
	case TimeframeYear:
		return &DateRange{Start: current.Start.AddDate(-1, 0, 0), End: current.Start}
	default:
		return nil
	}
}

// FilterOrders restricts orders to those whose order date falls inside the
// timeframe window, bounds inclusive. Total returns the input unchanged.
func FilterOrders(orders []model.Order, tf Timeframe, now time.Time) []model.Order {
	rng := tf.Range(now)
	if rng == nil {
		return orders
	}
	return filterByRange(orders, *rng)
}

func filterByRange(orders []model.Order, rng DateRange) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, order := range orders {
		if rng.Contains(order.OrderDate) {
			out = append(out, order)
		}
	}
	return out
}
