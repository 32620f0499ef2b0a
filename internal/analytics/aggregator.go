package analytics

import (
	"context"
	"sort"
	"time"

	"checkclient/internal/checklist"
)

// placeholderResponseHours stands in for a real created-to-responded duration;
// the records only carry one updatedAt, not a submission history.
const placeholderResponseHours = 24

type StatusCounts struct {
	Pending   int `json:"pending"`
	InReview  int `json:"inReview"`
	Responded int `json:"responded"`
	Completed int `json:"completed"`
	Canceled  int `json:"canceled"`
}

// Growth compares the requested window with the immediately preceding one of
// equal length, as clamped percentages.
type Growth struct {
	TotalChecklists int `json:"totalChecklists"`
	CompletionRate  int `json:"completionRate"`
	ResponseTime    int `json:"responseTime"`
	AbandonmentRate int `json:"abandonmentRate"`
}

type MonthPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type ServiceRate struct {
	ServiceType string `json:"serviceType"`
	Rate        int    `json:"rate"`
}

type Metrics struct {
	TotalChecklists   int          `json:"totalChecklists"`
	StatusCounts      StatusCounts `json:"statusCounts"`
	CompletionRate    int          `json:"completionRate"`
	AbandonmentRate   int          `json:"abandonmentRate"`
	ResponseTimeHours int          `json:"responseTimeHours"`
	Growth            Growth       `json:"growth"`

	CreatedByMonth          []MonthPoint  `json:"createdByMonth"`
	CompletionRateByMonth   []MonthPoint  `json:"completionRateByMonth"`
	CompletionRateByService []ServiceRate `json:"completionRateByService"`
}

// Aggregator recomputes dashboard metrics from the current record set on every
// call. It is a pure function of the store contents and the clock; no state,
// no writes, no randomness.
type Aggregator struct {
	store checklist.Store

	now func() time.Time
}

func NewAggregator(store checklist.Store) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

type windowStats struct {
	total        StatusCounts
	count        int
	completion   int
	abandonment  int
	responseTime int
}

func statsFor(items []checklist.Checklist, from, to time.Time, abandonedBefore time.Time) windowStats {
	var w windowStats
	for _, c := range items {
		if c.CreatedAt.Before(from) || c.CreatedAt.After(to) {
			continue
		}
		w.count++
		switch c.Status {
		case checklist.StatusPending:
			w.total.Pending++
			if c.CreatedAt.Before(abandonedBefore) {
				w.abandonment++
			}
		case checklist.StatusInReview:
			w.total.InReview++
		case checklist.StatusResponded:
			w.total.Responded++
		case checklist.StatusCompleted:
			w.total.Completed++
		case checklist.StatusCanceled:
			w.total.Canceled++
		}
	}
	if w.count > 0 {
		w.completion = roundPct(w.total.Completed+w.total.Responded, w.count)
		w.abandonment = roundPct(w.abandonment, w.count)
	} else {
		w.abandonment = 0
	}
	if w.total.Completed > 0 || w.total.Responded > 0 {
		w.responseTime = placeholderResponseHours
	}
	return w
}

func roundPct(part, total int) int {
	return int(float64(part)/float64(total)*100 + 0.5)
}

// growthPct is the deterministic window-over-window delta:
// 100 * (current - previous) / max(previous, 1), clamped to [lo, hi].
func growthPct(cur, prev, lo, hi int) int {
	base := prev
	if base < 1 {
		base = 1
	}
	g := 100 * (cur - prev) / base
	if g < lo {
		return lo
	}
	if g > hi {
		return hi
	}
	return g
}

func (a *Aggregator) Compute(ctx context.Context, windowDays int, category string) (*Metrics, error) {
	if windowDays <= 0 {
		windowDays = 30
	}

	all, err := a.store.List(ctx, checklist.Filter{})
	if err != nil {
		return nil, err
	}
	if category != "" && category != "all" {
		filtered := all[:0]
		for _, c := range all {
			if c.ServiceType == category {
				filtered = append(filtered, c)
			}
		}
		all = filtered
	}

	now := a.now()
	from := now.AddDate(0, 0, -windowDays)
	prevFrom := from.AddDate(0, 0, -windowDays)
	weekAgo := now.AddDate(0, 0, -7)

	cur := statsFor(all, from, now, weekAgo)
	prev := statsFor(all, prevFrom, from.Add(-time.Nanosecond), weekAgo)

	m := &Metrics{
		TotalChecklists:   cur.count,
		StatusCounts:      cur.total,
		CompletionRate:    cur.completion,
		AbandonmentRate:   cur.abandonment,
		ResponseTimeHours: cur.responseTime,
		Growth: Growth{
			TotalChecklists: growthPct(cur.count, prev.count, -50, 100),
			CompletionRate:  growthPct(cur.completion, prev.completion, -20, 30),
			ResponseTime:    growthPct(cur.responseTime, prev.responseTime, -20, 30),
			AbandonmentRate: growthPct(cur.abandonment, prev.abandonment, -20, 30),
		},
		CreatedByMonth:          []MonthPoint{},
		CompletionRateByMonth:   []MonthPoint{},
		CompletionRateByService: []ServiceRate{},
	}

	if cur.count == 0 {
		return m, nil
	}

	m.CreatedByMonth, m.CompletionRateByMonth = monthlySeries(all, from, now)
	m.CompletionRateByService = serviceRates(all, from, now)
	return m, nil
}

const monthSeriesLen = 6

// monthlySeries buckets the windowed checklists by calendar month over the last
// six months: created count per month, and the completion rate of checklists
// created in that month.
func monthlySeries(items []checklist.Checklist, from, to time.Time) ([]MonthPoint, []MonthPoint) {
	type bucket struct {
		created   int
		completed int
	}
	buckets := make([]bucket, monthSeriesLen)

	monthIndex := func(t time.Time) int {
		dy := to.Year() - t.Year()
		dm := int(to.Month()) - int(t.Month()) + dy*12
		if dm < 0 || dm >= monthSeriesLen {
			return -1
		}
		return monthSeriesLen - 1 - dm
	}

	for _, c := range items {
		if c.CreatedAt.Before(from) || c.CreatedAt.After(to) {
			continue
		}
		i := monthIndex(c.CreatedAt)
		if i < 0 {
			continue
		}
		buckets[i].created++
		if c.Status == checklist.StatusCompleted || c.Status == checklist.StatusResponded {
			buckets[i].completed++
		}
	}

	created := make([]MonthPoint, monthSeriesLen)
	rates := make([]MonthPoint, monthSeriesLen)
	for i := 0; i < monthSeriesLen; i++ {
		mo := int(to.Month()) - (monthSeriesLen - 1 - i)
		for mo <= 0 {
			mo += 12
		}
		label := time.Month(mo).String()[:3]
		created[i] = MonthPoint{Label: label, Value: buckets[i].created}
		rate := 0
		if buckets[i].created > 0 {
			rate = roundPct(buckets[i].completed, buckets[i].created)
		}
		rates[i] = MonthPoint{Label: label, Value: rate}
	}
	return created, rates
}

func serviceRates(items []checklist.Checklist, from, to time.Time) []ServiceRate {
	type tally struct{ total, done int }
	byService := map[string]*tally{}

	for _, c := range items {
		if c.CreatedAt.Before(from) || c.CreatedAt.After(to) {
			continue
		}
		t := byService[c.ServiceType]
		if t == nil {
			t = &tally{}
			byService[c.ServiceType] = t
		}
		t.total++
		if c.Status == checklist.StatusCompleted || c.Status == checklist.StatusResponded {
			t.done++
		}
	}

	names := make([]string, 0, len(byService))
	for name := range byService {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ServiceRate, 0, len(names))
	for _, name := range names {
		t := byService[name]
		out = append(out, ServiceRate{ServiceType: name, Rate: roundPct(t.done, t.total)})
	}
	return out
}
