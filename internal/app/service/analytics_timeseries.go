package service

import (
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
)

type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return p, nil
	case "":
		return PeriodDay, nil
	default:
		return "", apperrors.Validation(apperrors.AnalyticsInvalidPeriod,
			"period must be one of day, week, month, quarter, year",
			map[string]string{"period": "invalid"})
	}
}

// PeriodStart truncates t to the start of its bucket in UTC. Weeks start on Monday.
func PeriodStart(t time.Time, p Period) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	switch p {
	case PeriodWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case PeriodQuarter:
		return time.Date(y, ((m-1)/3)*3+1, 1, 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

func nextPeriod(start time.Time, p Period) time.Time {
	switch p {
	case PeriodWeek:
		return start.AddDate(0, 0, 7)
	case PeriodMonth:
		return start.AddDate(0, 1, 0)
	case PeriodQuarter:
		return start.AddDate(0, 3, 0)
	case PeriodYear:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// GroupUsagesByPeriod counts events per bucket from the earliest to the latest event,
// zero-filling empty buckets
func GroupUsagesByPeriod(events []model.UsageEvent, period Period) []int {
	if len(events) == 0 {
		return []int{}
	}
	first, last := events[0].Timestamp, events[0].Timestamp
	for _, e := range events[1:] {
		if e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	_, counts := bucketEvents(events, period, first, last)
	return counts
}

// bucketEvents counts events into every bucket between from and to inclusive.
// Events outside the range are ignored.
func bucketEvents(events []model.UsageEvent, period Period, from, to time.Time) ([]time.Time, []int) {
	start := PeriodStart(from, period)
	end := PeriodStart(to, period)
	if end.Before(start) {
		return []time.Time{}, []int{}
	}

	var starts []time.Time
	index := make(map[int64]int)
	for b := start; !b.After(end); b = nextPeriod(b, period) {
		index[b.Unix()] = len(starts)
		starts = append(starts, b)
	}

	counts := make([]int, len(starts))
	for _, e := range events {
		if i, ok := index[PeriodStart(e.Timestamp, period).Unix()]; ok {
			counts[i]++
		}
	}
	return starts, counts
}

type GrowthSeries struct {
	Daily   []int `json:"daily"`
	Weekly  []int `json:"weekly"`
	Monthly []int `json:"monthly"`
}

// GrowthRates are percentages. A series that grows from zero reports 100 and is listed in Unbounded.
type GrowthRates struct {
	DailyGrowth   float64  `json:"daily_growth"`
	WeeklyGrowth  float64  `json:"weekly_growth"`
	MonthlyGrowth float64  `json:"monthly_growth"`
	Unbounded     []string `json:"unbounded"`
}

const unboundedGrowth = 100.0

func CalculateGrowthRates(series GrowthSeries) GrowthRates {
	rates := GrowthRates{Unbounded: []string{}}

	var unbounded bool
	if rates.DailyGrowth, unbounded = growthRate(series.Daily); unbounded {
		rates.Unbounded = append(rates.Unbounded, "daily")
	}
	if rates.WeeklyGrowth, unbounded = growthRate(series.Weekly); unbounded {
		rates.Unbounded = append(rates.Unbounded, "weekly")
	}
	if rates.MonthlyGrowth, unbounded = growthRate(series.Monthly); unbounded {
		rates.Unbounded = append(rates.Unbounded, "monthly")
	}
	return rates
}

// growthRate is (last-first)/first*100 over the series end points
func growthRate(values []int) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	first, last := values[0], values[len(values)-1]
	if first == 0 {
		if last == 0 {
			return 0, false
		}
		return unboundedGrowth, true
	}
	return round2(float64(last-first) / float64(first) * 100), false
}

// Ratio bands for alert severity (observed/baseline)
const (
	lowSeverityMaxRatio    = 1.1
	mediumSeverityMaxRatio = 1.5
	highSeverityMaxRatio   = 2.0
)

// higherIsBetter metrics alert when they fall, so their ratio is inverted
var higherIsBetter = map[string]bool{
	"success_rate": true,
	"availability": true,
	"usage_volume": true,
}

func CalculateAlertSeverity(metricName string, baseline, observed float64) model.AlertSeverity {
	var ratio float64
	if higherIsBetter[metricName] {
		if observed <= 0 {
			if baseline <= 0 {
				return model.SeverityLow
			}
			return model.SeverityCritical
		}
		ratio = baseline / observed
	} else {
		if baseline <= 0 {
			if observed <= 0 {
				return model.SeverityLow
			}
			return model.SeverityCritical
		}
		ratio = observed / baseline
	}

	switch {
	case ratio <= lowSeverityMaxRatio:
		return model.SeverityLow
	case ratio <= mediumSeverityMaxRatio:
		return model.SeverityMedium
	case ratio <= highSeverityMaxRatio:
		return model.SeverityHigh
	default:
		return model.SeverityCritical
	}
}
