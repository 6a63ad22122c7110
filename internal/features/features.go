// Package features derives calendar, cyclical, lag and rolling-average
// predictors from a gap-filled load series.
package features

import (
	"math"
	"time"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

var (
	lags           = []int{1, 24, 168}
	rollingWindows = []int{3, 24, 168}
)

// Engineer returns one FeaturePoint per input point in the same order. Lag
// and rolling values only ever look at the current and earlier points.
// Calendar fields are read in loc (time.Local when nil).
func Engineer(points []models.TimeSeriesPoint, loc *time.Location) []models.FeaturePoint {
	if loc == nil {
		loc = time.Local
	}

	windows := make([]*window, len(rollingWindows))
	for i, size := range rollingWindows {
		windows[i] = newWindow(size)
	}

	out := make([]models.FeaturePoint, len(points))
	for i, p := range points {
		fp := models.FeaturePoint{TimeSeriesPoint: p.Clone()}
		applyCalendar(&fp, p.Timestamp.In(loc))

		for _, k := range lags {
			if i >= k {
				setLag(&fp, k, points[i-k].Load)
			}
		}

		for j, w := range windows {
			w.push(p.Load)
			if w.full() {
				setRolling(&fp, rollingWindows[j], w.mean())
			}
		}

		out[i] = fp
	}

	return out
}

func applyCalendar(fp *models.FeaturePoint, t time.Time) {
	fp.Hour = t.Hour()
	fp.DayOfWeek = int(t.Weekday())
	fp.Month = int(t.Month()) - 1
	fp.IsWeekend = fp.DayOfWeek == 0 || fp.DayOfWeek == 6

	fp.HourSin, fp.HourCos = cyclical(fp.Hour, 24)
	fp.DaySin, fp.DayCos = cyclical(fp.DayOfWeek, 7)
	fp.MonthSin, fp.MonthCos = cyclical(fp.Month, 12)
}

func cyclical(value, period int) (float64, float64) {
	rad := 2 * math.Pi * float64(value) / float64(period)
	return math.Sin(rad), math.Cos(rad)
}

func setLag(fp *models.FeaturePoint, k int, v float64) {
	switch k {
	case 1:
		fp.Lag1 = models.Float(v)
	case 24:
		fp.Lag24 = models.Float(v)
	case 168:
		fp.Lag168 = models.Float(v)
	}
}

func setRolling(fp *models.FeaturePoint, size int, v float64) {
	switch size {
	case 3:
		fp.Rolling3h = models.Float(v)
	case 24:
		fp.Rolling24h = models.Float(v)
	case 168:
		fp.Rolling168h = models.Float(v)
	}
}
