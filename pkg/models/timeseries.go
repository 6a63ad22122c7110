package models

import (
	"math"
	"time"
)

// TimeSeriesPoint is one canonical observation. Load is NaN while a value is
// missing; after gap filling it is always finite.
type TimeSeriesPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Load        float64   `json:"load"`
	Temperature *float64  `json:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty"`
	SolarPower  *float64  `json:"solar_power,omitempty"`
	WindPower   *float64  `json:"wind_power,omitempty"`
	IsHoliday   *bool     `json:"is_holiday,omitempty"`
}

func (p TimeSeriesPoint) HasLoad() bool {
	return !math.IsNaN(p.Load) && !math.IsInf(p.Load, 0)
}

// Clone returns a copy that shares no pointers with p.
func (p TimeSeriesPoint) Clone() TimeSeriesPoint {
	c := p
	c.Temperature = cloneFloat(p.Temperature)
	c.Humidity = cloneFloat(p.Humidity)
	c.SolarPower = cloneFloat(p.SolarPower)
	c.WindPower = cloneFloat(p.WindPower)
	if p.IsHoliday != nil {
		v := *p.IsHoliday
		c.IsHoliday = &v
	}
	return c
}

// FeaturePoint is a TimeSeriesPoint with calendar, cyclical, lag and rolling
// features. Lag and rolling fields are nil until enough history exists.
type FeaturePoint struct {
	TimeSeriesPoint

	Hour      int  `json:"hour"`
	DayOfWeek int  `json:"day_of_week"`
	Month     int  `json:"month"`
	IsWeekend bool `json:"is_weekend"`

	HourSin  float64 `json:"hour_sin"`
	HourCos  float64 `json:"hour_cos"`
	DaySin   float64 `json:"day_sin"`
	DayCos   float64 `json:"day_cos"`
	MonthSin float64 `json:"month_sin"`
	MonthCos float64 `json:"month_cos"`

	Lag1   *float64 `json:"lag_1,omitempty"`
	Lag24  *float64 `json:"lag_24,omitempty"`
	Lag168 *float64 `json:"lag_168,omitempty"`

	Rolling3h   *float64 `json:"rolling_3h,omitempty"`
	Rolling24h  *float64 `json:"rolling_24h,omitempty"`
	Rolling168h *float64 `json:"rolling_168h,omitempty"`
}

// DatasetInfo summarises a point sequence for display.
type DatasetInfo struct {
	Filename       string   `json:"filename"`
	RowCount       int      `json:"rowCount"`
	StartDate      string   `json:"startDate"`
	EndDate        string   `json:"endDate"`
	Frequency      string   `json:"frequency"`
	Columns        []string `json:"columns"`
	MissingValues  int      `json:"missingValues"`
	HasLoad        bool     `json:"hasLoad"`
	HasTemperature bool     `json:"hasTemperature"`
	HasHumidity    bool     `json:"hasHumidity"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
