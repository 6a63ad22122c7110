package ingest

import "github.com/OldStager01/energy-forecaster/pkg/models"

// Fill returns a copy of points with missing loads replaced by the mean of
// the nearest valid neighbours on each side, or by the single neighbour when
// only one side has a value. Points are patched in order, so a repaired point
// serves as a neighbour for the ones after it. The input is never modified.
func Fill(points []models.TimeSeriesPoint) []models.TimeSeriesPoint {
	filled := make([]models.TimeSeriesPoint, len(points))
	for i, p := range points {
		filled[i] = p.Clone()
	}

	for i := range filled {
		if filled[i].HasLoad() {
			continue
		}

		prev, hasPrev := 0.0, false
		for j := i - 1; j >= 0; j-- {
			if filled[j].HasLoad() {
				prev, hasPrev = filled[j].Load, true
				break
			}
		}

		next, hasNext := 0.0, false
		for j := i + 1; j < len(filled); j++ {
			if filled[j].HasLoad() {
				next, hasNext = filled[j].Load, true
				break
			}
		}

		switch {
		case hasPrev && hasNext:
			filled[i].Load = (prev + next) / 2
		case hasPrev:
			filled[i].Load = prev
		case hasNext:
			filled[i].Load = next
		}
	}

	return filled
}

// CountMissing reports how many points lack a valid load.
func CountMissing(points []models.TimeSeriesPoint) int {
	missing := 0
	for _, p := range points {
		if !p.HasLoad() {
			missing++
		}
	}
	return missing
}
