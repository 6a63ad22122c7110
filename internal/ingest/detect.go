package ingest

import "strings"

// Columns holds the headers mapped to each semantic role. An empty string
// means the role was not found.
type Columns struct {
	Timestamp   string `json:"timestampCol"`
	Load        string `json:"loadCol"`
	Temperature string `json:"temperatureCol"`
	Humidity    string `json:"humidityCol"`
}

func (c Columns) Valid() bool {
	return c.Timestamp != "" && c.Load != ""
}

// DetectColumns assigns roles by case-insensitive substring match. The first
// header in order wins for each role.
func DetectColumns(headers []string) Columns {
	return Columns{
		Timestamp:   findColumn(headers, "timestamp", "time", "date"),
		Load:        findColumn(headers, "load", "power", "demand"),
		Temperature: findColumn(headers, "temp"),
		Humidity:    findColumn(headers, "humidity", "humid"),
	}
}

func findColumn(headers []string, needles ...string) string {
	for _, header := range headers {
		lower := strings.ToLower(header)
		for _, needle := range needles {
			if strings.Contains(lower, needle) {
				return header
			}
		}
	}
	return ""
}
