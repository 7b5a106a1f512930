package weather

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// FormatReport renders r as the multi-line report served by the weather resource.
func FormatReport(r Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current Weather for %s:\n", r.CityName)
	fmt.Fprintf(&b, "Temperature: %.1f°C (%.1f°F)\n", r.TemperatureCelsius, r.TemperatureFahrenheit)
	fmt.Fprintf(&b, "Condition: %s\n", r.Condition)
	fmt.Fprintf(&b, "Description: %s\n", r.Description)
	fmt.Fprintf(&b, "Humidity: %d%%\n", r.Humidity)
	return b.String()
}

// FormatSummary renders r as a short text answer.
func FormatSummary(r Record) string {
	return fmt.Sprintf("Current weather in %s:\nTemperature: %.1f°C (%.1f°F)\nCondition: %s - %s\nHumidity: %d%%",
		r.CityName, r.TemperatureCelsius, r.TemperatureFahrenheit, r.Condition, r.Description, r.Humidity)
}

// FormatComparison renders a side by side comparison of two records.
func FormatComparison(a, b Record) string {
	var sb strings.Builder
	sb.WriteString("Weather Comparison:\n")
	for _, r := range []Record{a, b} {
		fmt.Fprintf(&sb, "\n%s:\n", r.CityName)
		fmt.Fprintf(&sb, "- Temperature: %.1f°C\n", r.TemperatureCelsius)
		fmt.Fprintf(&sb, "- Condition: %s\n", r.Condition)
		fmt.Fprintf(&sb, "- Humidity: %d%%\n", r.Humidity)
	}
	fmt.Fprintf(&sb, "\nTemperature difference: %.1f°C", math.Abs(a.TemperatureCelsius-b.TemperatureCelsius))
	return sb.String()
}

// ErrorResponse is the JSON object returned in place of a Record when a fetch fails.
type ErrorResponse struct {
	Error   string `json:"error"`
	City    string `json:"city"`
	Success bool   `json:"success"`
}

// FormatJSON renders the outcome of a fetch as indented JSON: the record on success,
// an ErrorResponse otherwise.
func FormatJSON(city string, r Record, err error) (string, error) {
	var v any = r
	if err != nil {
		v = ErrorResponse{Error: err.Error(), City: city, Success: false}
	}
	b, merr := json.MarshalIndent(v, "", "  ")
	if merr != nil {
		return "", fmt.Errorf("failed to marshal weather data: %w", merr)
	}
	return string(b), nil
}
