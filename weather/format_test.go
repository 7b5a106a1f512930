package weather_test

import (
	"encoding/json"
	"testing"

	"github.com/nimbus-tools/weather-mcp/weather"
)

var (
	london = weather.Record{
		CityName:              "London",
		TemperatureCelsius:    15,
		TemperatureFahrenheit: 59,
		Condition:             "Clouds",
		Humidity:              72,
		Description:           "overcast clouds",
	}
	paris = weather.Record{
		CityName:              "Paris",
		TemperatureCelsius:    22.5,
		TemperatureFahrenheit: 72.5,
		Condition:             "Clear",
		Humidity:              40,
		Description:           "clear sky",
	}
)

func TestFormatReport(t *testing.T) {
	t.Parallel()

	want := "Current Weather for London:\n" +
		"Temperature: 15.0°C (59.0°F)\n" +
		"Condition: Clouds\n" +
		"Description: overcast clouds\n" +
		"Humidity: 72%\n"
	if got := weather.FormatReport(london); got != want {
		t.Errorf("FormatReport =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	want := "Current weather in Paris:\n" +
		"Temperature: 22.5°C (72.5°F)\n" +
		"Condition: Clear - clear sky\n" +
		"Humidity: 40%"
	if got := weather.FormatSummary(paris); got != want {
		t.Errorf("FormatSummary =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatComparison(t *testing.T) {
	t.Parallel()

	want := "Weather Comparison:\n" +
		"\nLondon:\n- Temperature: 15.0°C\n- Condition: Clouds\n- Humidity: 72%\n" +
		"\nParis:\n- Temperature: 22.5°C\n- Condition: Clear\n- Humidity: 40%\n" +
		"\nTemperature difference: 7.5°C"
	if got := weather.FormatComparison(london, paris); got != want {
		t.Errorf("FormatComparison =\n%s\nwant\n%s", got, want)
	}
	// The difference is absolute.
	if got, want := weather.FormatComparison(paris, london), "\nTemperature difference: 7.5°C"; got[len(got)-len(want):] != want {
		t.Errorf("reversed comparison ends with %q", got[len(got)-len(want):])
	}
}

func TestFormatJSON(t *testing.T) {
	t.Parallel()

	t.Run("record", func(t *testing.T) {
		t.Parallel()
		got, err := weather.FormatJSON("Paris", paris, nil)
		if err != nil {
			t.Fatal(err)
		}
		want := `{
  "city_name": "Paris",
  "temperature_celsius": 22.5,
  "temperature_fahrenheit": 72.5,
  "condition": "Clear",
  "humidity": 40,
  "description": "clear sky"
}`
		if got != want {
			t.Errorf("FormatJSON =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		got, err := weather.FormatJSON("Atlantis", weather.Record{}, &weather.CityNotFoundError{City: "Atlantis"})
		if err != nil {
			t.Fatal(err)
		}
		var resp weather.ErrorResponse
		if err := json.Unmarshal([]byte(got), &resp); err != nil {
			t.Fatalf("invalid JSON %q: %v", got, err)
		}
		want := weather.ErrorResponse{Error: "City 'Atlantis' not found", City: "Atlantis", Success: false}
		if resp != want {
			t.Errorf("ErrorResponse = %+v, want %+v", resp, want)
		}

		var raw map[string]any
		json.Unmarshal([]byte(got), &raw)
		if v, ok := raw["success"]; !ok || v != false {
			t.Errorf("success = %v, present %v", v, ok)
		}
	})
}
