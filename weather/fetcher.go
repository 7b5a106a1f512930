package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// PlaceholderAPIKey is the documented placeholder credential.
	// A data source carrying exactly this value serves mock records.
	PlaceholderAPIKey = "your_api_key_here"

	// DefaultBaseURL is the OpenWeatherMap current weather endpoint.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"
)

// DataSource selects where weather records come from. It is built once at startup
// and never changes afterwards.
type DataSource struct {
	// APIKey is the upstream credential. PlaceholderAPIKey selects mock mode.
	APIKey string
	// BaseURL is the upstream endpoint. DefaultBaseURL is used if empty.
	BaseURL string
}

// Mock reports whether the data source serves mock records.
//
// Only the placeholder literal selects mock mode. An empty credential goes to the
// live upstream and fails there.
func (d DataSource) Mock() bool {
	return d.APIKey == PlaceholderAPIKey
}

// Doer sends an HTTP request and returns its response. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Record is a normalized current weather observation for a city.
type Record struct {
	CityName              string  `json:"city_name"`
	TemperatureCelsius    float64 `json:"temperature_celsius"`
	TemperatureFahrenheit float64 `json:"temperature_fahrenheit"`
	Condition             string  `json:"condition"`
	Humidity              int     `json:"humidity"`
	Description           string  `json:"description"`
}

// Fetcher retrieves weather records from a DataSource.
// A Fetcher holds no mutable state and is safe for concurrent use.
type Fetcher struct {
	source DataSource
	client Doer
}

// NewFetcher creates a new Fetcher. If client is nil, http.DefaultClient is used.
func NewFetcher(source DataSource, client Doer) *Fetcher {
	if source.BaseURL == "" {
		source.BaseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{source: source, client: client}
}

// Source returns the data source of the fetcher.
func (f *Fetcher) Source() DataSource { return f.source }

// Fetch returns the current weather for city.
//
// The returned error is one of *CityNotFoundError, *UpstreamError or *TransportError.
// In mock mode Fetch never fails and performs no network I/O.
func (f *Fetcher) Fetch(ctx context.Context, city string) (Record, error) {
	if f.source.Mock() {
		return mockRecord(city), nil
	}
	return f.fetchLive(ctx, city)
}

func mockRecord(city string) Record {
	return Record{
		CityName:              city,
		TemperatureCelsius:    22.5,
		TemperatureFahrenheit: 72.5,
		Condition:             "Partly Cloudy",
		Humidity:              65,
		Description:           "Mock weather data - please set OPENWEATHER_API_KEY environment variable",
	}
}

// currentWeatherResponse is the subset of the upstream payload the fetcher reads.
// Pointers tell missing fields apart from zero values.
type currentWeatherResponse struct {
	Name *string `json:"name"`
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

func (f *Fetcher) fetchLive(ctx context.Context, city string) (Record, error) {
	u, err := url.Parse(f.source.BaseURL)
	if err != nil {
		return Record{}, &TransportError{Err: fmt.Errorf("invalid base URL: %w", err)}
	}
	q := u.Query()
	q.Set("q", city)
	q.Set("appid", f.source.APIKey)
	q.Set("units", "metric")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Record{}, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Record{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Record{}, &CityNotFoundError{City: city}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Record{}, &UpstreamError{StatusCode: resp.StatusCode}
	}

	var payload currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Record{}, &TransportError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return payload.record()
}

func (p *currentWeatherResponse) record() (Record, error) {
	switch {
	case p.Name == nil:
		return Record{}, &TransportError{Err: errMissingField("name")}
	case p.Main.Temp == nil:
		return Record{}, &TransportError{Err: errMissingField("main.temp")}
	case p.Main.Humidity == nil:
		return Record{}, &TransportError{Err: errMissingField("main.humidity")}
	case len(p.Weather) == 0:
		return Record{}, &TransportError{Err: errMissingField("weather[0]")}
	}

	celsius := round1(*p.Main.Temp)
	return Record{
		CityName:              *p.Name,
		TemperatureCelsius:    celsius,
		TemperatureFahrenheit: CelsiusToFahrenheit(celsius),
		Condition:             p.Weather[0].Main,
		Humidity:              *p.Main.Humidity,
		Description:           p.Weather[0].Description,
	}, nil
}

func errMissingField(name string) error {
	return fmt.Errorf("malformed response: missing %q", name)
}

// CelsiusToFahrenheit converts c to Fahrenheit, rounded to one decimal place.
func CelsiusToFahrenheit(c float64) float64 {
	return round1(c*9/5 + 32)
}

// round1 rounds v to one decimal place. Formatting rounds the exact binary value
// and breaks true ties to even, so 8.45 becomes 8.4 and 15.25 becomes 15.2.
func round1(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}
