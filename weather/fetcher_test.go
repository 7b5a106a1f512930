package weather_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/nimbus-tools/weather-mcp/weather"
)

const londonPayload = `{
  "coord": {"lon": -0.1257, "lat": 51.5085},
  "weather": [{"id": 804, "main": "Clouds", "description": "overcast clouds", "icon": "04d"}],
  "main": {"temp": 15.04, "feels_like": 14.5, "pressure": 1012, "humidity": 72},
  "name": "London",
  "cod": 200
}`

// countingTransport fails every request and counts how many were attempted.
type countingTransport struct{ calls atomic.Int32 }

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return nil, errors.New("network disabled")
}

// newUpstream starts a stub upstream answering every request with status and body.
// Requests are sent on got if it is not nil.
func newUpstream(t *testing.T, status int, body string, got chan<- *http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			got <- r.Clone(context.Background())
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func liveFetcher(baseURL string) *weather.Fetcher {
	return weather.NewFetcher(weather.DataSource{APIKey: "test-key", BaseURL: baseURL}, nil)
}

func TestDataSource_Mock(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		key  string
		want bool
	}{
		"placeholder": {key: weather.PlaceholderAPIKey, want: true},
		"real key":    {key: "abc123", want: false},
		"empty":       {key: "", want: false},
		"padded":      {key: " " + weather.PlaceholderAPIKey, want: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := (weather.DataSource{APIKey: tc.key}).Mock(); got != tc.want {
				t.Errorf("Mock() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFetch_Mock(t *testing.T) {
	t.Parallel()

	rt := &countingTransport{}
	f := weather.NewFetcher(weather.DataSource{APIKey: weather.PlaceholderAPIKey}, &http.Client{Transport: rt})

	for _, city := range []string{"Paris", "", "São Paulo", "Atlantis"} {
		rec, err := f.Fetch(context.Background(), city)
		if err != nil {
			t.Fatalf("Fetch(%q): %v", city, err)
		}
		want := weather.Record{
			CityName:              city,
			TemperatureCelsius:    22.5,
			TemperatureFahrenheit: 72.5,
			Condition:             "Partly Cloudy",
			Humidity:              65,
			Description:           "Mock weather data - please set OPENWEATHER_API_KEY environment variable",
		}
		if rec != want {
			t.Errorf("Fetch(%q) = %+v, want %+v", city, rec, want)
		}
	}
	if n := rt.calls.Load(); n != 0 {
		t.Errorf("mock mode made %d network calls", n)
	}
}

func TestFetch_Live(t *testing.T) {
	t.Parallel()

	reqs := make(chan *http.Request, 10)
	srv := newUpstream(t, http.StatusOK, londonPayload, reqs)

	rec, err := liveFetcher(srv.URL).Fetch(context.Background(), "London")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := weather.Record{
		CityName:              "London",
		TemperatureCelsius:    15.0,
		TemperatureFahrenheit: 59.0,
		Condition:             "Clouds",
		Humidity:              72,
		Description:           "overcast clouds",
	}
	if rec != want {
		t.Errorf("Fetch = %+v, want %+v", rec, want)
	}

	if len(reqs) != 1 {
		t.Fatalf("upstream received %d requests, want 1", len(reqs))
	}
	req := <-reqs
	q := req.URL.Query()
	for k, v := range map[string]string{"q": "London", "appid": "test-key", "units": "metric"} {
		if got := q.Get(k); got != v {
			t.Errorf("query %s = %q, want %q", k, got, v)
		}
	}
	if req.Method != http.MethodGet {
		t.Errorf("method = %s", req.Method)
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
}

func TestFetch_LightRain(t *testing.T) {
	t.Parallel()

	body := `{"name": "London", "main": {"temp": 15.0, "humidity": 80}, "weather": [{"main": "Rain", "description": "light rain"}]}`
	srv := newUpstream(t, http.StatusOK, body, nil)

	rec, err := liveFetcher(srv.URL).Fetch(context.Background(), "london")
	if err != nil {
		t.Fatal(err)
	}
	want := weather.Record{
		CityName:              "London",
		TemperatureCelsius:    15.0,
		TemperatureFahrenheit: 59.0,
		Condition:             "Rain",
		Humidity:              80,
		Description:           "light rain",
	}
	if rec != want {
		t.Errorf("Fetch = %+v, want %+v", rec, want)
	}
}

func TestFetch_Idempotent(t *testing.T) {
	t.Parallel()

	srv := newUpstream(t, http.StatusOK, londonPayload, nil)
	f := liveFetcher(srv.URL)

	a, err := f.Fetch(context.Background(), "London")
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.Fetch(context.Background(), "London")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("records differ: %+v vs %+v", a, b)
	}
}

func TestFetch_FahrenheitFollowsCelsius(t *testing.T) {
	t.Parallel()

	// Ties round to even on the exact binary value: 15.25 and -0.25 are exact ties,
	// 1.15 and 8.45 lie just below the tie.
	cases := []struct {
		temp                string
		celsius, fahrenheit float64
	}{
		{"-40", -40, -40},
		{"0", 0, 32},
		{"36.6", 36.6, 97.9},
		{"15.04", 15.0, 59.0},
		{"-3.75", -3.8, 25.2},
		{"21.349", 21.3, 70.3},
		{"100", 100, 212},
		{"1.15", 1.1, 34.0},
		{"15.25", 15.2, 59.4},
		{"8.45", 8.4, 47.1},
		{"-0.25", -0.2, 31.6},
	}
	for _, tc := range cases {
		t.Run(tc.temp, func(t *testing.T) {
			t.Parallel()
			body := `{"name":"X","main":{"temp":` + tc.temp + `,"humidity":50},"weather":[{"main":"Clear","description":"clear sky"}]}`
			srv := newUpstream(t, http.StatusOK, body, nil)

			rec, err := liveFetcher(srv.URL).Fetch(context.Background(), "X")
			if err != nil {
				t.Fatal(err)
			}
			if rec.TemperatureCelsius != tc.celsius {
				t.Errorf("celsius = %v, want %v", rec.TemperatureCelsius, tc.celsius)
			}
			if rec.TemperatureFahrenheit != tc.fahrenheit {
				t.Errorf("fahrenheit = %v, want %v", rec.TemperatureFahrenheit, tc.fahrenheit)
			}
			if f := weather.CelsiusToFahrenheit(rec.TemperatureCelsius); rec.TemperatureFahrenheit != f {
				t.Errorf("fahrenheit %v is not derived from celsius %v (%v)", rec.TemperatureFahrenheit, rec.TemperatureCelsius, f)
			}
		})
	}
}

func TestFetch_Failures(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		status  int
		body    string
		kind    weather.FailureKind
		message string
	}{
		"not found": {
			status:  http.StatusNotFound,
			body:    `{"cod":"404","message":"city not found"}`,
			kind:    weather.KindCityNotFound,
			message: "City 'Atlantis' not found",
		},
		"server error": {
			status:  http.StatusInternalServerError,
			body:    `{}`,
			kind:    weather.KindUpstream,
			message: "Weather API error: 500",
		},
		"unauthorized": {
			status:  http.StatusUnauthorized,
			body:    `{"cod":401,"message":"Invalid API key"}`,
			kind:    weather.KindUpstream,
			message: "Weather API error: 401",
		},
		"invalid json": {
			status: http.StatusOK,
			body:   `not json`,
			kind:   weather.KindTransport,
		},
		"missing weather": {
			status: http.StatusOK,
			body:   `{"name":"Atlantis","main":{"temp":10,"humidity":10},"weather":[]}`,
			kind:   weather.KindTransport,
		},
		"missing temperature": {
			status: http.StatusOK,
			body:   `{"name":"Atlantis","main":{"humidity":10},"weather":[{"main":"Rain","description":"light rain"}]}`,
			kind:   weather.KindTransport,
		},
		"missing name": {
			status: http.StatusOK,
			body:   `{"main":{"temp":10,"humidity":10},"weather":[{"main":"Rain","description":"light rain"}]}`,
			kind:   weather.KindTransport,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := newUpstream(t, tc.status, tc.body, nil)

			rec, err := liveFetcher(srv.URL).Fetch(context.Background(), "Atlantis")
			if err == nil {
				t.Fatalf("expected an error, got %+v", rec)
			}
			if rec != (weather.Record{}) {
				t.Errorf("failed fetch returned a record: %+v", rec)
			}
			if got := weather.KindOf(err); got != tc.kind {
				t.Errorf("KindOf = %v, want %v", got, tc.kind)
			}
			if tc.message != "" && err.Error() != tc.message {
				t.Errorf("error = %q, want %q", err.Error(), tc.message)
			}
		})
	}
}

func TestFetch_NotFoundCarriesCity(t *testing.T) {
	t.Parallel()

	srv := newUpstream(t, http.StatusNotFound, `{}`, nil)
	_, err := liveFetcher(srv.URL).Fetch(context.Background(), "Nowhereville")

	var nf *weather.CityNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error %v is not a CityNotFoundError", err)
	}
	if nf.City != "Nowhereville" {
		t.Errorf("City = %q", nf.City)
	}
}

func TestFetch_UpstreamCarriesStatus(t *testing.T) {
	t.Parallel()

	srv := newUpstream(t, http.StatusInternalServerError, `{}`, nil)
	_, err := liveFetcher(srv.URL).Fetch(context.Background(), "London")

	var ue *weather.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("error %v is not an UpstreamError", err)
	}
	if ue.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", ue.StatusCode)
	}
}

func TestFetch_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := liveFetcher(url).Fetch(context.Background(), "London")
	if weather.KindOf(err) != weather.KindTransport {
		t.Fatalf("KindOf(%v) = %v, want transport", err, weather.KindOf(err))
	}
}

func TestFetch_Canceled(t *testing.T) {
	t.Parallel()

	srv := newUpstream(t, http.StatusOK, londonPayload, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := liveFetcher(srv.URL).Fetch(ctx, "London")
	if weather.KindOf(err) != weather.KindTransport {
		t.Errorf("KindOf(%v) = %v, want transport", err, weather.KindOf(err))
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v does not wrap context.Canceled", err)
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	if got := weather.KindOf(nil); got != weather.KindNone {
		t.Errorf("KindOf(nil) = %v", got)
	}
	if got := weather.KindOf(errors.New("other")); got != weather.KindNone {
		t.Errorf("KindOf(other) = %v", got)
	}
	wrapped := errors.Join(errors.New("context"), &weather.UpstreamError{StatusCode: 503})
	if got := weather.KindOf(wrapped); got != weather.KindUpstream {
		t.Errorf("KindOf(wrapped) = %v", got)
	}
}

func TestCelsiusToFahrenheit(t *testing.T) {
	t.Parallel()

	cases := map[float64]float64{
		-40:  -40,
		0:    32,
		22.5: 72.5,
		15:   59,
		36.6: 97.9,
		100:  212,
	}
	for c, want := range cases {
		if got := weather.CelsiusToFahrenheit(c); got != want {
			t.Errorf("CelsiusToFahrenheit(%v) = %v, want %v", c, got, want)
		}
	}
}
