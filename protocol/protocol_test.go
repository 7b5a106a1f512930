package protocol_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nimbus-tools/weather-mcp/protocol"
)

func TestLogLevel_JSON(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"debug", "info", "notice", "warning", "error", "critical", "alert", "emergency"} {
		var l protocol.LogLevel
		if err := json.Unmarshal([]byte(`"`+name+`"`), &l); err != nil {
			t.Fatalf("Unmarshal(%s): %v", name, err)
		}
		b, err := json.Marshal(l)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != `"`+name+`"` {
			t.Errorf("round trip of %s = %s", name, b)
		}
	}

	var l protocol.LogLevel
	for _, in := range []string{`"verbose"`, `3`} {
		if err := json.Unmarshal([]byte(in), &l); err == nil {
			t.Errorf("Unmarshal(%s) succeeded", in)
		}
	}
}

func TestLogLevel_String(t *testing.T) {
	t.Parallel()

	cases := map[protocol.LogLevel]string{
		-8:                      "debug",
		protocol.LevelDebug:     "debug",
		-1:                      "info",
		protocol.LevelInfo:      "info",
		2:                       "warning",
		protocol.LevelWarning:   "warning",
		protocol.LevelError:     "error",
		protocol.LevelEmergency: "emergency",
		42:                      "emergency",
	}
	for l, want := range cases {
		if got := l.String(); got != want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", int(l), got, want)
		}
	}
}

func TestNegotiateVersion(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		protocol.ProtocolVersion20241105: protocol.ProtocolVersion20241105,
		protocol.ProtocolVersion20250326: protocol.ProtocolVersion20250326,
		"":                               protocol.LatestProtocolVersion,
		"2030-01-01":                     protocol.LatestProtocolVersion,
	}
	for in, want := range cases {
		if got := protocol.NegotiateVersion(in); got != want {
			t.Errorf("NegotiateVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequestKey(t *testing.T) {
	t.Parallel()

	var params protocol.NotificationsCancelledRequestParams
	if err := json.Unmarshal([]byte(`{"requestId": 7, "reason": "user"}`), &params); err != nil {
		t.Fatal(err)
	}
	if got, want := protocol.RequestKey(params.RequestID), protocol.RequestKey(int64(7)); got != want {
		t.Errorf("numeric key = %q, want %q", got, want)
	}

	if err := json.Unmarshal([]byte(`{"requestId": "abc"}`), &params); err != nil {
		t.Fatal(err)
	}
	if got := protocol.RequestKey(params.RequestID); got != "abc" {
		t.Errorf("string key = %q", got)
	}
}

func TestDecodeArguments(t *testing.T) {
	t.Parallel()

	type args struct {
		City string `json:"city"`
	}
	for _, raw := range []string{"", "null"} {
		v := args{City: "unchanged"}
		if err := protocol.DecodeArguments(json.RawMessage(raw), &v); err != nil || v.City != "unchanged" {
			t.Errorf("DecodeArguments(%q) = %v, %+v", raw, err, v)
		}
	}

	var v args
	if err := protocol.DecodeArguments(json.RawMessage(`{"city":"Paris"}`), &v); err != nil || v.City != "Paris" {
		t.Errorf("DecodeArguments = %v, %+v", err, v)
	}
	if err := protocol.DecodeArguments(json.RawMessage(`{"city":1}`), &v); err == nil {
		t.Error("expected an error for a mistyped argument")
	}
}

func TestValidateByJSONSchema(t *testing.T) {
	t.Parallel()

	const schema = `{"type":"object","properties":{"city":{"type":"string","minLength":1}},"required":["city"],"additionalProperties":false}`

	cases := map[string]struct {
		doc   any
		valid bool
	}{
		"valid": {doc: map[string]any{"city": "Paris"}, valid: true},
		"struct": {doc: struct {
			City string `json:"city"`
		}{City: "Oslo"}, valid: true},
		"empty city":    {doc: map[string]any{"city": ""}},
		"missing city":  {doc: map[string]any{}},
		"wrong type":    {doc: map[string]any{"city": 3}},
		"extra members": {doc: map[string]any{"city": "Rome", "units": "metric"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := protocol.ValidateByJSONSchema(schema, tc.doc)
			if tc.valid {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var verr *protocol.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %v is not a ValidationError", err)
			}
			if !strings.HasPrefix(err.Error(), "invalid tool arguments: ") {
				t.Errorf("error = %q", err.Error())
			}
		})
	}
}
