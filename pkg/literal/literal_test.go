package literal_test

import (
	"math"
	"testing"
	"time"

	"github.com/sandrolain/gorule/pkg/literal"
	"github.com/sandrolain/gorule/pkg/types"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want types.Value
		code types.ErrorCode
	}{
		{in: "0", want: types.Integer(0)},
		{in: "42", want: types.Integer(42)},
		{in: "-5", want: types.Integer(-5)},
		{in: "3.14", want: types.Float(3.14)},
		{in: "0.5", want: types.Float(0.5)},
		{in: "1e3", want: types.Float(1000)},
		{in: "2E-2", want: types.Float(0.02)},
		{in: "9223372036854775808", want: types.Float(9223372036854775808)},
		{in: "007", code: types.ErrFloatSyntax},
		{in: "00.5", code: types.ErrFloatSyntax},
		{in: "1.", code: types.ErrFloatSyntax},
		{in: "abc", code: types.ErrFloatSyntax},
		{in: "1e400", code: types.ErrFloatSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := literal.ParseNumber(tt.in)
			if tt.code != "" {
				if !types.HasCode(err, tt.code) {
					t.Fatalf("ParseNumber(%q) error = %v, want code %s", tt.in, err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNumber(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseNumber(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFloatMessages(t *testing.T) {
	_, err := literal.ParseFloat("007")
	want := "L0101: invalid floating point literal (leading zeros in decimal literals are not permitted): 007"
	if err == nil || err.Error() != want {
		t.Errorf("got %v, want %q", err, want)
	}

	_, err = literal.ParseFloat("1e999")
	want = "L0101: invalid floating point literal (out of range): 1e999"
	if err == nil || err.Error() != want {
		t.Errorf("got %v, want %q", err, want)
	}

	f, err := literal.ParseFloat("10")
	if err != nil || f != 10 {
		t.Errorf("ParseFloat(10) = %v, %v", f, err)
	}
}

func TestParseTimedelta(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr string
	}{
		{in: "PT1H", want: time.Hour},
		{in: "P1D", want: 24 * time.Hour},
		{in: "P1W2DT3H", want: 9*24*time.Hour + 3*time.Hour},
		{in: "PT1H30M", want: 90 * time.Minute},
		{in: "PT0,5S", want: 500 * time.Millisecond},
		{in: "PT1.5M", want: 90 * time.Second},
		{in: "P", wantErr: "TimedeltaSyntaxError"},
		{in: "PT", wantErr: "TimedeltaSyntaxError"},
		{in: "P1DT", wantErr: "TimedeltaSyntaxError"},
		{in: "1D", wantErr: "TimedeltaSyntaxError"},
		{in: "P1Y", wantErr: "TimedeltaSyntaxError"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := literal.ParseTimedelta(tt.in)
			if tt.wantErr != "" {
				terr, ok := err.(*types.Error)
				if !ok || terr.Kind() != tt.wantErr {
					t.Fatalf("ParseTimedelta(%q) error = %v, want %s", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimedelta(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimedelta(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimedeltaEmptyMessage(t *testing.T) {
	_, err := literal.ParseTimedelta("P")
	if want := "L0103: empty timedelta string: P"; err == nil || err.Error() != want {
		t.Errorf("got %v, want %q", err, want)
	}
}

func TestParseDatetime(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	tests := []struct {
		in   string
		loc  *time.Location
		want time.Time
	}{
		{"2024-03-01T10:20:30Z", nil, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2024-03-01T10:20:30.5+02:00", nil, time.Date(2024, 3, 1, 8, 20, 30, 5e8, time.UTC)},
		{"2024-03-01 10:20:30Z", nil, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2024-03-01T10:20", nil, time.Date(2024, 3, 1, 10, 20, 0, 0, time.UTC)},
		{"2024-03-01", nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{" 2024-03-01 ", nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-01", rome, time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := literal.ParseDatetime(tt.in, tt.loc)
			if err != nil {
				t.Fatalf("ParseDatetime(%q): %v", tt.in, err)
			}
			if !got.Equal(tt.want) || got.Location() != time.UTC {
				t.Errorf("ParseDatetime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := literal.ParseDatetime("yesterday", nil); !types.HasCode(err, types.ErrDatetimeSyntax) {
		t.Errorf("expected DatetimeSyntaxError, got %v", err)
	}
}

func TestParseRegex(t *testing.T) {
	re, err := literal.ParseRegex(`^a+b$`)
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("aab") || re.MatchString("ba") {
		t.Error("pattern does not behave as compiled")
	}

	again, err := literal.ParseRegex(`^a+b$`)
	if err != nil || again != re {
		t.Error("expected the memoised *regexp.Regexp")
	}

	if _, err := literal.ParseRegex(`(`); !types.HasCode(err, types.ErrRegexSyntax) {
		t.Errorf("expected RegexSyntaxError, got %v", err)
	}
}

func TestParseFloatExact(t *testing.T) {
	f, err := literal.ParseFloat("1.7976931348623157e308")
	if err != nil || f != math.MaxFloat64 {
		t.Errorf("ParseFloat(max) = %v, %v", f, err)
	}
}
