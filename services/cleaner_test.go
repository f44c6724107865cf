package services

import (
	"math"
	"testing"
)

func TestParseReading(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantNaN bool
		ok      bool
	}{
		{"12", 12, false, true},
		{" 3.5 ", 3.5, false, true},
		{"-0.7", -0.7, false, true},
		{"1021.3", 1021.3, false, true},
		{"", 0, true, true},
		{"NA", 0, true, true},
		{"N/A", 0, true, true},
		{"nan", 0, true, true},
		{"NULL", 0, true, true},
		{"NNW", 0, false, false},
		{"Guanyuan", 0, false, false},
	}

	for _, tt := range tests {
		got, ok := parseReading(tt.raw)
		if ok != tt.ok {
			t.Errorf("parseReading(%q) ok = %v; want %v", tt.raw, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if tt.wantNaN {
			if !math.IsNaN(got) {
				t.Errorf("parseReading(%q) = %v; want NaN", tt.raw, got)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("parseReading(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseField(t *testing.T) {
	if v, err := parseField(" 2013 "); err != nil || v != 2013 {
		t.Errorf("parseField: got %d, %v; want 2013, nil", v, err)
	}
	if _, err := parseField("3.5"); err == nil {
		t.Error("parseField(3.5) should fail")
	}
}

func TestNormaliseText(t *testing.T) {
	if got := normaliseText("  North \t West  "); got != "North West" {
		t.Errorf("normaliseText: got %q", got)
	}
	if got := normaliseHeader("\ufeffNo "); got != "No" {
		t.Errorf("normaliseHeader: got %q", got)
	}
}
