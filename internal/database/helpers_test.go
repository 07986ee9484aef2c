package database

import (
	"reflect"
	"testing"

	"github.com/benvon/cook-with-ai/internal/models"
)

func TestUniqueIngredientNames(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, []string{}},
		{"keeps order", []string{"flour", "eggs", "milk"}, []string{"flour", "eggs", "milk"}},
		{"drops blanks", []string{"", "  ", "salt"}, []string{"salt"}},
		{"case insensitive repeats", []string{"Basil", "basil", "BASIL "}, []string{"Basil"}},
		{"trims", []string{"  olive oil "}, []string{"olive oil"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := UniqueIngredientNames(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UniqueIngredientNames(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		start    string
		end      string
		wantFrom string
		wantTo   string
		wantErr  bool
	}{
		{name: "no bounds"},
		{name: "only start ignored", start: "2026-04-01"},
		{name: "only end ignored", end: "2026-04-30"},
		{name: "full month", start: "2026-04-01", end: "2026-04-30", wantFrom: "2026-04-01", wantTo: "2026-04-30"},
		{name: "single day", start: "2026-04-20", end: "2026-04-20", wantFrom: "2026-04-20", wantTo: "2026-04-20"},
		{name: "bad start", start: "April 1", end: "2026-04-30", wantErr: true},
		{name: "bad end", start: "2026-04-01", end: "2026-02-30", wantErr: true},
		{name: "reversed", start: "2026-04-30", end: "2026-04-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			from, to, err := DateRange(tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DateRange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if from != tt.wantFrom || to != tt.wantTo {
				t.Errorf("DateRange() = (%q, %q), want (%q, %q)", from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestDecodePreferences(t *testing.T) {
	t.Parallel()

	got, err := decodePreferences(nil)
	if err != nil || got != nil {
		t.Fatalf("decodePreferences(nil) = %v, %v; want nil, nil", got, err)
	}

	got, err = decodePreferences([]byte(`{"theme":"dark"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.DefaultPreferences()
	want.Theme = models.ThemeDark
	if *got != want {
		t.Errorf("partial document = %+v, want %+v", *got, want)
	}

	if _, err := decodePreferences([]byte(`{`)); err == nil {
		t.Error("expected error for malformed document")
	}
}
