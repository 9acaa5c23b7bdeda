package translate

import (
	"testing"

	"golang.org/x/text/language"

	"github.com/disha-ai/alert-sync/internal/models"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		in   string
		want language.Tag
	}{
		{"", language.English},
		{"en", language.English},
		{"hi", language.Hindi},
		{"hi-IN", language.Hindi},
		{"bn", language.Bengali},
		{"bn-IN", language.Bengali},
		{"fr", language.English}, // unsupported falls back
		{"not-a-tag!!", language.English},
	}

	for _, tc := range cases {
		if got := Match(tc.in); got != tc.want {
			t.Errorf("Match(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestField_KnownValues(t *testing.T) {
	if got := Field(language.Hindi, "high"); got != "उच्च" {
		t.Errorf("Field(hi, high) = %q", got)
	}
	if got := Field(language.Bengali, "weather"); got != "আবহাওয়া" {
		t.Errorf("Field(bn, weather) = %q", got)
	}
	if got := Field(language.Hindi, "Flood Warning"); got != "बाढ़ की चेतावनी" {
		t.Errorf("Field(hi, Flood Warning) = %q", got)
	}
}

func TestField_UnknownPassesThrough(t *testing.T) {
	if got := Field(language.Hindi, "Unmapped Free Text"); got != "Unmapped Free Text" {
		t.Errorf("unknown value must pass through, got %q", got)
	}
	// English has no table: everything passes through.
	if got := Field(language.English, "high"); got != "high" {
		t.Errorf("english is the canonical identity, got %q", got)
	}
}

func TestAlert_TranslatesCopy(t *testing.T) {
	a := models.Alert{
		ID:          "1",
		Title:       "Flood Warning",
		Description: "free text stays",
		Severity:    models.SeverityHigh,
		Location:    "Kolkata",
		Type:        models.AlertTypeWeather,
		Status:      models.StatusActive,
	}

	got := Alert(language.Hindi, a)

	if got.Title != "बाढ़ की चेतावनी" || got.Location != "कोलकाता" {
		t.Errorf("title/location not translated: %+v", got)
	}
	if got.Description != "free text stays" {
		t.Error("unmapped description must pass through")
	}
	if string(got.Severity) != "उच्च" || string(got.Status) != "सक्रिय" {
		t.Errorf("enums not translated: %+v", got)
	}

	// The input is untouched; translation returns a copy.
	if a.Title != "Flood Warning" {
		t.Error("translation mutated its input")
	}
}
