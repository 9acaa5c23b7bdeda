// Package translate maps canonical English alert field values to
// display strings. Lookups are pure; unknown values pass through
// verbatim.
package translate

import (
	"golang.org/x/text/language"

	"github.com/disha-ai/alert-sync/internal/models"
)

var supported = []language.Tag{
	language.English, // en: canonical, identity mapping
	language.Hindi,
	language.Bengali,
}

var matcher = language.NewMatcher(supported)

var tables = map[language.Tag]map[string]string{
	language.Hindi: {
		"low":      "कम",
		"medium":   "मध्यम",
		"high":     "उच्च",
		"critical": "गंभीर",

		"active":   "सक्रिय",
		"resolved": "समाधान",

		"weather":   "मौसम",
		"emergency": "आपातकाल",
		"traffic":   "यातायात",
		"safety":    "सुरक्षा",

		"Flood Warning":     "बाढ़ की चेतावनी",
		"Cyclone Alert":     "चक्रवात चेतावनी",
		"Road Closure":      "सड़क बंद",
		"Heatwave Advisory": "लू की सलाह",

		"Kolkata": "कोलकाता",
		"Chennai": "चेन्नई",
		"Shimla":  "शिमला",
		"Nagpur":  "नागपुर",
	},
	language.Bengali: {
		"low":      "নিম্ন",
		"medium":   "মাঝারি",
		"high":     "উচ্চ",
		"critical": "সংকটজনক",

		"active":   "সক্রিয়",
		"resolved": "সমাধান",

		"weather":   "আবহাওয়া",
		"emergency": "জরুরি",
		"traffic":   "যানবাহন",
		"safety":    "নিরাপত্তা",

		"Flood Warning":     "বন্যা সতর্কতা",
		"Cyclone Alert":     "ঘূর্ণিঝড় সতর্কতা",
		"Road Closure":      "রাস্তা বন্ধ",
		"Heatwave Advisory": "তাপপ্রবাহ পরামর্শ",

		"Kolkata": "কলকাতা",
		"Chennai": "চেন্নাই",
		"Shimla":  "শিমলা",
		"Nagpur":  "নাগপুর",
	},
}

// Match resolves an Accept-Language style string or bare tag ("hi",
// "bn-IN") to the closest supported language, falling back to English.
func Match(lang string) language.Tag {
	if lang == "" {
		return language.English
	}
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	for _, s := range supported {
		sb, _ := s.Base()
		if sb == base {
			return s
		}
	}
	return language.English
}

// Field returns the display string for a canonical value, or the value
// itself when no mapping exists.
func Field(tag language.Tag, value string) string {
	table, ok := tables[tag]
	if !ok {
		return value
	}
	if out, ok := table[value]; ok {
		return out
	}
	return value
}

// Alert returns a copy of a with its displayable fields translated.
// Enumerated fields keep canonical values when untranslated.
func Alert(tag language.Tag, a models.Alert) models.Alert {
	out := a
	out.Title = Field(tag, a.Title)
	out.Description = Field(tag, a.Description)
	out.Location = Field(tag, a.Location)
	out.Severity = models.Severity(Field(tag, string(a.Severity)))
	out.Status = models.Status(Field(tag, string(a.Status)))
	out.Type = models.AlertType(Field(tag, string(a.Type)))
	return out
}
