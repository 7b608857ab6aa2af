package ocr

// Language is one entry of the supported-language table.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// languageNames maps recognition language codes to display names. The set is
// fixed by the pre-built recognition models; requests outside it are rejected
// before any inference is attempted.
var languageNames = map[string]string{
	"ch":          "Chinese (Simplified)",
	"en":          "English",
	"chinese_cht": "Chinese (Traditional)",
	"korean":      "Korean",
	"japan":       "Japanese",
	"arabic":      "Arabic",
	"latin":       "Latin",
	"cyrillic":    "Cyrillic",
	"devanagari":  "Devanagari",
	"ta":          "Tamil",
	"te":          "Telugu",
	"ka":          "Kannada",
	"german":      "German",
	"french":      "French",
	"spanish":     "Spanish",
	"italian":     "Italian",
	"portuguese":  "Portuguese",
	"russian":     "Russian",
	"hi":          "Hindi",
	"mr":          "Marathi",
}

// languageOrder fixes the order languages are listed in, roughly by usage.
var languageOrder = []string{
	"ch", "en", "chinese_cht", "korean", "japan", "arabic",
	"latin", "cyrillic", "devanagari", "ta", "te", "ka",
	"german", "french", "spanish", "italian", "portuguese", "russian",
	"hi", "mr",
}

// LanguageGroup is a named set of languages sharing a script or region,
// used by the UI to build the language picker.
type LanguageGroup struct {
	Name      string     `json:"name"`
	Languages []Language `json:"languages"`
}

var languageGroups = []struct {
	name  string
	codes []string
}{
	{"East Asian", []string{"ch", "chinese_cht", "japan", "korean"}},
	{"European", []string{"en", "german", "french", "spanish", "italian", "portuguese", "russian", "latin", "cyrillic"}},
	{"Indic", []string{"devanagari", "hi", "mr", "ta", "te", "ka"}},
	{"Middle Eastern", []string{"arabic"}},
}

// Versions enumerates the recognition pipeline versions that can be requested.
var Versions = []string{"PP-OCRv5", "PP-OCRv4", "PP-OCRv3"}

// Languages returns the supported languages in display order.
func Languages() []Language {
	out := make([]Language, 0, len(languageOrder))
	for _, code := range languageOrder {
		out = append(out, Language{Code: code, Name: languageNames[code]})
	}
	return out
}

// LanguageGroups returns the supported languages grouped by script/region.
func LanguageGroups() []LanguageGroup {
	out := make([]LanguageGroup, 0, len(languageGroups))
	for _, g := range languageGroups {
		group := LanguageGroup{Name: g.name}
		for _, code := range g.codes {
			group.Languages = append(group.Languages, Language{Code: code, Name: languageNames[code]})
		}
		out = append(out, group)
	}
	return out
}

// SupportedLanguage reports whether code is in the language table.
func SupportedLanguage(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// SupportedVersion reports whether tag is a known pipeline version.
func SupportedVersion(tag string) bool {
	for _, v := range Versions {
		if v == tag {
			return true
		}
	}
	return false
}
