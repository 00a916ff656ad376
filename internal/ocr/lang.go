package ocr

// shortCodes maps common two-letter language codes to Tesseract's
// three-letter codes. Codes not listed here pass through unchanged, so
// native Tesseract codes always work.
var shortCodes = map[string]string{
	"en": "eng",
	"de": "deu",
	"fr": "fra",
	"es": "spa",
	"it": "ita",
	"pt": "por",
	"nl": "nld",
	"ru": "rus",
	"uk": "ukr",
	"pl": "pol",
	"tr": "tur",
	"ar": "ara",
	"hi": "hin",
	"ja": "jpn",
	"ko": "kor",
	"zh": "chi_sim",
}

// MapLanguage converts a two-letter language code to the Tesseract
// equivalent, leaving unknown or already-native codes untouched.
func MapLanguage(code string) string {
	if mapped, ok := shortCodes[code]; ok {
		return mapped
	}
	if code == "" {
		return "eng"
	}
	return code
}
