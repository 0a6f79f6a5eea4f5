package utils

import (
	"crop-advisory-engine/internal/models"
)

// titleTranslations maps canonical insight titles to their localized
// forms. The advisory engine always emits English titles; translation
// happens at the API boundary based on the farmer's language setting.
var titleTranslations = map[models.Language]map[string]string{
	models.LanguageHindi: {
		"Heavy rain warning":  "भारी बारिश की चेतावनी",
		"Irrigation reminder": "सिंचाई अनुस्मारक",

		"Sowing stage fertilizer plan":     "बुवाई चरण उर्वरक योजना",
		"Vegetative stage fertilizer plan": "वानस्पतिक चरण उर्वरक योजना",
		"Flowering stage fertilizer plan":  "पुष्पन चरण उर्वरक योजना",
		"Maturity stage fertilizer plan":   "परिपक्वता चरण उर्वरक योजना",

		"Sowing stage pest watch":     "बुवाई चरण कीट निगरानी",
		"Vegetative stage pest watch": "वानस्पतिक चरण कीट निगरानी",
		"Flowering stage pest watch":  "पुष्पन चरण कीट निगरानी",
		"Maturity stage pest watch":   "परिपक्वता चरण कीट निगरानी",
		"Harvest stage pest watch":    "कटाई चरण कीट निगरानी",

		"Low water retention on red soil":      "लाल मिट्टी में कम जल धारण",
		"Low water retention on laterite soil": "लेटराइट मिट्टी में कम जल धारण",
		"Low water retention on sandy soil":    "रेतीली मिट्टी में कम जल धारण",
	},
	models.LanguageMarathi: {
		"Heavy rain warning":  "मुसळधार पावसाचा इशारा",
		"Irrigation reminder": "सिंचन स्मरण",

		"Sowing stage fertilizer plan":     "पेरणी अवस्था खत नियोजन",
		"Vegetative stage fertilizer plan": "वाढ अवस्था खत नियोजन",
		"Flowering stage fertilizer plan":  "फुलोरा अवस्था खत नियोजन",
		"Maturity stage fertilizer plan":   "परिपक्वता अवस्था खत नियोजन",

		"Sowing stage pest watch":     "पेरणी अवस्था कीड निरीक्षण",
		"Vegetative stage pest watch": "वाढ अवस्था कीड निरीक्षण",
		"Flowering stage pest watch":  "फुलोरा अवस्था कीड निरीक्षण",
		"Maturity stage pest watch":   "परिपक्वता अवस्था कीड निरीक्षण",
		"Harvest stage pest watch":    "काढणी अवस्था कीड निरीक्षण",

		"Low water retention on red soil":      "तांबड्या जमिनीत कमी पाणी धारणा",
		"Low water retention on laterite soil": "जांभ्या जमिनीत कमी पाणी धारणा",
		"Low water retention on sandy soil":    "वालुकामय जमिनीत कमी पाणी धारणा",
	},
}

// LocalizeTitle returns the localized form of an insight title, falling
// back to the English original when no translation exists.
func LocalizeTitle(title string, lang models.Language) string {
	if lang == "" || lang == models.LanguageEnglish {
		return title
	}
	translations, ok := titleTranslations[lang]
	if !ok {
		return title
	}
	if localized, ok := translations[title]; ok {
		return localized
	}
	return title
}

// LocalizeInsights returns a copy of the insights with titles localized
// for the given language. Descriptions stay in English.
func LocalizeInsights(insights []models.Insight, lang models.Language) []models.Insight {
	if lang == "" || lang == models.LanguageEnglish {
		return insights
	}
	out := make([]models.Insight, len(insights))
	for i, ins := range insights {
		ins.Title = LocalizeTitle(ins.Title, lang)
		out[i] = ins
	}
	return out
}
