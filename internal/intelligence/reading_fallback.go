package intelligence

import "github.com/sahayak-edu/sahayak/internal/domain"

// FallbackAssessment is the sample result shown when analysis is unavailable.
func FallbackAssessment(lang domain.Language, passage domain.ReadingPassage) *domain.ReadingAssessment {
	return &domain.ReadingAssessment{
		Language:       lang.Value,
		OverallScore:   82,
		Fluency:        85,
		Pronunciation:  78,
		Pace:           84,
		Accuracy:       88,
		WordsPerMinute: passage.ExpectedWPM - 10,
		LanguageSpecificFeedback: []string{
			"Good pronunciation of " + lang.Label + " sounds",
			"Proper intonation maintained throughout",
			"Some difficulty with complex consonant clusters",
		},
		GeneralFeedback: []string{"Excellent reading fluency", "Good pace and rhythm", "Clear articulation of most words"},
		Suggestions: []string{
			"Practice reading complex words slowly",
			"Focus on maintaining consistent pace",
			"Work on specific language sounds",
		},
		Strengths: []string{"Natural reading flow", "Good comprehension evident", "Confident delivery"},
		AreasForImprovement: []string{
			"Pronunciation of specific sounds",
			"Reading speed consistency",
			"Expression and intonation",
		},
		Fallback: true,
	}
}

var simulatedTranscripts = map[string]string{
	"hindi":   "एक छोटे से गांव में राम नाम का एक लड़का रहता था। वह बहुत मेहनती और ईमानदार था।",
	"marathi": "एका छोट्या गावात रामू नावाचा एक शेतकरी राहत होता. तो खूप मेहनती आणि प्रामाणिक होता.",
	"tamil":   "ஒரு சிறிய கிராமத்தில் ராமு என்ற விவசாயி வாழ்ந்து வந்தான். அவன் மிகவும் உழைப்பாளி மற்றும் நேர்மையானவன்.",
	"english": "In a small village, there lived a farmer named Ramu. He was very hardworking and honest.",
}

// SimulatedTranscript stands in for speech-to-text on a recording. Languages
// without a sample use the English one.
func SimulatedTranscript(language string) string {
	if t, ok := simulatedTranscripts[language]; ok {
		return t
	}
	return simulatedTranscripts["english"]
}
