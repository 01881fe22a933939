package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when a state machine is asked to move
// along an edge it does not have.
var ErrInvalidTransition = errors.New("invalid state transition")

// MaxRecordingDuration is the point at which a recording stops on its own.
const MaxRecordingDuration = 60 * time.Second

// ReadingPassage is the reference text a student reads aloud.
type ReadingPassage struct {
	Title       string
	Text        string
	Difficulty  string
	ExpectedWPM int
}

var readingPassages = map[string]ReadingPassage{
	"hindi": {
		Title:       "गांव की कहानी",
		Text:        `एक छोटे से गांव में राम नाम का एक लड़का रहता था। वह बहुत मेहनती और ईमानदार था। हर सुबह वह अपने खेत में काम करने जाता था। उसके पास एक छोटा सा खेत था जहाँ वह सब्जियाँ उगाता था।

एक दिन उसने देखा कि उसके पौधे मुरझा रहे हैं। उसने सोचा कि शायद पानी की कमी है। उसने तुरंत अपने पौधों को पानी दिया। कुछ दिनों बाद उसके पौधे फिर से हरे-भरे हो गए।

राम ने सीखा कि धैर्य और मेहनत से हर समस्या का समाधान मिल जाता है।`,
		Difficulty:  "Medium",
		ExpectedWPM: 80,
	},
	"marathi": {
		Title:       "शेतकऱ्याची गोष्ट",
		Text:        `एका छोट्या गावात रामू नावाचा एक शेतकरी राहत होता. तो खूप मेहनती आणि प्रामाणिक होता. दररोज सकाळी तो आपल्या शेतात काम करायला जात असे.

त्याच्याकडे एक छोटे शेत होते जिथे तो भाज्या पिकवत असे. एक दिवशी त्याने पाहिले की त्याची झाडे कोमेजत आहेत. त्याने विचार केला की कदाचित पाण्याची कमतरता असावी.

त्याने लगेच आपल्या झाडांना पाणी दिले. काही दिवसांनी त्याची झाडे पुन्हा हिरवीगार झाली. रामूला समजले की धैर्य आणि मेहनतीने प्रत्येक समस्येचे निराकरण होते.`,
		Difficulty:  "Medium",
		ExpectedWPM: 75,
	},
	"tamil": {
		Title:       "விவசாயியின் கதை",
		Text:        `ஒரு சிறிய கிராமத்தில் ராமு என்ற விவசாயி வாழ்ந்து வந்தான். அவன் மிகவும் உழைப்பாளி மற்றும் நேர்மையானவன். தினமும் காலையில் அவன் தன் வயலில் வேலை செய்ய செல்வான்.

அவனிடம் ஒரு சிறிய வயல் இருந்தது, அங்கே அவன் காய்கறிகள் வளர்த்து வந்தான். ஒரு நாள் அவன் தன் செடிகள் வாடிப் போவதைக் கண்டான். தண்ணீர் பற்றாக்குறை இருக்கலாம் என்று நினைத்தான்.

உடனே அவன் தன் செடிகளுக்கு தண்ணீர் ஊற்றினான். சில நாட்களில் அவன் செடிகள் மீண்டும் பசுமையாக மாறின. பொறுமையும் உழைப்பும் இருந்தால் எல்லா பிரச்சனைகளுக்கும் தீர்வு கிடைக்கும் என்று ராமு கற்றுக்கொண்டான்.`,
		Difficulty:  "Medium",
		ExpectedWPM: 70,
	},
	"telugu": {
		Title:       "రైతు కథ",
		Text:        `ఒక చిన్న గ్రామంలో రాము అనే రైతు నివసించేవాడు. అతను చాలా కష్టపడే వాడు మరియు నిజాయితీపరుడు. ప్రతిరోజూ ఉదయం అతను తన పొలంలో పని చేయడానికి వెళ్ళేవాడు.

అతని దగ్గర ఒక చిన్న పొలం ఉండేది, అక్కడ అతను కూరగాయలు పండించేవాడు. ఒక రోజు అతను తన మొక్కలు వాడిపోవడం చూశాడు. నీటి లేకపోవడం వల్ల అయి ఉంటుందని అనుకున్నాడు.

వెంటనే అతను తన మొక్కలకు నీళ్ళు పోశాడు. కొన్ని రోజుల తర్వాత అతని మొక్కలు మళ్ళీ పచ్చగా మారాయి. ఓపిక మరియు కష్టంతో ప్రతి సమస్యకు పరిష్కారం దొరుకుతుందని రాము నేర్చుకున్నాడు.`,
		Difficulty:  "Medium",
		ExpectedWPM: 75,
	},
	"gujarati": {
		Title:       "ખેડૂતની વાર્તા",
		Text:        `એક નાના ગામમાં રામુ નામનો એક ખેડૂત રહેતો હતો. તે ખૂબ મહેનતુ અને પ્રામાણિક હતો. દરરોજ સવારે તે પોતાના ખેતરમાં કામ કરવા જતો હતો.

તેની પાસે એક નાનું ખેતર હતું જ્યાં તે શાકભાજી ઉગાડતો હતો. એક દિવસે તેણે જોયું કે તેના છોડ સુકાઈ રહ્યા છે. તેણે વિચાર્યું કે કદાચ પાણીની અછત હશે.

તેણે તરત જ પોતાના છોડને પાણી આપ્યું. કેટલાક દિવસો પછી તેના છોડ ફરીથી લીલાછમ થઈ ગયા. રામુએ શીખ્યું કે ધીરજ અને મહેનતથી દરેક સમસ્યાનો ઉકેલ મળી જાય છે.`,
		Difficulty:  "Medium",
		ExpectedWPM: 70,
	},
	"bengali": {
		Title:       "কৃষকের গল্প",
		Text:        `একটি ছোট গ্রামে রামু নামে এক কৃষক বাস করত। সে খুব পরিশ্রমী এবং সৎ ছিল। প্রতিদিন সকালে সে তার ক্ষেতে কাজ করতে যেত।

তার একটি ছোট ক্ষেত ছিল যেখানে সে সবজি চাষ করত। একদিন সে দেখল যে তার গাছগুলো শুকিয়ে যাচ্ছে। সে ভাবল হয়তো পানির অভাব।

সে তৎক্ষণাৎ তার গাছগুলোতে পানি দিল। কয়েকদিন পর তার গাছগুলো আবার সবুজ হয়ে উঠল। রামু শিখল যে ধৈর্য এবং পরিশ্রমে সব সমস্যার সমাধান হয়।`,
		Difficulty:  "Medium",
		ExpectedWPM: 75,
	},
	"kannada": {
		Title:       "ರೈತನ ಕಥೆ",
		Text:        `ಒಂದು ಸಣ್ಣ ಹಳ್ಳಿಯಲ್ಲಿ ರಾಮು ಎಂಬ ರೈತ ವಾಸಿಸುತ್ತಿದ್ದ. ಅವನು ತುಂಬಾ ಪರಿಶ್ರಮಿ ಮತ್ತು ಪ್ರಾಮಾಣಿಕನಾಗಿದ್ದ. ಪ್ರತಿದಿನ ಬೆಳಿಗ್ಗೆ ಅವನು ತನ್ನ ಹೊಲದಲ್ಲಿ ಕೆಲಸ ಮಾಡಲು ಹೋಗುತ್ತಿದ್ದ.

ಅವನ ಬಳಿ ಒಂದು ಸಣ್ಣ ಹೊಲವಿತ್ತು, ಅಲ್ಲಿ ಅವನು ತರಕಾರಿಗಳನ್ನು ಬೆಳೆಯುತ್ತಿದ್ದ. ಒಂದು ದಿನ ಅವನು ತನ್ನ ಸಸ್ಯಗಳು ಬಾಡುತ್ತಿರುವುದನ್ನು ನೋಡಿದ. ಬಹುಶಃ ನೀರಿನ ಕೊರತೆ ಇರಬಹುದು ಎಂದು ಅವನು ಯೋಚಿಸಿದ.

ಅವನು ತಕ್ಷಣವೇ ತನ್ನ ಸಸ್ಯಗಳಿಗೆ ನೀರು ಹಾಕಿದ. ಕೆಲವು ದಿನಗಳ ನಂತರ ಅವನ ಸಸ್ಯಗಳು ಮತ್ತೆ ಹಸಿರಾದವು. ತಾಳ್ಮೆ ಮತ್ತು ಪರಿಶ್ರಮದಿಂದ ಪ್ರತಿ ಸಮಸ್ಯೆಗೂ ಪರಿಹಾರ ಸಿಗುತ್ತದೆ ಎಂದು ರಾಮು ಕಲಿತ.`,
		Difficulty:  "Medium",
		ExpectedWPM: 70,
	},
	"malayalam": {
		Title:       "കർഷകന്റെ കഥ",
		Text:        `ഒരു ചെറിയ ഗ്രാമത്തിൽ രാമു എന്ന കർഷകൻ താമസിച്ചിരുന്നു. അവൻ വളരെ കഠിനാധ്വാനിയും സത്യസന്ധനുമായിരുന്നു. എല്ലാ ദിവസവും രാവിലെ അവൻ തന്റെ വയലിൽ ജോലി ചെയ്യാൻ പോകുമായിരുന്നു.

അവന് ഒരു ചെറിയ വയൽ ഉണ്ടായിരുന്നു, അവിടെ അവൻ പച്ചക്കറികൾ കൃഷി ചെയ്തിരുന്നു. ഒരു ദിവസം അവൻ തന്റെ ചെടികൾ വാടുന്നത് കണ്ടു. വെള്ളത്തിന്റെ കുറവായിരിക്കാം എന്ന് അവൻ ചിന്തിച്ചു.

അവൻ ഉടനെ തന്റെ ചെടികൾക്ക് വെള്ളം കൊടുത്തു. കുറച്ച് ദിവസങ്ങൾക്ക് ശേഷം അവന്റെ ചെടികൾ വീണ്ടും പച്ചയായി. ക്ഷമയും കഠിനാധ്വാനവും കൊണ്ട് എല്ലാ പ്രശ്നങ്ങൾക്കും പരിഹാരം കാണാം എന്ന് രാമു പഠിച്ചു.`,
		Difficulty:  "Medium",
		ExpectedWPM: 70,
	},
	"english": {
		Title:       "The Farmer's Story",
		Text:        `In a small village, there lived a farmer named Ramu. He was very hardworking and honest. Every morning, he would go to work in his field.

He had a small field where he grew vegetables. One day, he noticed that his plants were wilting. He thought there might be a lack of water.

He immediately watered his plants. After a few days, his plants became green again. Ramu learned that with patience and hard work, every problem has a solution.`,
		Difficulty:  "Easy",
		ExpectedWPM: 120,
	},
}

// PassageFor returns the reference passage for a language value.
func PassageFor(language string) (ReadingPassage, error) {
	lang, err := LookupLanguage(language)
	if err != nil {
		return ReadingPassage{}, err
	}
	p, ok := readingPassages[lang.Value]
	if !ok {
		return ReadingPassage{}, fmt.Errorf("%w: no passage for %q", ErrUnknownLanguage, language)
	}
	return p, nil
}

// ReadingAssessment is the scored result of one read-aloud.
type ReadingAssessment struct {
	Language                 string   `json:"language"`
	OverallScore             int      `json:"overallScore"`
	Fluency                  int      `json:"fluency"`
	Pronunciation            int      `json:"pronunciation"`
	Pace                     int      `json:"pace"`
	Accuracy                 int      `json:"accuracy"`
	WordsPerMinute           int      `json:"wordsPerMinute"`
	LanguageSpecificFeedback []string `json:"languageSpecificFeedback"`
	GeneralFeedback          []string `json:"generalFeedback"`
	Suggestions              []string `json:"suggestions"`
	Strengths                []string `json:"strengths"`
	AreasForImprovement      []string `json:"areasForImprovement"`
	Fallback                 bool     `json:"-"`
}

type ReadingState string

const (
	ReadingIdle      ReadingState = "idle"
	ReadingRecording ReadingState = "recording"
	ReadingStopped   ReadingState = "stopped"
	ReadingAnalyzing ReadingState = "analyzing"
	ReadingDone      ReadingState = "done"
	ReadingError     ReadingState = "error"
)

var readingTransitions = map[ReadingState][]ReadingState{
	ReadingIdle:      {ReadingRecording},
	ReadingRecording: {ReadingStopped},
	ReadingStopped:   {ReadingRecording, ReadingAnalyzing},
	ReadingAnalyzing: {ReadingDone, ReadingError},
	ReadingDone:      {},
	ReadingError:     {ReadingAnalyzing},
}

func (s ReadingState) CanTransitionTo(next ReadingState) bool {
	for _, allowed := range readingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ReadingSession tracks one read-aloud attempt. A session can only be
// analysed after a recording exists, and a result only exists in Done.
type ReadingSession struct {
	Language   string
	State      ReadingState
	StartedAt  time.Time
	Duration   time.Duration
	Transcript string
	Result     *ReadingAssessment
	Err        error
}

func NewReadingSession(language string) (*ReadingSession, error) {
	lang, err := LookupLanguage(language)
	if err != nil {
		return nil, err
	}
	return &ReadingSession{Language: lang.Value, State: ReadingIdle}, nil
}

func (s *ReadingSession) transition(next ReadingState) error {
	if !s.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, next)
	}
	s.State = next
	return nil
}

// StartRecording begins a new recording, discarding any earlier one.
func (s *ReadingSession) StartRecording(now time.Time) error {
	if err := s.transition(ReadingRecording); err != nil {
		return err
	}
	s.StartedAt = now
	s.Duration = 0
	s.Transcript = ""
	return nil
}

// Tick reports whether the recording hit MaxRecordingDuration and was
// stopped as a result.
func (s *ReadingSession) Tick(now time.Time) bool {
	if s.State != ReadingRecording {
		return false
	}
	if now.Sub(s.StartedAt) < MaxRecordingDuration {
		return false
	}
	_ = s.StopRecording(now)
	return true
}

// StopRecording ends the recording. The transcript arrives with
// BeginAnalysis.
func (s *ReadingSession) StopRecording(now time.Time) error {
	if err := s.transition(ReadingStopped); err != nil {
		return err
	}
	d := now.Sub(s.StartedAt)
	if d > MaxRecordingDuration {
		d = MaxRecordingDuration
	}
	s.Duration = d
	return nil
}

// BeginAnalysis moves to Analyzing with the transcript of the recording.
func (s *ReadingSession) BeginAnalysis(transcript string) error {
	if err := s.transition(ReadingAnalyzing); err != nil {
		return err
	}
	if transcript != "" {
		s.Transcript = transcript
	}
	s.Err = nil
	return nil
}

func (s *ReadingSession) Complete(result *ReadingAssessment) error {
	if err := s.transition(ReadingDone); err != nil {
		return err
	}
	s.Result = result
	return nil
}

func (s *ReadingSession) Fail(err error) error {
	if tErr := s.transition(ReadingError); tErr != nil {
		return tErr
	}
	s.Err = err
	return nil
}

// Reset returns the session to Idle from any state.
func (s *ReadingSession) Reset() {
	s.State = ReadingIdle
	s.StartedAt = time.Time{}
	s.Duration = 0
	s.Transcript = ""
	s.Result = nil
	s.Err = nil
}
