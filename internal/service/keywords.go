package service

import "medtriage/internal/model"

// symptomEntry maps a canonical symptom name to its trigger phrases
type symptomEntry struct {
	Name     string
	Triggers []string
}

// symptomTier is one severity tier of the symptom detector
type symptomTier struct {
	Severity model.SymptomSeverity
	Symptoms []symptomEntry
}

// symptomTiers is scanned in order; declaration order fixes the order of detected symptoms.
var symptomTiers = []symptomTier{
	{
		Severity: model.SymptomCritical,
		Symptoms: []symptomEntry{
			{"chest pain", []string{"chest pain", "chest pressure", "crushing chest", "heart pain"}},
			{"breathing difficulty", []string{"can't breathe", "difficulty breathing", "shortness of breath", "gasping"}},
			{"stroke symptoms", []string{"stroke", "paralysis", "face drooping", "arm weakness", "slurred speech"}},
			{"severe bleeding", []string{"severe bleeding", "heavy bleeding", "blood loss", "hemorrhage"}},
			{"unconscious", []string{"unconscious", "passed out", "fainting", "collapsed"}},
			{"heart attack", []string{"heart attack", "cardiac arrest", "heart stopped"}},
			{"seizure", []string{"seizure", "convulsion", "epileptic"}},
		},
	},
	{
		Severity: model.SymptomSerious,
		Symptoms: []symptomEntry{
			{"severe pain", []string{"severe pain", "excruciating", "unbearable pain", "intense pain"}},
			{"high fever", []string{"high fever", "burning up", "very hot", "temperature"}},
			{"vomiting blood", []string{"vomiting blood", "blood in vomit", "throwing up blood"}},
			{"head injury", []string{"head injury", "hit my head", "head trauma", "concussion"}},
			{"broken bone", []string{"broken bone", "fracture", "snapped", "bone broke"}},
		},
	},
	{
		Severity: model.SymptomModerate,
		Symptoms: []symptomEntry{
			{"pain", []string{"pain", "hurts", "ache", "sore"}},
			{"fever", []string{"fever", "temperature", "chills"}},
			{"cough", []string{"cough", "coughing"}},
			{"nausea", []string{"nausea", "sick", "queasy"}},
			{"headache", []string{"headache", "head hurts", "migraine"}},
		},
	},
}

// Fallback keyword lists. They overlap with the detector tables but are
// maintained separately and are not expected to agree.
var (
	fallbackCriticalKeywords = []string{
		"emergency", "urgent", "help", "dying", "heart attack", "stroke",
		"can't breathe", "chest pain", "bleeding", "unconscious", "seizure",
	}

	fallbackHighKeywords = []string{
		"severe", "extreme", "intense", "bad", "terrible", "awful",
		"broken", "accident", "injury", "blood",
	}

	fallbackMediumKeywords = []string{
		"pain", "hurt", "sick", "fever", "cough", "vomiting",
		"dizzy", "weak", "tired",
	}
)
