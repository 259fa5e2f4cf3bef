package service

import (
	"medtriage/internal/model"
	"medtriage/internal/utils"
)

// DetectSymptoms scans a transcript for known symptom phrases.
//
// Tiers are scanned critical, serious, moderate; within a tier symptoms keep
// their table order. A symptom is recorded when any of its triggers is a literal
// substring of the lower-cased text. Only the moderate tier skips names that are
// already recorded, so a critical and a serious entry are never deduplicated
// against each other.
func DetectSymptoms(text string) []model.SymptomMatch {
	lower := utils.NormalizeText(text)
	detected := []model.SymptomMatch{}

	for _, tier := range symptomTiers {
		for _, symptom := range tier.Symptoms {
			if !utils.ContainsAny(lower, symptom.Triggers) {
				continue
			}
			if tier.Severity == model.SymptomModerate && alreadyDetected(detected, symptom.Name) {
				continue
			}
			detected = append(detected, model.SymptomMatch{
				Symptom:  symptom.Name,
				Severity: tier.Severity,
			})
		}
	}

	return detected
}

func alreadyDetected(detected []model.SymptomMatch, name string) bool {
	for _, d := range detected {
		if d.Symptom == name {
			return true
		}
	}
	return false
}
