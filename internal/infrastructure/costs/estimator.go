package costs

import (
	"github.com/delang-zeta/ai-gateway/internal/config"
)

// Estimator computes the estimated cost of a request before admission.
// Estimation is a pure function of the service and input characteristics;
// enforcement belongs to the Ledger.
type Estimator struct {
	rates config.CostRates
}

// NewEstimator creates an estimator from the configured rate card.
func NewEstimator(rates config.CostRates) *Estimator {
	return &Estimator{rates: rates}
}

// VerificationCost estimates a generative verification call by modality.
func (e *Estimator) VerificationCost(dataType string) float64 {
	switch dataType {
	case "text":
		return e.rates.GeminiText
	case "audio":
		return e.rates.GeminiAudio
	case "image":
		return e.rates.GeminiImage
	default:
		return e.rates.DefaultSmallCost
	}
}

// TranslationCost estimates a translation call by input length.
func (e *Estimator) TranslationCost(characters int) float64 {
	if characters <= 0 {
		return e.rates.DefaultSmallCost
	}
	return float64(characters) * e.rates.TranslatePerChar
}

// TranscriptionCost estimates a transcription call by audio duration.
func (e *Estimator) TranscriptionCost(durationSeconds float64) float64 {
	if durationSeconds <= 0 {
		return e.rates.DefaultSmallCost
	}
	return durationSeconds / 60.0 * e.rates.SpeechPerMinute
}
