package aiservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

type fakeSecrets struct {
	err error
}

func (f *fakeSecrets) SigningKey(context.Context) ([]byte, error) {
	return []byte("key"), f.err
}

func (f *fakeSecrets) APIKey(context.Context, string) (string, error) {
	return "api-key", f.err
}

func newTestService(secretErr error) *Service {
	return NewService(&fakeSecrets{err: secretErr}, logger.NewNoopLogger())
}

func verificationRequest() *models.VerificationRequest {
	return &models.VerificationRequest{
		SubmissionID: "sub-1",
		DataType:     "text",
		StorageURL:   "gs://bucket/sub-1.txt",
		Language:     "sw",
		TaskCriteria: models.TaskCriteria{Language: "sw", QualityThreshold: 70},
	}
}

func TestVerifyProducesStableScores(t *testing.T) {
	svc := newTestService(nil)

	first, govErr := svc.Verify(context.Background(), verificationRequest())
	require.Nil(t, govErr)
	second, govErr := svc.Verify(context.Background(), verificationRequest())
	require.Nil(t, govErr)

	assert.Equal(t, first.QualityScore, second.QualityScore)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.GreaterOrEqual(t, first.QualityScore, 60)
	assert.LessOrEqual(t, first.QualityScore, 100)
	assert.Equal(t, "sw", first.LanguageDetected)
}

func TestVerifyValidation(t *testing.T) {
	svc := newTestService(nil)

	mutate := map[string]func(*models.VerificationRequest){
		"missing submission id": func(r *models.VerificationRequest) { r.SubmissionID = "" },
		"bad data type":         func(r *models.VerificationRequest) { r.DataType = "video" },
		"bad storage url":       func(r *models.VerificationRequest) { r.StorageURL = "http://example.com" },
		"missing language":      func(r *models.VerificationRequest) { r.Language = "" },
	}

	for name, apply := range mutate {
		t.Run(name, func(t *testing.T) {
			req := verificationRequest()
			apply(req)
			_, govErr := svc.Verify(context.Background(), req)
			require.NotNil(t, govErr)
			assert.Equal(t, constants.ErrCodeInvalidRequest, govErr.Code())
		})
	}
}

func TestVerifySecretOutage(t *testing.T) {
	svc := newTestService(errors.New("vault sealed"))

	_, govErr := svc.Verify(context.Background(), verificationRequest())
	require.NotNil(t, govErr)
	assert.Equal(t, constants.ErrCodeServerError, govErr.Code())
}

func TestTranslate(t *testing.T) {
	svc := newTestService(nil)

	result, govErr := svc.Translate(context.Background(), &models.TranslationRequest{
		Text:           "habari",
		TargetLanguage: "en",
	})
	require.Nil(t, govErr)
	assert.Contains(t, result.TranslatedText, "habari")
	assert.Equal(t, "en", result.DetectedLanguage)

	t.Run("empty text rejected", func(t *testing.T) {
		_, govErr := svc.Translate(context.Background(), &models.TranslationRequest{TargetLanguage: "en"})
		require.NotNil(t, govErr)
		assert.Equal(t, constants.ErrCodeInvalidRequest, govErr.Code())
	})

	t.Run("missing target rejected", func(t *testing.T) {
		_, govErr := svc.Translate(context.Background(), &models.TranslationRequest{Text: "habari"})
		require.NotNil(t, govErr)
		assert.Equal(t, constants.ErrCodeInvalidRequest, govErr.Code())
	})
}

func TestTranscribe(t *testing.T) {
	svc := newTestService(nil)

	result, govErr := svc.Transcribe(context.Background(), &models.TranscriptionRequest{
		AudioURL:        "gs://bucket/audio.wav",
		DurationSeconds: 30,
	})
	require.Nil(t, govErr)
	assert.NotEmpty(t, result.Transcript)
	assert.Greater(t, result.Confidence, 0.0)

	t.Run("bad audio url rejected", func(t *testing.T) {
		_, govErr := svc.Transcribe(context.Background(), &models.TranscriptionRequest{AudioURL: "file:///tmp/a.wav"})
		require.NotNil(t, govErr)
		assert.Equal(t, constants.ErrCodeInvalidRequest, govErr.Code())
	})
}

func TestHealthy(t *testing.T) {
	assert.NoError(t, newTestService(nil).Healthy(context.Background()))
	assert.Error(t, newTestService(errors.New("vault sealed")).Healthy(context.Background()))
}
