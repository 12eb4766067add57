package models

// TaskCriteria describes the acceptance criteria a submission is judged against.
type TaskCriteria struct {
	Language             string   `json:"language"`
	MinWordCount         *int     `json:"minWordCount,omitempty"`
	MaxWordCount         *int     `json:"maxWordCount,omitempty"`
	MinDuration          *float64 `json:"minDuration,omitempty"`
	MaxDuration          *float64 `json:"maxDuration,omitempty"`
	QualityThreshold     int      `json:"qualityThreshold"`
	SpecificRequirements []string `json:"specificRequirements,omitempty"`
}

// VerificationRequest is a generative verification request for a stored submission.
type VerificationRequest struct {
	SubmissionID string       `json:"submissionId"`
	DataType     string       `json:"dataType"` // text, audio or image
	StorageURL   string       `json:"storageUrl"`
	Language     string       `json:"language"`
	TaskCriteria TaskCriteria `json:"taskCriteria"`
	UserID       string       `json:"-"`
}

// VerificationResult is the structured outcome of a generative verification.
type VerificationResult struct {
	SubmissionID     string   `json:"submissionId"`
	QualityScore     int      `json:"qualityScore"`
	LanguageDetected string   `json:"languageDetected"`
	Issues           []string `json:"issues"`
	Recommendations  []string `json:"recommendations"`
	Confidence       float64  `json:"confidence"`
	ProcessingTimeMS int64    `json:"processingTime"`
	CostEstimate     float64  `json:"costEstimate"`
	Timestamp        string   `json:"timestamp"`
}

// TranslationRequest is a text translation request.
type TranslationRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage"`
	UserID         string `json:"-"`
}

// TranslationResult is the outcome of a translation call.
type TranslationResult struct {
	TranslatedText   string  `json:"translatedText"`
	DetectedLanguage string  `json:"detectedLanguage,omitempty"`
	CostEstimate     float64 `json:"costEstimate"`
}

// TranscriptionRequest is a speech-to-text request for stored audio.
type TranscriptionRequest struct {
	AudioURL        string  `json:"audioUrl"`
	Language        string  `json:"language,omitempty"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
	UserID          string  `json:"-"`
}

// TranscriptionResult is the outcome of a transcription call.
type TranscriptionResult struct {
	Transcript   string  `json:"transcript"`
	Confidence   float64 `json:"confidence"`
	CostEstimate float64 `json:"costEstimate"`
}

// ResultsRequest asks for verification results to be processed and
// anchored through the chain integration.
type ResultsRequest struct {
	SubmissionID        string                 `json:"submissionId"`
	VerificationResults map[string]interface{} `json:"verificationResults"`
	UserID              string                 `json:"-"`
}

// ResultsResponse reports the processing outcome for a submission.
type ResultsResponse struct {
	SubmissionID     string `json:"submissionId"`
	Processed        bool   `json:"processed"`
	ChainTxHash      string `json:"smartContractTxHash,omitempty"`
	Cached           bool   `json:"cached"`
	ProcessingTimeMS int64  `json:"processingTime"`
}

// ChainResult is the outcome of the (simulated) smart contract integration.
type ChainResult struct {
	TxHash             string `json:"txHash"`
	BlockNumber        int64  `json:"blockNumber"`
	GasUsed            int64  `json:"gasUsed"`
	Status             string `json:"status"`
	SubmissionApproved bool   `json:"submissionApproved"`
	Timestamp          string `json:"timestamp"`
}

// CachedResult is the replayable record of a processed submission.
type CachedResult struct {
	TxHash       string  `json:"txHash"`
	QualityScore float64 `json:"qualityScore"`
	Timestamp    string  `json:"timestamp"`
}
