// Package integration holds the downstream integrations the gateway fronts.
package integration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

// Simulated receipt values. The production contract call is external to
// this layer and is swapped in behind the same interface.
const (
	simulatedBlockNumber = 12345678
	simulatedGasUsed     = 150000
)

// SimulatedChain implements service.ChainIntegration with a deterministic
// local simulation. The transaction hash is derived from the submission
// payload so repeated submissions of the same result are recognizable.
type SimulatedChain struct {
	logger logger.Logger

	now func() time.Time
}

// NewSimulatedChain creates the simulated chain integration.
func NewSimulatedChain(log logger.Logger) *SimulatedChain {
	return &SimulatedChain{
		logger: log.WithComponent("chain"),
		now:    time.Now,
	}
}

// SubmitResult anchors one processed verification result.
func (c *SimulatedChain) SubmitResult(ctx context.Context, submissionID string, qualityScore, confidence float64, languageDetected string, passesQuality bool) (*models.ChainResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	payload := fmt.Sprintf("%s:%.2f:%.2f:%s:%t:%d",
		submissionID, qualityScore, confidence, languageDetected, passesQuality, now.Unix())
	digest := sha256.Sum256([]byte(payload))
	txHash := "0x" + hex.EncodeToString(digest[:])

	c.logger.Info(ctx, "submitted verification result",
		logger.String("submission_id", submissionID),
		logger.String("tx_hash", txHash),
		logger.Bool("approved", passesQuality))

	return &models.ChainResult{
		TxHash:             txHash,
		BlockNumber:        simulatedBlockNumber,
		GasUsed:            simulatedGasUsed,
		Status:             "confirmed",
		SubmissionApproved: passesQuality,
		Timestamp:          now.Format(time.RFC3339),
	}, nil
}
