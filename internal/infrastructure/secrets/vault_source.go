// Package secrets provides the Vault-backed secret source with a short
// in-process cache so hot-path reads do not hammer the secret store.
package secrets

import (
	"context"
	"encoding/base64"
	"fmt"

	vault "github.com/hashicorp/vault/api"
	"github.com/patrickmn/go-cache"

	"github.com/delang-zeta/ai-gateway/internal/config"
	"github.com/delang-zeta/ai-gateway/pkg/constants"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

// Secret names under the configured mount path.
const (
	SecretSigningKey = "jwt-signing-key"
	SecretGeminiKey  = "gemini-api-key"
	SecretTranslate  = "translate-api-key"
	SecretSpeech     = "speech-api-key"
)

// logicalReader is the slice of the Vault client the source depends on.
// The real client satisfies it; tests substitute a fake.
type logicalReader interface {
	ReadWithContext(ctx context.Context, path string) (*vault.Secret, error)
}

// VaultSource implements service.SecretSource over a Vault KV mount.
// Fetched values are cached for a few minutes so a Vault blip does not
// take every request down with it.
type VaultSource struct {
	reader    logicalReader
	mountPath string
	cache     *cache.Cache
	logger    logger.Logger
}

// NewVaultSource connects to Vault using the given configuration.
func NewVaultSource(cfg config.VaultConfig, log logger.Logger) (*VaultSource, error) {
	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = cfg.Address

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return newVaultSource(client.Logical(), cfg.MountPath, log), nil
}

func newVaultSource(reader logicalReader, mountPath string, log logger.Logger) *VaultSource {
	return &VaultSource{
		reader:    reader,
		mountPath: mountPath,
		cache:     cache.New(constants.SecretCacheTTL, constants.StoreSweepInterval),
		logger:    log.WithComponent("secrets"),
	}
}

// SigningKey returns the JWT signing key. Base64 values are decoded;
// anything else is used as raw bytes.
func (s *VaultSource) SigningKey(ctx context.Context) ([]byte, error) {
	value, err := s.fetch(ctx, SecretSigningKey)
	if err != nil {
		return nil, err
	}
	if decoded, decErr := base64.StdEncoding.DecodeString(value); decErr == nil {
		return decoded, nil
	}
	return []byte(value), nil
}

// APIKey returns the named downstream API key.
func (s *VaultSource) APIKey(ctx context.Context, name string) (string, error) {
	return s.fetch(ctx, name)
}

// fetch reads a secret value, preferring the cache.
func (s *VaultSource) fetch(ctx context.Context, name string) (string, error) {
	if v, found := s.cache.Get(name); found {
		if value, ok := v.(string); ok {
			return value, nil
		}
	}

	path := fmt.Sprintf("%s/%s", s.mountPath, name)
	secret, err := s.reader.ReadWithContext(ctx, path)
	if err != nil {
		s.logger.Error(ctx, "vault read failed", err, logger.String("path", path))
		return "", fmt.Errorf("read secret %q: %w", name, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("secret %q not found", name)
	}

	value, err := extractValue(secret.Data)
	if err != nil {
		return "", fmt.Errorf("secret %q: %w", name, err)
	}

	s.cache.Set(name, value, constants.SecretCacheTTL)
	return value, nil
}

// extractValue pulls the "value" field out of a KV response, handling
// both KV v1 (flat) and KV v2 (nested under "data") layouts.
func extractValue(data map[string]interface{}) (string, error) {
	if nested, ok := data["data"].(map[string]interface{}); ok {
		data = nested
	}
	value, ok := data["value"].(string)
	if !ok {
		return "", fmt.Errorf("missing string field %q", "value")
	}
	return value, nil
}
