package secrets

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	vault "github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

type fakeReader struct {
	secrets map[string]*vault.Secret
	err     error
	reads   int
}

func (f *fakeReader) ReadWithContext(_ context.Context, path string) (*vault.Secret, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.secrets[path], nil
}

func kvSecret(value string) *vault.Secret {
	return &vault.Secret{Data: map[string]interface{}{"value": value}}
}

func kv2Secret(value string) *vault.Secret {
	return &vault.Secret{Data: map[string]interface{}{
		"data": map[string]interface{}{"value": value},
	}}
}

func TestAPIKeyFetch(t *testing.T) {
	reader := &fakeReader{secrets: map[string]*vault.Secret{
		"secret/ai-gateway/gemini-api-key": kvSecret("gm-key-1"),
	}}
	source := newVaultSource(reader, "secret/ai-gateway", logger.NewNoopLogger())

	key, err := source.APIKey(context.Background(), SecretGeminiKey)
	require.NoError(t, err)
	assert.Equal(t, "gm-key-1", key)
}

func TestFetchServesFromCache(t *testing.T) {
	reader := &fakeReader{secrets: map[string]*vault.Secret{
		"secret/ai-gateway/gemini-api-key": kvSecret("gm-key-1"),
	}}
	source := newVaultSource(reader, "secret/ai-gateway", logger.NewNoopLogger())

	for i := 0; i < 5; i++ {
		_, err := source.APIKey(context.Background(), SecretGeminiKey)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, reader.reads)
}

func TestSigningKeyDecodesBase64(t *testing.T) {
	raw := []byte("super-secret-signing-key")
	reader := &fakeReader{secrets: map[string]*vault.Secret{
		"secret/ai-gateway/jwt-signing-key": kvSecret(base64.StdEncoding.EncodeToString(raw)),
	}}
	source := newVaultSource(reader, "secret/ai-gateway", logger.NewNoopLogger())

	key, err := source.SigningKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, raw, key)
}

func TestKV2LayoutSupported(t *testing.T) {
	reader := &fakeReader{secrets: map[string]*vault.Secret{
		"secret/ai-gateway/translate-api-key": kv2Secret("tr-key-1"),
	}}
	source := newVaultSource(reader, "secret/ai-gateway", logger.NewNoopLogger())

	key, err := source.APIKey(context.Background(), SecretTranslate)
	require.NoError(t, err)
	assert.Equal(t, "tr-key-1", key)
}

func TestReadFailureSurfaces(t *testing.T) {
	reader := &fakeReader{err: errors.New("vault sealed")}
	source := newVaultSource(reader, "secret/ai-gateway", logger.NewNoopLogger())

	_, err := source.APIKey(context.Background(), SecretSpeech)
	assert.Error(t, err)
}

func TestMissingSecretSurfaces(t *testing.T) {
	reader := &fakeReader{secrets: map[string]*vault.Secret{}}
	source := newVaultSource(reader, "secret/ai-gateway", logger.NewNoopLogger())

	_, err := source.APIKey(context.Background(), "absent-key")
	assert.Error(t, err)
}
