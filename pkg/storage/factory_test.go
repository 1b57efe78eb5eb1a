package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderMemory(t *testing.T) {
	provider, err := NewProvider(ProviderConfig{Type: MemoryProviderType})
	require.NoError(t, err)
	assert.IsType(t, &MemoryProvider{}, provider)
}

func TestNewProviderPostgreSQLRequiresConfig(t *testing.T) {
	_, err := NewProvider(ProviderConfig{Type: PostgreSQLProviderType})
	assert.Error(t, err)
}

func TestNewProviderDynamoDBRequiresConfig(t *testing.T) {
	_, err := NewProvider(ProviderConfig{Type: DynamoDBProviderType})
	assert.Error(t, err)
}

func TestNewProviderUnknownType(t *testing.T) {
	_, err := NewProvider(ProviderConfig{Type: "sqlite"})
	assert.Error(t, err)
}
