package objstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocampus/complaint-service/internal/config"
)

func TestValidatePhoto(t *testing.T) {
	assert.NoError(t, ValidatePhoto([]byte{1, 2, 3}, "image/jpeg"))
	assert.NoError(t, ValidatePhoto([]byte{1}, "image/webp"))

	assert.Error(t, ValidatePhoto(nil, "image/jpeg"))
	assert.Error(t, ValidatePhoto([]byte{1}, "image/gif"))
	assert.Error(t, ValidatePhoto(make([]byte, MaxPhotoSize+1), "image/png"))
}

func TestNewClientDisabledWithoutEndpoint(t *testing.T) {
	client, err := NewClient(config.ObjectStoreConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.False(t, client.Enabled())
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.ObjectStoreConfig{Endpoint: "minio.local:9000"})
	require.Error(t, err)
}
