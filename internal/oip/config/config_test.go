package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Address)
	assert.Equal(t, 5, cfg.MaxInstancesPerUser)
	assert.Equal(t, StoreDynamoDB, cfg.StoreBackend)
}

func TestInvalidStoreBackend(t *testing.T) {
	t.Setenv("OIP_STORE_BACKEND", "postgres")

	_, err := New()
	assert.Error(t, err)
}

func TestInvalidMaxInstances(t *testing.T) {
	t.Setenv("MAX_INSTANCES_PER_USER", "zero")

	_, err := New()
	assert.Error(t, err)
}

func TestPrivateSubnetIDs(t *testing.T) {
	t.Setenv("PRIVATE_SUBNET_IDS", "subnet-1, subnet-2,subnet-3,")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, []string{"subnet-1", "subnet-2", "subnet-3"}, cfg.PrivateSubnetIDs)
}

func TestModelImagesFromEnv(t *testing.T) {
	images := getModelImages(
		"LLAMA2_7B_IMAGE_URI=123.dkr.ecr.us-east-1.amazonaws.com/ollama-llama2:7b",
		"MISTRAL_7B_INSTRUCT_IMAGE_URI=123.dkr.ecr.us-east-1.amazonaws.com/ollama-mistral:7b-instruct",
		"PATH=/usr/bin",
		"EMPTY_IMAGE_URI=",
	)

	assert.Equal(t, map[string]string{
		"llama2:7b":           "123.dkr.ecr.us-east-1.amazonaws.com/ollama-llama2:7b",
		"mistral:7b-instruct": "123.dkr.ecr.us-east-1.amazonaws.com/ollama-mistral:7b-instruct",
	}, images)
}
