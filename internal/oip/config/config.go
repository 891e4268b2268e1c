package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Store backend selection. DynamoDB is the production backend; sqlite
// serves local development and tests.
const (
	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
)

type Config struct {
	// Address is the HTTP bind address. OIP_ADDRESS overrides it.
	Address string

	// Environment names the deployment stage (dev, staging, prod).
	// It prefixes cluster-shared resources such as log groups.
	Environment string

	// Region is the AWS region for all SDK clients.
	Region string

	// DomainName is the public DNS zone instance endpoints are
	// synthesized under, e.g. "ollama.example.com".
	DomainName string

	// ECS deployment targets.
	ClusterName       string
	CPUTaskDefARN     string
	GPUTaskDefARN     string
	PrivateSubnetIDs  []string
	SecurityGroupID   string
	ExecutionRoleARN  string
	TaskRoleARN       string
	VPCID             string

	// Cognito user pool backing the account surface.
	UserPoolID string
	ClientID   string

	// DynamoDB table names.
	ModelsTable    string
	InstancesTable string
	UsersTable     string

	// MaxInstancesPerUser caps concurrently active (starting or
	// running) instances per user.
	MaxInstancesPerUser int

	// StoreBackend selects the persistence layer: StoreDynamoDB or
	// StoreSQLite.
	StoreBackend string

	// DataDir holds the sqlite database when StoreBackend is sqlite.
	DataDir string

	// ModelImages maps a model ID to its container image URI, fed
	// from <MODEL>_IMAGE_URI environment variables.
	ModelImages map[string]string
}

func New() (*Config, error) {
	cfg := &Config{
		Address:             getenv("OIP_ADDRESS", "0.0.0.0:8080"),
		Environment:         getenv("ENVIRONMENT", "dev"),
		Region:              getenv("AWS_REGION", "us-east-1"),
		DomainName:          os.Getenv("DOMAIN_NAME"),
		ClusterName:         os.Getenv("ECS_CLUSTER_NAME"),
		CPUTaskDefARN:       os.Getenv("CPU_TASK_DEFINITION_ARN"),
		GPUTaskDefARN:       os.Getenv("GPU_TASK_DEFINITION_ARN"),
		SecurityGroupID:     os.Getenv("ECS_SECURITY_GROUP_ID"),
		ExecutionRoleARN:    os.Getenv("TASK_EXECUTION_ROLE_ARN"),
		TaskRoleARN:         os.Getenv("TASK_ROLE_ARN"),
		VPCID:               os.Getenv("VPC_ID"),
		UserPoolID:          os.Getenv("COGNITO_USER_POOL_ID"),
		ClientID:            os.Getenv("COGNITO_CLIENT_ID"),
		ModelsTable:         getenv("MODELS_TABLE_NAME", "ollama-models"),
		InstancesTable:      getenv("INSTANCES_TABLE_NAME", "ollama-instances"),
		UsersTable:          getenv("USERS_TABLE_NAME", "ollama-users"),
		MaxInstancesPerUser: 5,
		StoreBackend:        getenv("OIP_STORE_BACKEND", StoreDynamoDB),
		DataDir:             getDataDir(),
		ModelImages:         getModelImages(),
	}

	if subnets := os.Getenv("PRIVATE_SUBNET_IDS"); subnets != "" {
		for _, id := range strings.Split(subnets, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.PrivateSubnetIDs = append(cfg.PrivateSubnetIDs, id)
			}
		}
	}

	if raw := os.Getenv("MAX_INSTANCES_PER_USER"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MAX_INSTANCES_PER_USER %q", raw)
		}
		cfg.MaxInstancesPerUser = n
	}

	switch cfg.StoreBackend {
	case StoreDynamoDB, StoreSQLite:
	default:
		return nil, fmt.Errorf("invalid OIP_STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDataDir() string {
	if dir := os.Getenv("OIP_DATA_DIR"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "oip")
	}
	return filepath.Join(".", "data")
}

// getModelImages collects <NAME>_IMAGE_URI variables into a model-ID
// keyed map. The first underscore separates family from tag and later
// underscores are tag dashes, so LLAMA2_7B_IMAGE_URI is "llama2:7b"
// and MISTRAL_7B_INSTRUCT_IMAGE_URI is "mistral:7b-instruct".
func getModelImages(environ ...string) map[string]string {
	env := environ
	if len(env) == 0 {
		env = os.Environ()
	}
	images := make(map[string]string)
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || v == "" || !strings.HasSuffix(k, "_IMAGE_URI") {
			continue
		}
		name := strings.TrimSuffix(k, "_IMAGE_URI")
		if name == "" {
			continue
		}
		images[modelIDFromEnvName(name)] = v
	}
	return images
}

func modelIDFromEnvName(name string) string {
	name = strings.ToLower(name)
	family, tag, ok := strings.Cut(name, "_")
	if !ok {
		return name
	}
	return family + ":" + strings.ReplaceAll(tag, "_", "-")
}
