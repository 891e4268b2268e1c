// Command oipm seeds the model catalog from a YAML file. It writes to
// whichever store backend the server is configured for, so it can run
// against the production DynamoDB tables or a local sqlite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	_ "github.com/jimmicro/version"
	"github.com/ollamacloud/oip/internal/oip/config"
	"github.com/ollamacloud/oip/internal/oip/repository"
	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"gopkg.in/yaml.v3"
)

type catalog struct {
	Models []model.Model `yaml:"models"`
}

func main() {
	file := flag.String("f", "models.yaml", "catalog file to load")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to create config: %v", err)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("failed to read catalog: %v", err)
	}
	var cat catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		log.Fatalf("failed to parse catalog: %v", err)
	}
	if len(cat.Models) == 0 {
		log.Fatalf("catalog %s contains no models", *file)
	}

	ctx := context.Background()
	models, closer, err := openModelStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer closer()

	for i := range cat.Models {
		m := &cat.Models[i]
		if m.ID == "" {
			log.Fatalf("catalog entry %d is missing model_id", i)
		}
		if m.Status == "" {
			m.Status = model.ModelStatusAvailable
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		// A model built into the platform image set wins over a
		// catalog-supplied URI.
		if uri, ok := cfg.ModelImages[m.ID]; ok {
			m.ImageURI = uri
		}
		if err := models.Put(ctx, m); err != nil {
			log.Fatalf("failed to store model %s: %v", m.ID, err)
		}
		fmt.Printf("stored %s (%s)\n", m.ID, m.Name)
	}

	fmt.Printf("seeded %d models\n", len(cat.Models))
}

func openModelStore(ctx context.Context, cfg *config.Config) (repository.ModelRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		return repository.NewDynamoModelRepository(client, cfg.ModelsTable), func() {}, nil
	case config.StoreSQLite:
		store, err := repository.New(filepath.Join(cfg.DataDir, "oip.db"))
		if err != nil {
			return nil, nil, err
		}
		return repository.NewModelRepository(store.DB()), func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
