//go:build integration
// +build integration

package main

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common/testenv"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/content"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/policy"
)

const (
	articleID = "4a0e5b8c-6d2f-4f8e-9a51-0c3b7d2e1f10"
	tagID     = "9f1d7c3e-2b8a-4e6d-a1f0-3c5e7b9d0a21"
)

var (
	itPostgres = common.PostgresConfig{Host: "127.0.0.1", Port: 55432, User: "admin", Password: "admin123", DBName: "basyxTestDB"}
	itMongo    = common.MongoConfig{URI: "mongodb://127.0.0.1:57017", Database: "gateway_it"}
	itS3       = common.S3Config{
		Endpoint:     "http://127.0.0.1:59000",
		Region:       "us-east-1",
		Bucket:       "gateway-it",
		AccessKey:    "gateway",
		SecretKey:    "gateway-secret",
		UsePathStyle: true,
	}
)

func TestMain(m *testing.M) {
	os.Exit(testenv.RunComposeTestMain(m, testenv.ComposeTestMainOptions{
		PreDownBeforeUp: true,
		WaitForReady: func(ctx context.Context) error {
			return testenv.Retry(ctx, func(ctx context.Context) error {
				db, err := common.InitializeDatabase(ctx, itPostgres, "")
				if err != nil {
					return err
				}
				return db.Close()
			})
		},
	}))
}

func seedMongo(t *testing.T, ctx context.Context) common.MongoConfig {
	t.Helper()
	cfg := itMongo
	cfg.Collection = "entities_" + uuid.NewString()[:8]
	store, err := content.NewMongoStore(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = store.Close(ctx) }()

	require.NoError(t, store.Insert(ctx, &content.Entity{
		ID: articleID, Type: "node--article", Langcode: "en", Label: "Hello", Published: true,
		RevisionID: 1, DefaultRevision: true, LatestRevision: true,
		Attributes:    map[string]any{"body": "Hello world"},
		Relationships: map[string][]content.Identifier{"field_tags": {{Type: "taxonomy_term--tags", ID: tagID}}},
	}))
	require.NoError(t, store.Insert(ctx, &content.Entity{
		ID: tagID, Type: "taxonomy_term--tags", Langcode: "en", Label: "Go", Published: true,
		RevisionID: 1, DefaultRevision: true, LatestRevision: true,
	}))
	return cfg
}

func runPersistentScenario(t *testing.T, cfg *common.Config) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	settings, closeSettings, err := openSettingsStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(closeSettings)
	entities, closeContent, err := openContentStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(closeContent)

	srv := newTestServerWith(t, settings, entities)
	testenv.RunSuite(t, testenv.SuiteOptions{
		ConfigPath:    "testdata/it_config.json",
		BaseURL:       srv.URL,
		Client:        srv.Client(),
		TokenProvider: testTokens(),
	})
}

func TestIntegrationPostgresAndMongo(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Server.CacheEnabled = true
	cfg.Postgres = itPostgres
	cfg.Policy = common.PolicyConfig{Backend: "postgres", TableName: "gateway_policy_" + uuid.NewString()[:8]}
	cfg.Content.Backend = "mongo"
	cfg.Mongo = seedMongo(t, ctx)

	runPersistentScenario(t, cfg)

	db, err := common.InitializeDatabase(ctx, itPostgres, "")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	testenv.NewCheckPolicyRowsAction(db, cfg.Policy.TableName)(t, nil, testenv.Step{Action: testenv.ActionCheckPolicyRows, Want: 1})
}

func TestIntegrationS3Settings(t *testing.T) {
	ctx := context.Background()
	client, err := policy.NewS3Client(ctx, itS3)
	require.NoError(t, err)
	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(itS3.Bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		require.NoError(t, err)
	}

	cfg := testConfig()
	cfg.Server.CacheEnabled = true
	cfg.S3 = itS3
	cfg.Policy = common.PolicyConfig{Backend: "s3", ObjectKey: "gateway/" + uuid.NewString() + ".json"}
	cfg.Content.Backend = "mongo"
	cfg.Mongo = seedMongo(t, ctx)

	runPersistentScenario(t, cfg)

	out, err := client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(itS3.Bucket), Key: aws.String(cfg.Policy.ObjectKey)})
	require.NoError(t, err)
	require.NotNil(t, out.ContentLength)
}
