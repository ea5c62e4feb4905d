// Package mongotest starts a throwaway MongoDB for repository tests.
package mongotest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"lessonhub/pkg/mongodb"
)

// Image is the MongoDB image used by tests.
const Image = "mongo:7"

// NewDatabase returns a fresh database on a containerised MongoDB. The test
// is skipped under -short or when no container provider is available.
func NewDatabase(t *testing.T) (*mongo.Client, *mongo.Database) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcmongo.Run(ctx, Image)
	if err != nil {
		t.Fatalf("start mongodb container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate mongodb container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: uri, Database: "test_" + uuid.NewString()[:8]})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})

	return client, db
}
