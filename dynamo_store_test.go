package main

import (
	"context"
	"os"
	"testing"
	"time"
)

// Integration tests require DynamoDB Local running on DYNAMODB_ENDPOINT with
// a "reasons" table keyed on the string attribute PK.
// Run with: DYNAMODB_ENDPOINT=http://localhost:8000 go test -run Integration ./...

func skipIfNoEndpoint(t *testing.T) {
	t.Helper()
	if os.Getenv("DYNAMODB_ENDPOINT") == "" {
		t.Skip("DYNAMODB_ENDPOINT not set; skipping integration test")
	}
}

func testDynamoStore(t *testing.T) *DynamoStore {
	t.Helper()
	cfg := Config{
		AWSRegion:       "us-east-1",
		DynamoEndpoint:  os.Getenv("DYNAMODB_ENDPOINT"),
		DynamoTableName: "reasons",
	}
	// Dummy credentials for DynamoDB Local
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	store, err := NewDynamoStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

// uniqueUserID keeps reruns against the same table from seeing old items.
func uniqueUserID() uint64 {
	return uint64(time.Now().UnixNano())
}

func TestIntegration_PutAndGet(t *testing.T) {
	skipIfNoEndpoint(t)
	store := testDynamoStore(t)
	ctx := context.Background()
	userID := uniqueUserID()

	_, found, err := store.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatal("expected no record for new user")
	}

	if err := store.Put(ctx, userID, "banned for spam"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, found, err := store.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found || rec.Reason != "banned for spam" {
		t.Fatalf("unexpected record: %+v found=%v", rec, found)
	}
}

func TestIntegration_Overwrite(t *testing.T) {
	skipIfNoEndpoint(t)
	store := testDynamoStore(t)
	ctx := context.Background()
	userID := uniqueUserID()

	store.Put(ctx, userID, "first")
	store.Put(ctx, userID, "second")

	rec, _, err := store.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Reason != "second" {
		t.Fatalf("expected second, got %q", rec.Reason)
	}
}
