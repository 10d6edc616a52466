package utils

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
)

func TestNewS3ClientCustomEndpoint(t *testing.T) {
	client, err := NewS3Client(context.Background(), ObjectStoreConfig{
		Endpoint:        "https://account.r2.cloudflarestorage.com",
		AccessKeyID:     "key",
		AccessKeySecret: "secret",
	})
	if err != nil {
		t.Fatalf("NewS3Client: %v", err)
	}

	opts := client.Options()
	if got := aws.ToString(opts.BaseEndpoint); got != "https://account.r2.cloudflarestorage.com" {
		t.Fatalf("BaseEndpoint = %q", got)
	}
	if !opts.UsePathStyle {
		t.Fatal("UsePathStyle = false, want true for custom endpoints")
	}
	if opts.Region != "auto" {
		t.Fatalf("Region = %q, want auto", opts.Region)
	}

	creds, err := opts.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve credentials: %v", err)
	}
	if creds.AccessKeyID != "key" {
		t.Fatalf("AccessKeyID = %q, want key", creds.AccessKeyID)
	}
}

func TestNewS3ClientDefaultsToVirtualHosting(t *testing.T) {
	client, err := NewS3Client(context.Background(), ObjectStoreConfig{Region: "eu-west-1"})
	if err != nil {
		t.Fatalf("NewS3Client: %v", err)
	}
	opts := client.Options()
	if opts.BaseEndpoint != nil || opts.UsePathStyle {
		t.Fatalf("endpoint = %v, path style = %v, want AWS defaults", opts.BaseEndpoint, opts.UsePathStyle)
	}
	if opts.Region != "eu-west-1" {
		t.Fatalf("Region = %q, want eu-west-1", opts.Region)
	}
}
