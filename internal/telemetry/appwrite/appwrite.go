// Package appwrite stores telemetry documents in an Appwrite database
// collection through the Appwrite SDK.
package appwrite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/appwrite/sdk-for-go/appwrite"
	"github.com/appwrite/sdk-for-go/client"
	"github.com/appwrite/sdk-for-go/databases"
	"github.com/appwrite/sdk-for-go/id"
	"github.com/appwrite/sdk-for-go/models"

	"valentine/internal/telemetry"
)

var (
	// ErrNotConfigured is returned by New when a required setting is empty.
	ErrNotConfigured = errors.New("appwrite: endpoint, project, database and collection are required")
	// ErrEmptyID is returned by UpdateLog for an empty document id.
	ErrEmptyID = errors.New("appwrite: empty document id")
)

// Config identifies the collection documents are written to.
type Config struct {
	Endpoint     string
	ProjectID    string
	DatabaseID   string
	CollectionID string
	APIKey       string
}

// Configured reports whether all required settings are present.
func (c Config) Configured() bool {
	return c.Endpoint != "" && c.ProjectID != "" && c.DatabaseID != "" && c.CollectionID != ""
}

// Client implements telemetry.Store.
type Client struct {
	cfg Config
	db  *databases.Databases
}

var _ telemetry.Store = (*Client)(nil)

// New creates a client for the configured collection.
func New(cfg Config) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	opts := []client.ClientOption{
		sdk.WithEndpoint(cfg.Endpoint),
		sdk.WithProject(cfg.ProjectID),
	}
	if cfg.APIKey != "" {
		opts = append(opts, sdk.WithKey(cfg.APIKey))
	}
	return &Client{cfg: cfg, db: sdk.NewDatabases(sdk.NewClient(opts...))}, nil
}

// CreateLog creates a document and returns its id.
func (c *Client) CreateLog(ctx context.Context, rec telemetry.Record) (string, error) {
	doc, err := withContext(ctx, func() (*models.Document, error) {
		return c.db.CreateDocument(c.cfg.DatabaseID, c.cfg.CollectionID, id.Unique(), rec)
	})
	if err != nil {
		return "", fmt.Errorf("appwrite: create document: %w", err)
	}
	if doc == nil || doc.Id == "" {
		return "", errors.New("appwrite: response without document id")
	}
	return doc.Id, nil
}

// UpdateLog merges patch into document docID.
func (c *Client) UpdateLog(ctx context.Context, docID string, patch telemetry.Patch) error {
	if docID == "" {
		return ErrEmptyID
	}
	_, err := withContext(ctx, func() (*models.Document, error) {
		return c.db.UpdateDocument(c.cfg.DatabaseID, c.cfg.CollectionID, docID,
			c.db.WithUpdateDocumentData(patch))
	})
	if err != nil {
		return fmt.Errorf("appwrite: update document %s: %w", docID, err)
	}
	return nil
}

// withContext runs a blocking SDK call and gives up when ctx ends. The SDK
// takes no context, so an abandoned call finishes in the background.
func withContext[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
