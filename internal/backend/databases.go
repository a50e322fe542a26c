package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/khabzox/fast-food/internal/domain"
)

func (c *Client) documentsURL(databaseID, collectionID string) string {
	return c.path("databases", databaseID, "collections", collectionID, "documents")
}

// ListDocuments returns one page of documents from a collection.
func (c *Client) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...string) (*domain.DocumentList, error) {
	var list domain.DocumentList
	u := withQueries(c.documentsURL(databaseID, collectionID), queries)
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &list); err != nil {
		return nil, fmt.Errorf("list documents in %s: %w", collectionID, err)
	}
	return &list, nil
}

// CreateDocument creates a document. Pass Unique as documentID to let the
// server pick one. data is any value that encodes to a JSON object.
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (*domain.Document, error) {
	body := struct {
		DocumentID string `json:"documentId"`
		Data       any    `json:"data"`
	}{documentID, data}

	var doc domain.Document
	if err := c.doJSON(ctx, http.MethodPost, c.documentsURL(databaseID, collectionID), body, &doc); err != nil {
		return nil, fmt.Errorf("create document in %s: %w", collectionID, err)
	}
	return &doc, nil
}

// GetDocument fetches a single document.
func (c *Client) GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (*domain.Document, error) {
	var doc domain.Document
	u := c.path("databases", databaseID, "collections", collectionID, "documents", documentID)
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &doc); err != nil {
		return nil, fmt.Errorf("get document %s in %s: %w", documentID, collectionID, err)
	}
	return &doc, nil
}

// DeleteDocument deletes a document. Deleting a missing document fails.
func (c *Client) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	u := c.path("databases", databaseID, "collections", collectionID, "documents", documentID)
	if err := c.doJSON(ctx, http.MethodDelete, u, nil, nil); err != nil {
		return fmt.Errorf("delete document %s in %s: %w", documentID, collectionID, err)
	}
	return nil
}
