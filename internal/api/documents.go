package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Collections lists the document collections known to the backend.
func (c *Client) Collections(ctx context.Context) ([]string, error) {
	var resp collectionsResponse
	if err := c.makeRequest(ctx, "GET", "/collection/get", nil, &resp); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return resp.Collections, nil
}

// CreateCollection creates a new, empty collection.
func (c *Client) CreateCollection(ctx context.Context, name string) error {
	req := struct {
		CollectionName string `json:"collection_name"`
	}{CollectionName: name}

	if err := c.makeRequest(ctx, "POST", "/collection/create", req, nil); err != nil {
		return fmt.Errorf("create collection %q: %w", name, err)
	}

	c.logger.Debug("collection created", "name", name)
	return nil
}

// Tags lists all tags attached to any indexed document.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	var resp tagsResponse
	if err := c.makeRequest(ctx, "GET", "/document/get_tags", nil, &resp); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return resp.Tags, nil
}

// Documents lists the documents in a collection.
func (c *Client) Documents(ctx context.Context, collection string) ([]Document, error) {
	var resp documentsResponse
	path := "/document/get?collection=" + url.QueryEscape(collection)
	if err := c.makeRequest(ctx, "GET", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list documents in %q: %w", collection, err)
	}
	return resp.Documents, nil
}

// DocumentsByTag lists the documents carrying a tag, across collections.
func (c *Client) DocumentsByTag(ctx context.Context, tag string) ([]Document, error) {
	var resp documentsResponse
	path := "/document/get_by_tag?tag=" + url.QueryEscape(tag)
	if err := c.makeRequest(ctx, "GET", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list documents tagged %q: %w", tag, err)
	}
	return resp.Documents, nil
}

// Upload ingests a local file into a collection via multipart form upload.
// Archive inputs go to the ZIP endpoint, which unpacks and indexes every
// contained file server-side.
//
// Parameters:
//   - ctx: Context for the request
//   - input: Upload description (path, collection, user, tags)
//
// Returns:
//   - error: ErrUnsupportedFile for file types the ingestion pipeline cannot
//     index; otherwise read or backend failures
func (c *Client) Upload(ctx context.Context, input UploadInput) error {
	if err := checkUploadType(input.Path, input.Archive); err != nil {
		return err
	}

	file, err := os.Open(input.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", input.Path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	body, contentType, err := buildUploadBody(file, filepath.Base(input.Path), input)
	if err != nil {
		return err
	}

	endpoint := "/document/add"
	if input.Archive {
		endpoint = "/document/add_zip"
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("upload %s: %w", input.Path, err)
	}

	c.logger.Info("document uploaded",
		"path", input.Path,
		"collection", input.Collection,
		"archive", input.Archive)
	return nil
}

// indexableExtensions are the file types the ingestion pipeline accepts as
// single-document uploads. Archives go through the ZIP endpoint instead.
var indexableExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// checkUploadType rejects files the backend would fail to index, before any
// bytes are read or sent.
func checkUploadType(path string, archive bool) error {
	ext := strings.ToLower(filepath.Ext(path))
	if archive {
		if ext != ".zip" {
			return fmt.Errorf("%w: archive upload requires a .zip file, got %q", ErrUnsupportedFile, ext)
		}
		return nil
	}
	if !indexableExtensions[ext] {
		return fmt.Errorf("%w: %q (supported: .pdf, .docx, .txt, .md)", ErrUnsupportedFile, ext)
	}
	return nil
}

// buildUploadBody assembles the multipart form the ingestion endpoints
// expect: the file plus collection, user_id, and a JSON-encoded tag list.
func buildUploadBody(file io.Reader, filename string, input UploadInput) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("reading upload content: %w", err)
	}

	tagsJSON, err := json.Marshal(input.Tags)
	if err != nil {
		return nil, "", fmt.Errorf("encoding tags: %w", err)
	}

	fields := map[string]string{
		"collection": input.Collection,
		"user_id":    input.UserID,
		"tags":       string(tagsJSON),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing upload body: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}

// DeleteDocument removes one document from a collection.
func (c *Client) DeleteDocument(ctx context.Context, source, collection string) error {
	q := url.Values{}
	q.Set("source", source)
	q.Set("collection", collection)

	path := "/document/delete?" + q.Encode()
	if err := c.makeRequest(ctx, "DELETE", path, nil, nil); err != nil {
		return fmt.Errorf("delete document %q: %w", source, err)
	}

	c.logger.Info("document deleted", "source", source, "collection", collection)
	return nil
}

// DeleteDocumentsByTag removes every document carrying a tag.
func (c *Client) DeleteDocumentsByTag(ctx context.Context, tag string) error {
	path := "/document/delete_by_tag?tag=" + url.QueryEscape(tag)
	if err := c.makeRequest(ctx, "DELETE", path, nil, nil); err != nil {
		return fmt.Errorf("delete documents tagged %q: %w", tag, err)
	}

	c.logger.Info("documents deleted by tag", "tag", tag)
	return nil
}
