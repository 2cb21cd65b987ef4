// Package drive is a client for the handful of Google Drive v3 operations
// the upload route needs: file upload into a parent folder, folder
// create/find/ensure-path, move, and metadata lookup.
//
// Folder lookup by name is not uniqueness-safe; Drive allows sibling folders
// with the same name and the first match wins. Accepted limitation.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/frankcoz86/printora-backend/internal/relay"
)

const (
	defaultBaseURL   = "https://www.googleapis.com/drive/v3"
	defaultUploadURL = "https://www.googleapis.com/upload/drive/v3"
	folderMimeType   = "application/vnd.google-apps.folder"
	callTimeout      = 30 * time.Second
	fileFields       = "id,name,mimeType,size,webViewLink,parents"
)

// File is the metadata subset this service reads back from Drive.
type File struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	MimeType    string   `json:"mimeType"`
	Size        int64    `json:"size,string"`
	WebViewLink string   `json:"webViewLink"`
	Parents     []string `json:"parents"`
}

// Client calls the Drive REST API with service-account credentials.
type Client struct {
	baseURL   string
	uploadURL string
	tokens    tokenProvider
	relay     *relay.Client
	logger    *slog.Logger
}

// NewClient builds a Drive client from a service-account key file.
func NewClient(keyPath string, rc *relay.Client, logger *slog.Logger) (*Client, error) {
	tokens, err := newTokenSource(keyPath, rc)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   defaultBaseURL,
		uploadURL: defaultUploadURL,
		tokens:    tokens,
		relay:     rc,
		logger:    logger,
	}, nil
}

// UploadFile sends a staged local file to Drive under parentID using a
// multipart/related request and returns the created file's metadata.
func (c *Client) UploadFile(ctx context.Context, localPath, name, mimeType, parentID string) (*File, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("reading staged file: %w", err)
	}

	metadata := map[string]any{"name": name}
	if parentID != "" {
		metadata["parents"] = []string{parentID}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("encoding file metadata: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, err
	}
	if _, err := metaPart.Write(metadataJSON); err != nil {
		return nil, err
	}

	mediaHeader := textproto.MIMEHeader{}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	mediaHeader.Set("Content-Type", mimeType)
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(mediaPart, bytes.NewReader(content)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	token, err := c.tokens.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	endpoint := c.uploadURL + "/files?uploadType=multipart&fields=" + url.QueryEscape(fileFields)
	result, err := c.relay.Do(ctx, relay.Request{
		URL:     endpoint,
		Method:  http.MethodPost,
		Header:  header,
		RawBody: body.Bytes(),
		Timeout: callTimeout,
	})
	if err != nil {
		return nil, err
	}
	return decodeFile(result)
}

// CreateFolder creates a folder under parentID.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*File, error) {
	metadata := map[string]any{
		"name":     name,
		"mimeType": folderMimeType,
	}
	if parentID != "" {
		metadata["parents"] = []string{parentID}
	}
	result, err := c.do(ctx, http.MethodPost, "/files?fields="+url.QueryEscape(fileFields), metadata)
	if err != nil {
		return nil, err
	}
	return decodeFile(result)
}

// FindFolder looks up a non-trashed folder by exact name under parentID.
// Returns nil with no error when nothing matches; first match wins.
func (c *Client) FindFolder(ctx context.Context, name, parentID string) (*File, error) {
	escaped := strings.ReplaceAll(name, `'`, `\'`)
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escaped, folderMimeType)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}
	path := "/files?q=" + url.QueryEscape(query) + "&fields=" + url.QueryEscape("files("+fileFields+")")

	result, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var listing struct {
		Files []File `json:"files"`
	}
	if err := decodeInto(result, &listing); err != nil {
		return nil, err
	}
	if len(listing.Files) == 0 {
		return nil, nil
	}
	return &listing.Files[0], nil
}

// EnsureFolderPath walks a slash-separated path under rootID, creating any
// missing segment in order, and returns the final folder.
func (c *Client) EnsureFolderPath(ctx context.Context, rootID, path string) (*File, error) {
	parentID := rootID
	var current *File
	for _, segment := range strings.Split(path, "/") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		folder, err := c.FindFolder(ctx, segment, parentID)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			folder, err = c.CreateFolder(ctx, segment, parentID)
			if err != nil {
				return nil, err
			}
		}
		current = folder
		parentID = folder.ID
	}
	if current == nil {
		return nil, fmt.Errorf("folder path %q has no segments", path)
	}
	return current, nil
}

// MoveFile reparents a file from one folder to another.
func (c *Client) MoveFile(ctx context.Context, fileID, fromParentID, toParentID string) (*File, error) {
	path := "/files/" + url.PathEscape(fileID) +
		"?addParents=" + url.QueryEscape(toParentID) +
		"&removeParents=" + url.QueryEscape(fromParentID) +
		"&fields=" + url.QueryEscape(fileFields)
	result, err := c.do(ctx, http.MethodPatch, path, map[string]any{})
	if err != nil {
		return nil, err
	}
	return decodeFile(result)
}

// GetFile fetches metadata for one file.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	path := "/files/" + url.PathEscape(fileID) + "?fields=" + url.QueryEscape(fileFields)
	result, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeFile(result)
}

func (c *Client) do(ctx context.Context, method, path string, jsonBody any) (*relay.Result, error) {
	token, err := c.tokens.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	return c.relay.Do(ctx, relay.Request{
		URL:      c.baseURL + path,
		Method:   method,
		Header:   header,
		JSONBody: jsonBody,
		Timeout:  callTimeout,
	})
}

func decodeFile(result *relay.Result) (*File, error) {
	var file File
	if err := decodeInto(result, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func decodeInto(result *relay.Result, out any) error {
	if !result.Succeeded {
		msg := driveErrorMessage(result.Payload)
		if msg == "" {
			msg = fmt.Sprintf("Drive returned status %d", result.StatusCode)
		}
		return relay.NewError(relay.KindUpstreamHTTP, "%s", msg)
	}
	if !result.Payload.Structured || result.Payload.JSON == nil {
		return relay.NewError(relay.KindUpstreamLogical, "Drive returned an unreadable response")
	}
	encoded, err := json.Marshal(result.Payload.JSON)
	if err != nil {
		return relay.NewError(relay.KindUpstreamLogical, "Drive returned an unreadable response")
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return relay.NewError(relay.KindUpstreamLogical, "Drive returned an unexpected response shape")
	}
	return nil
}

func driveErrorMessage(p relay.Payload) string {
	obj, ok := p.JSON.(map[string]any)
	if !ok {
		return ""
	}
	if errObj, ok := obj["error"].(map[string]any); ok {
		if msg, ok := errObj["message"].(string); ok {
			return msg
		}
	}
	return p.ErrorMessage()
}
