package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every request unless the caller configures otherwise.
const DefaultTimeout = 30 * time.Second

// Error is a failed exchange with the backend. Message holds the server's
// error text verbatim when the server supplied one.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("api: %s: status %d: %s", e.Op, e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("api: %s: %s", e.Op, e.Message)
	default:
		return fmt.Sprintf("api: %s: status %d", e.Op, e.Status)
	}
}

// Message returns the user-facing text for err: the server's message when
// present, otherwise the error string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// serverReported is implemented by response bodies that carry an error field
// alongside a 2xx status.
type serverReported interface {
	serverError() string
}

func (r *CatalogResponse) serverError() string          { return r.Error }
func (r *ConversationListResponse) serverError() string { return r.Error }
func (r *ConversationResponse) serverError() string     { return r.Error }
func (r *ChatResponse) serverError() string             { return r.Error }
func (r *FolderContentsResponse) serverError() string   { return r.Error }
func (r *MessageResponse) serverError() string          { return r.Error }
func (r *FileContentResponse) serverError() string      { return r.Error }
func (r *UploadResponse) serverError() string           { return r.Error }
func (r *SearchResponse) serverError() string           { return r.Error }

// Client talks to the document chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the backend address the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	var out StatsResponse
	if err := c.doJSON(ctx, "stats", http.MethodGet, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Catalog(ctx context.Context) (*CatalogResponse, error) {
	var out CatalogResponse
	if err := c.doJSON(ctx, "catalog", http.MethodGet, "/api/all-documents-and-folders", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListConversations(ctx context.Context) ([]ConversationItem, error) {
	var out ConversationListResponse
	if err := c.doJSON(ctx, "list conversations", http.MethodGet, "/api/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

func (c *Client) GetConversation(ctx context.Context, id string) (*ConversationResponse, error) {
	var out ConversationResponse
	path := "/api/conversations/" + url.PathEscape(id)
	if err := c.doJSON(ctx, "get conversation", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	var out MessageResponse
	path := "/api/conversations/" + url.PathEscape(id)
	return c.doJSON(ctx, "delete conversation", http.MethodDelete, path, nil, &out)
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.SelectedDocuments == nil {
		req.SelectedDocuments = []string{}
	}
	var out ChatResponse
	if err := c.doJSON(ctx, "chat", http.MethodPost, "/api/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FolderContents(ctx context.Context, id string) (*FolderContentsResponse, error) {
	var out FolderContentsResponse
	path := "/api/folder/" + url.PathEscape(id)
	if err := c.doJSON(ctx, "folder contents", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateFolder(ctx context.Context, req CreateFolderRequest) error {
	var out MessageResponse
	return c.doJSON(ctx, "create folder", http.MethodPost, "/api/folder", req, &out)
}

// DeleteFolder removes a folder and returns the server's confirmation text.
func (c *Client) DeleteFolder(ctx context.Context, id string) (string, error) {
	var out MessageResponse
	path := "/api/folder/" + url.PathEscape(id)
	if err := c.doJSON(ctx, "delete folder", http.MethodDelete, path, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// DeleteFile removes a file and returns the server's confirmation text.
func (c *Client) DeleteFile(ctx context.Context, id string) (string, error) {
	var out MessageResponse
	path := "/api/file/" + url.PathEscape(id)
	if err := c.doJSON(ctx, "delete file", http.MethodDelete, path, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Search runs a semantic search over the knowledge base.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.NResults <= 0 {
		req.NResults = 10
	}
	var out SearchResponse
	if err := c.doJSON(ctx, "search", http.MethodPost, "/api/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FileContent fetches the extracted text of a text-like document.
func (c *Client) FileContent(ctx context.Context, id string) (string, error) {
	var out FileContentResponse
	path := "/api/file-content/" + url.PathEscape(id)
	if err := c.doJSON(ctx, "file content", http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// FileBytes fetches the raw byte stream of a binary document.
func (c *Client) FileBytes(ctx context.Context, id string) ([]byte, error) {
	path := "/api/file-content/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("api: file bytes: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: file bytes: request failed (is the server running?): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.parseErrorResponse("file bytes", resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: file bytes: read body: %w", err)
	}
	return data, nil
}

// Upload sends one file as multipart field "file" tagged with folder_id.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader, folderID string) (*UploadResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(mw, filename, r, folderID)
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/upload"), pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("api: upload: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: upload: request failed (is the server running?): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.parseErrorResponse("upload", resp)
	}

	var out UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Op: "upload", Status: resp.StatusCode, Message: "Invalid response from server"}
	}
	if out.Error != "" {
		return nil, &Error{Op: "upload", Status: resp.StatusCode, Message: out.Error}
	}
	return &out, nil
}

func writeUploadForm(mw *multipart.Writer, filename string, r io.Reader, folderID string) error {
	if err := mw.WriteField("folder_id", folderID); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

// GetSettings decodes the stored settings record into out.
func (c *Client) GetSettings(ctx context.Context, out any) error {
	return c.doJSON(ctx, "get settings", http.MethodGet, "/api/settings", nil, out)
}

// SaveSettings stores the settings record.
func (c *Client) SaveSettings(ctx context.Context, settings any) error {
	var out MessageResponse
	return c.doJSON(ctx, "save settings", http.MethodPost, "/api/settings", settings, &out)
}

// Ping checks that the backend answers.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/stats"), nil)
	if err != nil {
		return fmt.Errorf("api: ping: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: server unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse("ping", resp)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: %s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("api: %s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s: request failed (is the server running?): %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.parseErrorResponse(op, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("api: %s: decode response: %w", op, err)
	}
	if sr, ok := out.(serverReported); ok && sr.serverError() != "" {
		return &Error{Op: op, Status: resp.StatusCode, Message: sr.serverError()}
	}
	return nil
}

func (c *Client) parseErrorResponse(operation string, resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: %s: status %d: read error body: %w", operation, resp.StatusCode, err)
	}

	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return &Error{Op: operation, Status: resp.StatusCode, Message: apiErr.Error}
	}

	return &Error{Op: operation, Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}
