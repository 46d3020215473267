package api

// RootFolderID is the folder id that denotes "no folder scoping".
const RootFolderID = "root"

// StatsResponse is the response body for GET /api/stats.
type StatsResponse struct {
	TotalFiles   int `json:"total_files"`
	TotalFolders int `json:"total_folders"`
	TotalChunks  int `json:"total_chunks"`
}

// FolderInfo is a folder as returned by the catalog and breadcrumb endpoints.
type FolderInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// FileInfo is a document summary as returned by the catalog endpoint.
type FileInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Extension  string `json:"extension"`
	FolderID   string `json:"folder_id"`
	Size       int64  `json:"size"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
}

// CatalogResponse is the response body for GET /api/all-documents-and-folders.
type CatalogResponse struct {
	Folders []FolderInfo `json:"folders"`
	Files   []FileInfo   `json:"files"`
	Error   string       `json:"error,omitempty"`
}

// ConversationItem is a single entry of the conversation list.
type ConversationItem struct {
	ConversationID    string        `json:"conversation_id"`
	Title             string        `json:"title"`
	SelectedDocuments []string      `json:"selected_documents"`
	Messages          []MessageInfo `json:"messages,omitempty"`
}

// ConversationListResponse is the response body for GET /api/conversations.
type ConversationListResponse struct {
	Conversations []ConversationItem `json:"conversations"`
	Error         string             `json:"error,omitempty"`
}

// Source is a retrieval source attached to an assistant reply.
// Document sources carry a chunk index and similarity, web sources a URL and snippet.
type Source struct {
	Filename   string  `json:"filename"`
	Type       string  `json:"type,omitempty"`
	ChunkIndex int     `json:"chunk_index,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
	URL        string  `json:"url,omitempty"`
	Snippet    string  `json:"snippet,omitempty"`
}

// MessageInfo is a stored message. The backend uses role "bot" for replies.
type MessageInfo struct {
	Role         string   `json:"role"`
	Content      string   `json:"content"`
	Sources      []Source `json:"sources,omitempty"`
	ContextParts []string `json:"context_parts,omitempty"`
	Timestamp    string   `json:"timestamp"`
}

// ConversationResponse is the response body for GET /api/conversations/{id}.
type ConversationResponse struct {
	ConversationID string        `json:"conversation_id,omitempty"`
	Messages       []MessageInfo `json:"messages"`
	Error          string        `json:"error,omitempty"`
}

// ChatRequest is the request body for POST /api/chat.
// ConversationID is serialized as null until the server assigns one.
type ChatRequest struct {
	Message           string   `json:"message"`
	ConversationID    *string  `json:"conversation_id"`
	FolderID          string   `json:"folder_id"`
	SelectedDocuments []string `json:"selected_documents"`
	LLMProvider       string   `json:"llm_provider"`
	WebSearchEnabled  bool     `json:"web_search_enabled"`
}

// ChatResponse is the response body for POST /api/chat.
type ChatResponse struct {
	Response       string   `json:"response"`
	Sources        []Source `json:"sources,omitempty"`
	ContextParts   []string `json:"context_parts,omitempty"`
	ConversationID string   `json:"conversation_id"`
	Error          string   `json:"error,omitempty"`
}

// FolderItem is one entry of a folder listing; Type is "folder" or "file".
type FolderItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Extension  string `json:"extension,omitempty"`
	FolderID   string `json:"folder_id,omitempty"`
	Size       int64  `json:"size,omitempty"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// FolderContentsResponse is the response body for GET /api/folder/{id}.
type FolderContentsResponse struct {
	Contents   []FolderItem `json:"contents"`
	Breadcrumb []FolderInfo `json:"breadcrumb"`
	Error      string       `json:"error,omitempty"`
}

// CreateFolderRequest is the request body for POST /api/folder.
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

// MessageResponse is the generic {message, error} body used by deletes and saves.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FileContentResponse is the response body for GET /api/file-content/{id}.
type FileContentResponse struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// UploadResponse is the response body for POST /api/upload.
type UploadResponse struct {
	Message     string   `json:"message,omitempty"`
	Files       []string `json:"files,omitempty"`
	TotalChunks int      `json:"total_chunks,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// ErrorResponse is the body of non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SearchRequest is the request body for POST /api/search.
type SearchRequest struct {
	Query             string   `json:"query"`
	FolderID          string   `json:"folder_id,omitempty"`
	SelectedDocuments []string `json:"selected_documents,omitempty"`
	NResults          int      `json:"n_results"`
}

// SearchResult is one retrieved chunk.
type SearchResult struct {
	Content         string  `json:"content"`
	Filename        string  `json:"filename"`
	ChunkIndex      int     `json:"chunk_index"`
	FolderID        string  `json:"folder_id"`
	SimilarityScore float64 `json:"similarity_score"`
	UploadDate      string  `json:"upload_date"`
}

// SearchResponse is the response body for POST /api/search.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	Query        string         `json:"query"`
	TotalResults int            `json:"total_results"`
	Error        string         `json:"error,omitempty"`
}
