package api

import "time"

// Identity is the authenticated identity returned by the login endpoint.
type Identity struct {
	UserID string `json:"user_id"`
	Role   string `json:"user_role"`
}

// Parameters is the per-user retrieval configuration stored by the backend.
// Field set mirrors the parameters endpoint contract; unknown fields are
// ignored, absent fields decode to zero values.
type Parameters struct {
	ModelName           string   `json:"model_name"`
	AvailableModels     []string `json:"available_models"`
	ChunkSize           int      `json:"chunk_size"`
	ChunkOverlap        int      `json:"chunk_overlap"`
	SimilarityThreshold float64  `json:"similarity_threshold"`
	TopK                int      `json:"k"`
	PromptTemplate      string   `json:"prompt_template"`
}

// Source identifies a document chunk the backend used to ground an answer.
type Source struct {
	Source     string `json:"source"`
	Collection string `json:"collection"`
	Page       int    `json:"page"`
}

// Answer is the backend's response to a query.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Document describes an indexed document.
type Document struct {
	Source     string   `json:"source"`
	Collection string   `json:"collection"`
	Tags       []string `json:"tags"`
}

// HistoryEntry is one past query/answer pair.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadInput describes a document upload request.
type UploadInput struct {
	// Path is the local file to upload.
	Path string
	// Collection is the target collection name.
	Collection string
	// UserID attributes the upload to the authenticated user.
	UserID string
	// Tags are attached to the document for later filtering.
	Tags []string
	// Archive selects the ZIP ingestion endpoint instead of single-file add.
	Archive bool
}

// Wire-level response envelopes. The backend wraps lists in named objects.
type (
	authResponse struct {
		UserID string `json:"user_id"`
		Role   string `json:"user_role"`
	}

	collectionsResponse struct {
		Collections []string `json:"collections"`
	}

	tagsResponse struct {
		Tags []string `json:"tags"`
	}

	documentsResponse struct {
		Documents []Document `json:"documents"`
	}

	historyResponse struct {
		History []HistoryEntry `json:"history"`
	}
)
