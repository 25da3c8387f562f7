package finding

import "fmt"

// Evidence represents a document snippet retrieved from the knowledge base
// in support of a specialist analysis. Evidence is created by the retrieval
// collaborator and attached read-only to a Finding.
type Evidence struct {
	// Title is the title of the source document.
	Title string `json:"title"`

	// URI is the location of the source document.
	URI string `json:"uri"`

	// Snippet is the relevant passage from the document.
	Snippet string `json:"snippet"`

	// Source identifies where the document came from (e.g., a GCS path
	// or knowledge-base collection name).
	Source string `json:"source"`
}

// Validate checks that the evidence has the required fields.
func (e Evidence) Validate() error {
	if e.Title == "" {
		return fmt.Errorf("evidence title is required")
	}
	if e.Snippet == "" {
		return fmt.Errorf("evidence snippet is required")
	}
	return nil
}
