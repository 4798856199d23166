package scopus

import (
	"context"
	"encoding/json"

	"publist/src/internal/pipeline"
)

// Source adapts a Client to the pipeline's identifier source contract.
type Source struct {
	Client   *Client
	AuthorID string
}

// Name identifies the source in logs and raw dump file names.
func (s Source) Name() string { return "Scopus" }

// Collect pages through the author's documents and extracts their DOIs.
// Raw holds the pages as a JSON array.
func (s Source) Collect(ctx context.Context) (pipeline.Collection, error) {
	entries, pages, err := s.Client.AuthorDocuments(ctx, s.AuthorID)
	if err != nil {
		return pipeline.Collection{}, err
	}
	msgs := make([]json.RawMessage, len(pages))
	for i, p := range pages {
		msgs[i] = p
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		return pipeline.Collection{}, err
	}
	return pipeline.Collection{DOIs: ExtractDOIs(entries), Raw: raw}, nil
}
