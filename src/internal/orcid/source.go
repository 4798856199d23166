package orcid

import (
	"context"

	"publist/src/internal/pipeline"
)

// Source adapts a Client to the pipeline's identifier source contract.
type Source struct {
	Client *Client
	ID     string
}

// Name identifies the source in logs and raw dump file names.
func (s Source) Name() string { return "ORCID" }

// Collect fetches the record and extracts its DOIs.
func (s Source) Collect(ctx context.Context) (pipeline.Collection, error) {
	rec, err := s.Client.FetchRecord(ctx, s.ID)
	if err != nil {
		return pipeline.Collection{}, err
	}
	return pipeline.Collection{DOIs: ExtractDOIs(rec), Raw: rec.Raw, Label: rec.Name()}, nil
}
