package pipeline

import "context"

// Collection is what one identifier source produced.
type Collection struct {
	// DOIs in source order, possibly with duplicates.
	DOIs []string
	// Raw is the source payload as received, saved when raw dumps are enabled.
	Raw []byte
	// Label names the record owner when the source reports one.
	Label string
	// Warnings are non-fatal problems, such as unreadable files.
	Warnings []string
}

// Source yields the DOIs of one registry or local collection.
type Source interface {
	Name() string
	Collect(ctx context.Context) (Collection, error)
}

// StaticSource serves a fixed list of DOIs, e.g. from the command line.
type StaticSource struct {
	Label string
	DOIs  []string
}

// Name implements Source.
func (s StaticSource) Name() string { return "static" }

// Collect implements Source.
func (s StaticSource) Collect(context.Context) (Collection, error) {
	return Collection{DOIs: append([]string(nil), s.DOIs...), Label: s.Label}, nil
}
