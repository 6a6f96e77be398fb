package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// WriteDocuments writes every document into dir concurrently and returns the
// written paths in document order. dir must already exist. The first failure
// is returned; there is no retry.
func WriteDocuments(ctx context.Context, dir string, docs []Document) ([]string, error) {
	paths := make([]string, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		doc := doc
		path := filepath.Join(dir, doc.Name)
		paths[i] = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(doc.Content), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
