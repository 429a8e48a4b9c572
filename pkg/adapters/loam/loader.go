package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/botflow/internal/compiler"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/loam"
)

// Loader adapts a Loam repository to ports.FlowLoader.
// Every document (markdown frontmatter, JSON or YAML) holds one flow.
type Loader struct {
	Repo *loam.TypedRepository[compiler.FlowDocument]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[compiler.FlowDocument]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetFlow loads and compiles one flow.
// The id is the declared front-matter id when there is one, else the file
// name; Loam resolves "welcome" to welcome.md, welcome.json and friends.
func (l *Loader) GetFlow(ctx context.Context, id string) (*domain.FlowGraph, error) {
	key := trimExtension(id)
	path := key
	if index, err := l.index(ctx); err == nil {
		p, ok := index[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, key)
		}
		path = p
	}

	doc, err := l.Repo.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", key, err)
	}

	data := doc.Data
	data.ID = key
	if data.Description == "" {
		data.Description = strings.TrimSpace(doc.Content)
	}

	return compiler.Compile(&data, key)
}

// ListFlows lists all flows in the repository in sorted order.
func (l *Loader) ListFlows(ctx context.Context) ([]string, error) {
	index, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// index maps every flow id to the document path Loam stores it under.
func (l *Loader) index(ctx context.Context) (map[string]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	index := make(map[string]string, len(docs))
	for _, doc := range docs {
		id := flowID(doc.Data.ID, doc.ID)
		if existingPath, ok := index[id]; ok {
			return nil, fmt.Errorf("collision detected: flow '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		index[id] = doc.ID
	}
	return index, nil
}

func flowID(declared, path string) string {
	if declared == "" {
		declared = path
	}
	return trimExtension(declared)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable. It emits the ID of every changed flow.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- l.changedFlow(ctx, evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// changedFlow maps a changed document path back to its flow id. Deleted or
// unreadable documents keep their path.
func (l *Loader) changedFlow(ctx context.Context, path string) string {
	path = trimExtension(path)
	if doc, err := l.Repo.Get(ctx, path); err == nil {
		return flowID(doc.Data.ID, path)
	}
	return path
}
