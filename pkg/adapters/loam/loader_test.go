package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/botflow/internal/compiler"
	"github.com/aretw0/botflow/internal/testutils"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Contract(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()

	docA := core.Document{
		ID: "welcome.md",
		Content: `---
id: welcome
blocks:
  - id: greet
    steps:
      - id: hi
        to: bye
  - id: bye
    steps:
      - id: end
variables:
  - name: name
---
Greets the user and says goodbye.`,
	}
	docB := core.Document{
		ID: "survey.md",
		Content: `---
id: survey
blocks:
  - id: q1
    steps:
      - id: ask
        type: input
        variable: color
edges:
  - id: loop
    from: q1.ask
    to: q1.ask
variables:
  - name: color
---
`,
	}
	require.NoError(t, repo.Save(ctx, docA))
	require.NoError(t, repo.Save(ctx, docB))

	loader := New(loam.NewTypedRepository[compiler.FlowDocument](repo))

	ports.RunFlowLoaderContract(t, loader, map[string]*domain.FlowGraph{
		"welcome": {
			ID:        "welcome",
			Blocks:    []domain.Block{{ID: "greet"}, {ID: "bye"}},
			Edges:     []domain.Edge{{ID: "greet.hi", To: domain.Locator{BlockID: "bye"}}},
			Variables: []domain.Variable{{ID: "name"}},
		},
		"survey": {
			ID:        "survey",
			Blocks:    []domain.Block{{ID: "q1"}},
			Edges:     []domain.Edge{{ID: "loop", To: domain.Locator{BlockID: "q1", StepID: "ask"}}},
			Variables: []domain.Variable{{ID: "color"}},
		},
	})
}

func TestLoader_ListFlows_NormalizesIDs(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	files := map[string]string{
		"start.md": `---
id: start.md
blocks: []
---
Hello`,
		"choice.json": `{
  "id": "choice.json",
  "blocks": []
}`,
		"implicit.md": `---
blocks: []
---
ID is implied from filename`,
	}
	for filename, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644))
	}

	loader := New(loam.NewTypedRepository[compiler.FlowDocument](repo))

	ids, err := loader.ListFlows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"choice", "implicit", "start"}, ids)
}

func TestLoader_ListFlows_DetectsCollisions(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	files := map[string]string{
		"foo.md": `---
id: foo
---
Explicit ID`,
		"foo.json": `{
  "id": "foo"
}`,
	}
	for filename, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644))
	}

	loader := New(loam.NewTypedRepository[compiler.FlowDocument](repo))

	_, err := loader.ListFlows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "foo")
}

func TestLoader_GetFlow_DescriptionFromBody(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	content := `---
blocks:
  - id: only
    steps:
      - id: s
---
# Onboarding

Collects the basics.`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "onboarding.md"), []byte(content), 0644))

	loader := New(loam.NewTypedRepository[compiler.FlowDocument](repo))

	g, err := loader.GetFlow(context.Background(), "onboarding")
	require.NoError(t, err)
	assert.Equal(t, "onboarding", g.ID, "ID falls back to the file name")
	assert.Equal(t, "# Onboarding\n\nCollects the basics.", g.Description)
	require.Len(t, g.Blocks, 1)
}

func TestLoader_GetFlow_InvalidGraph(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	content := `{"id": "broken", "blocks": [{"title": "no id"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "broken.json"), []byte(content), 0644))

	loader := New(loam.NewTypedRepository[compiler.FlowDocument](repo))

	_, err := loader.GetFlow(context.Background(), "broken")
	assert.ErrorIs(t, err, domain.ErrInvalidGraph)
}

func TestLoader_DeclaredIDWinsOverFileName(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	files := map[string]string{
		"other.yaml": `id: welcome
blocks:
  - id: greet
    steps:
      - id: hi
`,
		"plain.md": `---
blocks:
  - id: only
    steps:
      - id: s
---
`,
	}
	for filename, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644))
	}

	loader := New(loam.NewTypedRepository[compiler.FlowDocument](repo))
	ctx := context.Background()

	ids, err := loader.ListFlows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"plain", "welcome"}, ids)

	for _, id := range ids {
		g, err := loader.GetFlow(ctx, id)
		require.NoError(t, err, "listed flow %s must load", id)
		assert.Equal(t, id, g.ID)
	}

	_, err = loader.GetFlow(ctx, "other")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound, "the file name is not an id once one is declared")
}
