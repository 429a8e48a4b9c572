package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/botflow/internal/presentation/graph"
	"github.com/aretw0/botflow/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		graph    *domain.FlowGraph
		contains []string
		excludes []string
	}{
		{
			name: "Block Shapes",
			graph: &domain.FlowGraph{
				ID: "shapes",
				Blocks: []domain.Block{
					{ID: "start", Steps: []domain.Step{{ID: "s1", Type: domain.StepTypeText}}},
					{ID: "ask", Steps: []domain.Step{{ID: "s2", Type: domain.StepTypeInput}}},
					{ID: "decide", Steps: []domain.Step{{ID: "s3", Type: domain.StepTypeCondition}}},
					{ID: "plain"},
				},
			},
			contains: []string{
				`start(("start"))`,
				`ask[/"ask"/]`,
				`decide{"decide"}`,
				`plain["plain"]`,
			},
		},
		{
			name: "ID Sanitization And Titles",
			graph: &domain.FlowGraph{
				Blocks: []domain.Block{
					{ID: "entry"},
					{ID: "path/to-block.1", Title: `Say "hi"`},
				},
			},
			contains: []string{
				`path_to_block_1["path/to-block.1 <br/> Say 'hi'"]`,
			},
		},
		{
			name: "Edges",
			graph: &domain.FlowGraph{
				Blocks: []domain.Block{{ID: "A"}, {ID: "B"}},
				Edges: []domain.Edge{
					{ID: "e1", From: domain.Locator{BlockID: "A", StepID: "s1"}, To: domain.Locator{BlockID: "B"}},
					{ID: "e2", From: domain.Locator{BlockID: "B"}, To: domain.Locator{BlockID: "A"}},
					{ID: "e3", From: domain.Locator{BlockID: "B"}, To: domain.Locator{BlockID: "gone"}},
				},
			},
			contains: []string{
				`A -- "s1" --> B`,
				`B --> A`,
				`B --x gone_missing(("?"))`,
			},
		},
		{
			name: "Link Steps",
			graph: &domain.FlowGraph{
				Blocks: []domain.Block{
					{ID: "A", Steps: []domain.Step{
						{ID: "go", Type: domain.StepTypeLink, Link: &domain.LinkTarget{FlowID: "billing"}},
						{ID: "again", Type: domain.StepTypeLink, Link: &domain.LinkTarget{FlowID: "billing"}},
					}},
				},
			},
			contains: []string{
				`flow_billing[["billing"]]`,
				`A -. "go" .-> flow_billing`,
				`A -. "again" .-> flow_billing`,
			},
		},
		{
			name:     "Nil Graph",
			graph:    nil,
			contains: []string{"graph TD"},
			excludes: []string{"classDef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.graph, nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	g := &domain.FlowGraph{
		ID:     "main",
		Blocks: []domain.Block{{ID: "A"}, {ID: "B"}, {ID: "C"}},
	}
	history := []domain.DisplayedEntry{
		{Block: domain.Block{ID: "A"}, GraphID: "main"},
		{Block: domain.Block{ID: "X"}, GraphID: "other"},
		{Block: domain.Block{ID: "A"}, GraphID: "main"},
		{Block: domain.Block{ID: "B"}, GraphID: "main"},
	}

	overlay := graph.OverlayFromHistory(history, "main")
	if overlay.CurrentBlock != "B" {
		t.Fatalf("CurrentBlock = %q, want B", overlay.CurrentBlock)
	}

	got := graph.GenerateMermaid(g, overlay)
	if n := strings.Count(got, "class A visited;"); n != 1 {
		t.Errorf("expected A styled once, got %d\n%s", n, got)
	}
	for _, want := range []string{"class B visited;", "class B current;", "classDef current"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
	if strings.Contains(got, "class X") || strings.Contains(got, "class C") {
		t.Errorf("unexpected styling in\n%s", got)
	}
}
