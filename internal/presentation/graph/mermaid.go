package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	VisitedBlocks []string
	CurrentBlock  string
}

// OverlayFromHistory builds an overlay from a session history, keeping only
// the entries displayed while graphID was active.
func OverlayFromHistory(history []domain.DisplayedEntry, graphID string) *GraphOverlay {
	overlay := &GraphOverlay{}
	for _, entry := range history {
		if entry.GraphID != "" && entry.GraphID != graphID {
			continue
		}
		overlay.VisitedBlocks = append(overlay.VisitedBlocks, entry.Block.ID)
		overlay.CurrentBlock = entry.Block.ID
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of a flow graph.
// It applies semantic styling:
// - Entry block (source of the first edge): ((Circle))
// - Block with a condition step: {Rhombus}
// - Block with an input step: [/Parallelogram/]
// - Default: [Rectangle]
// Link steps point at a dashed subroutine node named after the target flow.
func GenerateMermaid(g *domain.FlowGraph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if g == nil {
		return sb.String()
	}

	entry := ""
	if len(g.Blocks) > 0 {
		entry = g.Blocks[0].ID
	}

	links := make(map[string]bool)
	for _, block := range g.Blocks {
		safeID := sanitizeMermaidID(block.ID)
		opener, closer := shape(block, block.ID == entry)

		label := block.ID
		if block.Title != "" && block.Title != block.ID {
			label = fmt.Sprintf("%s <br/> %s", block.ID, escapeLabel(block.Title))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		for _, step := range block.Steps {
			if step.Type != domain.StepTypeLink || step.Link == nil {
				continue
			}
			target := "flow_" + sanitizeMermaidID(step.Link.FlowID)
			if !links[target] {
				links[target] = true
				fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", target, escapeLabel(step.Link.FlowID))
			}
			fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", safeID, escapeLabel(step.ID), target)
		}
	}

	for _, edge := range g.Edges {
		from := sanitizeMermaidID(edge.From.BlockID)
		to := sanitizeMermaidID(edge.To.BlockID)
		if from == "" || to == "" {
			continue
		}
		if _, ok := g.Block(edge.To.BlockID); !ok {
			// Dangling edges end the session; draw them as an exit.
			fmt.Fprintf(&sb, "    %s --x %s_missing((\"?\"))\n", from, to)
			continue
		}
		if edge.From.StepID != "" {
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escapeLabel(edge.From.StepID), to)
			continue
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedBlocks {
			if _, ok := g.Block(id); !ok {
				continue
			}
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if _, ok := g.Block(overlay.CurrentBlock); ok {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentBlock))
		}
	}

	return sb.String()
}

func shape(block domain.Block, isEntry bool) (string, string) {
	if isEntry {
		return "((", "))"
	}
	hasInput := false
	for _, step := range block.Steps {
		if step.Type == domain.StepTypeCondition {
			return "{", "}"
		}
		if step.Type == domain.StepTypeInput {
			hasInput = true
		}
	}
	if hasInput {
		return "[/", "/]"
	}
	return "[", "]"
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
