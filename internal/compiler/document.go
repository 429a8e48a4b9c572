package compiler

// FlowDocument is the authored form of a flow as it appears in YAML, JSON or
// Markdown frontmatter. Locators are written as "block" or "block.step".
type FlowDocument struct {
	ID          string             `json:"id" yaml:"id" mapstructure:"id"`
	Name        string             `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Blocks      []BlockDocument    `json:"blocks" yaml:"blocks" mapstructure:"blocks"`
	Edges       []EdgeDocument     `json:"edges,omitempty" yaml:"edges,omitempty" mapstructure:"edges"`
	Variables   []VariableDocument `json:"variables,omitempty" yaml:"variables,omitempty" mapstructure:"variables"`
}

type BlockDocument struct {
	ID    string         `json:"id" yaml:"id" mapstructure:"id"`
	Title string         `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Steps []StepDocument `json:"steps" yaml:"steps" mapstructure:"steps"`
}

type StepDocument struct {
	ID       string           `json:"id" yaml:"id" mapstructure:"id"`
	Type     string           `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	Content  string           `json:"content,omitempty" yaml:"content,omitempty" mapstructure:"content"`
	Variable string           `json:"variable,omitempty" yaml:"variable,omitempty" mapstructure:"variable"`
	Next     string           `json:"next,omitempty" yaml:"next,omitempty" mapstructure:"next"`
	// To is shorthand for an edge from this step to a locator.
	To       string           `json:"to,omitempty" yaml:"to,omitempty" mapstructure:"to"`
	Branches []BranchDocument `json:"branches,omitempty" yaml:"branches,omitempty" mapstructure:"branches"`
	Link     *LinkDocument    `json:"link,omitempty" yaml:"link,omitempty" mapstructure:"link"`
}

type BranchDocument struct {
	Variable string `json:"variable" yaml:"variable" mapstructure:"variable"`
	Operator string `json:"operator,omitempty" yaml:"operator,omitempty" mapstructure:"operator"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	Next     string `json:"next,omitempty" yaml:"next,omitempty" mapstructure:"next"`
	To       string `json:"to,omitempty" yaml:"to,omitempty" mapstructure:"to"`
}

type LinkDocument struct {
	Flow  string `json:"flow,omitempty" yaml:"flow,omitempty" mapstructure:"flow"`
	Block string `json:"block,omitempty" yaml:"block,omitempty" mapstructure:"block"`
}

type EdgeDocument struct {
	ID   string `json:"id" yaml:"id" mapstructure:"id"`
	From string `json:"from,omitempty" yaml:"from,omitempty" mapstructure:"from"`
	To   string `json:"to" yaml:"to" mapstructure:"to"`
}

type VariableDocument struct {
	ID    string  `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Name  string  `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Value *string `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}
