package funnel

// Version is the only funnel format version this package accepts.
const Version = 1

// NodeType defines the behavior of a step in the funnel.
type NodeType string

const (
	// NodeTypeStart marks the entry point of the funnel.
	NodeTypeStart NodeType = "start"
	// NodeTypeQuestion displays options and halts waiting for a choice (hard step).
	NodeTypeQuestion NodeType = "question"
	// NodeTypeResult is a terminal outcome step.
	NodeTypeResult NodeType = "result"
	// NodeTypeForm collects visitor contact fields (lead capture).
	NodeTypeForm NodeType = "form"
	// NodeTypeLogic carries a scoring map evaluated by the host.
	NodeTypeLogic NodeType = "logic"
	// NodeTypeContent displays raw markup and continues (soft step).
	NodeTypeContent NodeType = "content"
)

// Valid reports whether t belongs to the closed node type set.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeStart, NodeTypeQuestion, NodeTypeResult, NodeTypeForm, NodeTypeLogic, NodeTypeContent:
		return true
	}
	return false
}

// FieldType defines the input kind of a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldCheckbox FieldType = "checkbox"
	FieldSelect   FieldType = "select"
)

// Valid reports whether t is a recognized input kind.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldTel, FieldCheckbox, FieldSelect:
		return true
	}
	return false
}

// Position is authoring metadata only; the runtime never reads it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Option is one selectable answer of a question node.
type Option struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Value *float64 `json:"value,omitempty"`
	// Next optionally names an explicit next node, overriding edge routing.
	Next string `json:"next,omitempty"`
}

// FormField describes one input of a form node.
type FormField struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
	Options  []string  `json:"options,omitempty"`
}

// Result is the payload of a result node.
type Result struct {
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	CTALabel string `json:"ctaLabel,omitempty"`
	CTAURL   string `json:"ctaUrl,omitempty"`
}

// NodeData is the tagged payload of a node. Which fields are meaningful
// depends on the owning node's Type; the rest stay zero and are omitted
// on the wire so export/import round-trips cleanly.
type NodeData struct {
	Description string             `json:"description,omitempty"`
	Question    string             `json:"question,omitempty"`
	Options     []Option           `json:"options,omitempty"`
	HTML        string             `json:"html,omitempty"`
	FormFields  []FormField        `json:"formFields,omitempty"`
	Scoring     map[string]float64 `json:"scoring,omitempty"`
	Result      *Result            `json:"result,omitempty"`
}

// Node is one step in the funnel graph.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Label    string   `json:"label"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// ConditionOption is the only edge condition kind currently defined:
// take the edge when the visitor's selected option id equals Value.
const ConditionOption = "option"

// EdgeData holds the optional condition of an edge.
type EdgeData struct {
	Condition string `json:"condition,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// Edge is a directed, optionally conditioned transition between two nodes.
type Edge struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Target string    `json:"target"`
	Label  string    `json:"label,omitempty"`
	Data   *EdgeData `json:"data,omitempty"`
}

// Funnel is the full wire-format graph definition. This exact shape is
// both the import/export file format and the API payload.
type Funnel struct {
	Version     int    `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
}

// OptionValue returns the edge condition value as the option id string.
// Non-string values never match an option id, mirroring the strict
// comparison clients perform.
func (d *EdgeData) OptionValue() string {
	if d == nil || d.Value == nil {
		return ""
	}
	if s, ok := d.Value.(string); ok {
		return s
	}
	return ""
}

// Matches reports whether the edge condition selects the given option id.
func (e *Edge) Matches(optionID string) bool {
	return e.Data != nil && e.Data.Condition == ConditionOption && e.Data.OptionValue() == optionID
}

// Conditioned reports whether the edge carries any condition.
func (e *Edge) Conditioned() bool {
	return e.Data != nil && e.Data.Condition != ""
}
