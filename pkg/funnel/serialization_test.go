package funnel

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_RoundTrip(t *testing.T) {
	original := validFunnel()
	original.Edges[1].Data = &EdgeData{Condition: ConditionOption, Value: "a"}

	encoded, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := Parse(encoded)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	reencoded, err := Encode(decoded)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(encoded) != string(reencoded) {
		t.Errorf("round trip changed the document:\nfirst:\n%s\nsecond:\n%s", encoded, reencoded)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	if err == nil {
		t.Fatal("Parse() should reject malformed JSON")
	}
	if _, ok := err.(*AggregateError); !ok {
		t.Errorf("error should be *AggregateError, got %T", err)
	}
}

func TestParse_ValidatesShape(t *testing.T) {
	_, err := Parse([]byte(`{"version": 3, "name": "", "nodes": [], "edges": []}`))
	if err == nil {
		t.Fatal("Parse() should run shape validation")
	}
	if got := len(ValidationErrors(err)); got != 2 {
		t.Errorf("Parse() = %d errors, want 2", got)
	}
}

func TestParseFile_YAML(t *testing.T) {
	doc := `
version: 1
name: Yaml Funnel
nodes:
  - id: n1
    type: start
    label: Welcome
  - id: n2
    type: question
    label: Pick
    data:
      options:
        - id: a
          label: Option A
edges:
  - id: e1
    source: n1
    target: n2
    data:
      condition: option
      value: a
`
	path := filepath.Join(t.TempDir(), "funnel.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if f.Name != "Yaml Funnel" {
		t.Errorf("Name = %q, want Yaml Funnel", f.Name)
	}
	if len(f.Nodes) != 2 || len(f.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges, want 2 and 1", len(f.Nodes), len(f.Edges))
	}
	if !f.Edges[0].Matches("a") {
		t.Error("edge condition should match option a after YAML decode")
	}
}

func TestParseFile_MissingFile(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("ParseFile() should fail on missing file")
	}
}

func TestEdge_Matches(t *testing.T) {
	tests := []struct {
		name     string
		edge     Edge
		optionID string
		want     bool
	}{
		{"match", Edge{Data: &EdgeData{Condition: ConditionOption, Value: "a"}}, "a", true},
		{"value mismatch", Edge{Data: &EdgeData{Condition: ConditionOption, Value: "a"}}, "b", false},
		{"no data", Edge{}, "a", false},
		{"other condition kind", Edge{Data: &EdgeData{Condition: "score", Value: "a"}}, "a", false},
		{"non-string value", Edge{Data: &EdgeData{Condition: ConditionOption, Value: 1}}, "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.edge.Matches(tt.optionID); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.optionID, got, tt.want)
			}
		})
	}
}
