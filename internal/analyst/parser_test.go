package analyst

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractJSON_FencedBlock(t *testing.T) {
	obj, ok := ExtractJSON("```json\n{\"a\":1}\n```")
	if !ok {
		t.Fatal("expected fenced block to parse")
	}
	if diff := cmp.Diff(map[string]any{"a": float64(1)}, obj); diff != "" {
		t.Errorf("object mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractJSON_FenceWithoutLang(t *testing.T) {
	obj, ok := ExtractJSON("```\n{\"key\":\"value\"}\n```")
	if !ok {
		t.Fatal("expected plain fence to parse")
	}
	if obj["key"] != "value" {
		t.Errorf("key = %v, want value", obj["key"])
	}
}

func TestExtractJSON_BraceSpanInNoise(t *testing.T) {
	obj, ok := ExtractJSON(`noise before {"a":1} noise after`)
	if !ok {
		t.Fatal("expected brace span to parse")
	}
	if obj["a"] != float64(1) {
		t.Errorf("a = %v, want 1", obj["a"])
	}
}

func TestExtractJSON_NestedObject(t *testing.T) {
	obj, ok := ExtractJSON(`resposta: {"outer":{"inner":true},"b":2}`)
	if !ok {
		t.Fatal("expected nested object to parse")
	}
	inner, isMap := obj["outer"].(map[string]any)
	if !isMap || inner["inner"] != true {
		t.Errorf("outer = %v, want nested object", obj["outer"])
	}
}

func TestExtractJSON_WholeText(t *testing.T) {
	obj, ok := ExtractJSON("  \n {\"had_need_to_transfer\": false} \n ")
	if !ok {
		t.Fatal("expected whole-text parse")
	}
	if obj["had_need_to_transfer"] != false {
		t.Errorf("had_need_to_transfer = %v, want false", obj["had_need_to_transfer"])
	}
}

func TestExtractJSON_NotJSON(t *testing.T) {
	if obj, ok := ExtractJSON("not json at all"); ok {
		t.Fatalf("expected failure, got %v", obj)
	}
}

func TestExtractJSON_MalformedEverywhere(t *testing.T) {
	if _, ok := ExtractJSON("```json\n{broken\n``` and {also broken"); ok {
		t.Fatal("expected failure for malformed candidates")
	}
}

func TestExtractJSON_EmptyInput(t *testing.T) {
	if _, ok := ExtractJSON(""); ok {
		t.Fatal("expected failure for empty input")
	}
}
