package ai

import "testing"

func TestParseToolArguments(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{"object", `{"title":"Buy milk","completed":true}`, map[string]any{"title": "Buy milk", "completed": true}},
		{"empty string", "", map[string]any{}},
		{"whitespace", "   \n\t", map[string]any{}},
		{"null", "null", map[string]any{}},
		{"truncated json", `{"title":"Buy`, map[string]any{}},
		{"array", `[1,2,3]`, map[string]any{}},
		{"scalar", `42`, map[string]any{}},
		{"double encoded object", `"{\"title\":\"nested\"}"`, map[string]any{"title": "nested"}},
		{"double encoded garbage", `"not json"`, map[string]any{}},
		{"empty quoted string", `""`, map[string]any{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseToolArguments(tc.raw)
			if got == nil {
				t.Fatalf("must never return nil")
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Fatalf("key %s: got %v want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestParseToolArguments_ReturnsFreshMaps(t *testing.T) {
	a := ParseToolArguments("")
	a["poisoned"] = true

	b := ParseToolArguments("not json")
	if len(b) != 0 {
		t.Fatalf("mutating one result leaked into another: %v", b)
	}
}

func TestParseToolArguments_NumbersAreFloat64(t *testing.T) {
	got := ParseToolArguments(`{"task_id": 7}`)
	if v, ok := got["task_id"].(float64); !ok || v != 7 {
		t.Fatalf("expected float64 7, got %T %v", got["task_id"], got["task_id"])
	}
}
