package proppath

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadTokens(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"foo", []string{"foo"}},
		{"foo.bar", []string{"foo", "bar"}},
		{"foo.bar[0]", []string{"foo", "bar", "0"}},
		{`foo.bar[0].baz["wtf"]`, []string{"foo", "bar", "0", "baz", "wtf"}},
		{"a['b'].c", []string{"a", "b", "c"}},
		{"..a..", []string{"a"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ReadTokens(tt.path)); diff != "" {
				t.Errorf("ReadTokens(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestWriteTokens(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"foo", []string{"foo"}},
		{"foo.bar[0]", []string{"foo", "bar", "0]"}},
		{`foo.bar[0].baz["wtf"]`, []string{"foo", "bar", "0]", "baz", `"wtf"]`}},
		{"a['b'][1]", []string{"a", "'b']", "1]"}},
		{"[0]", []string{"0]"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, WriteTokens(tt.path)); diff != "" {
				t.Errorf("WriteTokens(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestSetCreatesContainers(t *testing.T) {
	tests := []struct {
		name string
		path string
		want map[string]any
	}{
		{"simple", "foo", map[string]any{"foo": "bam"}},
		{"dot notation", "foo.bar", map[string]any{"foo": map[string]any{"bar": "bam"}}},
		{"array notation", "foo.bar[0]", map[string]any{"foo": map[string]any{"bar": []any{"bam"}}}},
		{
			"object notation",
			`foo.bar[0].baz["wtf"]`,
			map[string]any{"foo": map[string]any{"bar": []any{map[string]any{"baz": map[string]any{"wtf": "bam"}}}}},
		},
		{"single quoted key", "foo['bar']", map[string]any{"foo": map[string]any{"bar": "bam"}}},
		{"array padding", "list[2]", map[string]any{"list": []any{nil, nil, "bam"}}},
		{"nested arrays", "m[1][0]", map[string]any{"m": []any{nil, []any{"bam"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]any{}
			changed, err := Set(data, tt.path, "bam")
			if err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if !changed {
				t.Fatal("Set() reported unchanged on empty data")
			}
			if diff := cmp.Diff(tt.want, data); diff != "" {
				t.Errorf("data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	paths := []string{
		"foo",
		"foo.bar",
		"foo.bar[0]",
		`foo.bar[0].baz["wtf"]`,
		"a['b'].c[3].d",
		"x[0][1][2]",
	}
	values := []any{"bam", 42, true, nil, 3.5}

	for _, path := range paths {
		for _, v := range values {
			data := map[string]any{}
			if _, err := Set(data, path, v); err != nil {
				t.Fatalf("Set(%q, %v) error = %v", path, v, err)
			}
			got, ok := Get(data, path)
			if !ok {
				t.Fatalf("Get(%q) undefined after Set", path)
			}
			if got != v {
				t.Errorf("Get(%q) = %v, want %v", path, got, v)
			}
		}
	}
}

func TestSetUnchanged(t *testing.T) {
	data := map[string]any{"foo": "bar", "n": map[string]any{"list": []any{1}}}

	changed, err := Set(data, "foo", "bar")
	if err != nil || changed {
		t.Errorf("Set(foo, bar) = %v, %v; want false, nil", changed, err)
	}
	changed, err = Set(data, "n.list[0]", 1)
	if err != nil || changed {
		t.Errorf("Set(n.list[0], 1) = %v, %v; want false, nil", changed, err)
	}
	changed, err = Set(data, "n.list[0]", 2)
	if err != nil || !changed {
		t.Errorf("Set(n.list[0], 2) = %v, %v; want true, nil", changed, err)
	}
}

func TestSetLiteralKey(t *testing.T) {
	data := map[string]any{"a.b": 1}

	changed, err := Set(data, "a.b", 2)
	if err != nil || !changed {
		t.Fatalf("Set() = %v, %v", changed, err)
	}
	if diff := cmp.Diff(map[string]any{"a.b": 2}, data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if got, _ := Get(data, "a.b"); got != 2 {
		t.Errorf("Get(a.b) = %v, want 2", got)
	}
}

func TestSetInvalidPath(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		path string
	}{
		{"through string", map[string]any{"foo": "bar"}, "foo.baz"},
		{"through number in array", map[string]any{"foo": []any{1}}, "foo[0].x"},
		{"name on array", map[string]any{"foo": []any{}}, "foo.bar"},
		{"empty", map[string]any{}, ".."},
		{"nil data", nil, "foo"},
		{"index overflow", map[string]any{}, "list[9223372036854775807]"},
		{"nested index overflow", map[string]any{"a": map[string]any{}}, "a.b[9223372036854775807]"},
		{"index past growth bound", map[string]any{"list": []any{1}}, "list[10000000000]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := Clone(tt.data)
			_, err := Set(tt.data, tt.path, 1)
			if !errors.Is(err, ErrInvalidPath) {
				t.Fatalf("Set() error = %v, want ErrInvalidPath", err)
			}
			var pe *InvalidPathError
			if !errors.As(err, &pe) || pe.Path != tt.path {
				t.Errorf("error = %#v, want *InvalidPathError for %q", err, tt.path)
			}
			if tt.data != nil {
				if diff := cmp.Diff(before, any(tt.data)); diff != "" {
					t.Errorf("data modified by failed Set (-before +after):\n%s", diff)
				}
			}
		})
	}
}

func TestSetFailureDoesNotAttachPartialContainers(t *testing.T) {
	data := map[string]any{}
	_, err := Set(data, "a[x]", 1)
	if !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("Set() error = %v, want ErrInvalidPath", err)
	}
	if len(data) != 0 {
		t.Errorf("data = %v, want empty", data)
	}
}

func TestGetMissing(t *testing.T) {
	data := map[string]any{
		"foo":  "bar",
		"list": []any{"a"},
		"null": nil,
	}
	paths := []string{"nope", "foo.bar", "list[1]", "list[x]", "nope.deeper[0]", "null.x", ""}

	for _, path := range paths {
		if v, ok := Get(data, path); ok {
			t.Errorf("Get(%q) = %v, true; want undefined", path, v)
		}
	}
	if v, ok := Get(data, "null"); !ok || v != nil {
		t.Errorf("Get(null) = %v, %v; want nil, true", v, ok)
	}
}

func TestSame(t *testing.T) {
	m := map[string]any{}
	s := []any{1}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal strings", "a", "a", true},
		{"different strings", "a", "b", false},
		{"int vs float", 1, 1.0, false},
		{"nil nil", nil, nil, true},
		{"nil vs zero", nil, 0, false},
		{"same map", m, m, true},
		{"equal maps", map[string]any{}, map[string]any{}, false},
		{"same slice", s, s, true},
		{"equal slices", []any{1}, []any{1}, false},
		{"empty slices", []any{}, []any{}, false},
		{"empty vs nil slice", []any{}, []any(nil), false},
		{"nil slices", []any(nil), []any(nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Same(tt.a, tt.b); got != tt.want {
				t.Errorf("Same(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSetGrowsUpToBound(t *testing.T) {
	data := map[string]any{}
	changed, err := Set(data, fmt.Sprintf("list[%d]", MaxGrow-1), "x")
	if err != nil || !changed {
		t.Fatalf("Set() = %v, %v; want true, nil", changed, err)
	}
	if got := len(data["list"].([]any)); got != MaxGrow {
		t.Errorf("len(list) = %d, want %d", got, MaxGrow)
	}
}

func TestSetReplacesEmptyArray(t *testing.T) {
	data := map[string]any{"tags": []any{}}
	changed, err := Set(data, "tags", []any{})
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("Set() of a new empty array reported unchanged")
	}
}

func TestClone(t *testing.T) {
	orig := map[string]any{"a": []any{map[string]any{"b": 1}}}
	cp := CloneMap(orig)

	if diff := cmp.Diff(orig, cp); diff != "" {
		t.Fatalf("clone mismatch (-orig +clone):\n%s", diff)
	}
	cp["a"].([]any)[0].(map[string]any)["b"] = 2
	if orig["a"].([]any)[0].(map[string]any)["b"] != 1 {
		t.Error("modifying clone changed original")
	}
}
