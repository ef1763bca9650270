package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRFloat(1.5)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestSortedKeysUTF16Order(t *testing.T) {
	// U+FFFD (BMP) sorts after U+1F600 in UTF-16 (surrogate 0xD83D < 0xFFFD)
	// but before it in UTF-8 byte order.
	obj := IRObject{
		"\uFFFD":     IRInt(1),
		"\U0001F600": IRInt(2),
	}

	assert.Equal(t, []string{"\U0001F600", "\uFFFD"}, obj.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"a", "aa", -1},
		{"A", "a", -1},
		{"", "a", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, compareKeysRFC8785(tt.a, tt.b), "compare(%q, %q)", tt.a, tt.b)
	}
}

func TestUnmarshalIRValueKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  IRValue
	}{
		{"null", `null`, IRNull{}},
		{"string", `"hi"`, IRString("hi")},
		{"int", `42`, IRInt(42)},
		{"negative int", `-7`, IRInt(-7)},
		{"float", `1.125`, IRFloat(1.125)},
		{"exponent", `1e3`, IRFloat(1000)},
		{"int overflow becomes float", `18446744073709551616`, IRFloat(18446744073709551616)},
		{"bool", `true`, IRBool(true)},
		{"array", `[1,"a",null]`, IRArray{IRInt(1), IRString("a"), IRNull{}}},
		{"object", `{"a":{"b":false}}`, IRObject{"a": IRObject{"b": IRBool(false)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalIRValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalIRValueRejectsTrailingData(t *testing.T) {
	_, err := UnmarshalIRValue([]byte(`{"a":1} {"b":2}`))
	require.Error(t, err)
}

func TestUnmarshalIRValueRejectsInvalidJSON(t *testing.T) {
	_, err := UnmarshalIRValue([]byte(`{"a":`))
	require.Error(t, err)
}

func TestIRObjectUnmarshalJSON(t *testing.T) {
	var obj IRObject
	require.NoError(t, json.Unmarshal([]byte(`{"volume":1.0,"bands":[{"band":0,"gain":0.2}]}`), &obj))

	assert.Equal(t, IRFloat(1), obj["volume"])
	bands, ok := obj["bands"].(IRArray)
	require.True(t, ok)
	assert.Len(t, bands, 1)
}

func TestIRObjectUnmarshalJSONRejectsNonObject(t *testing.T) {
	var obj IRObject
	err := json.Unmarshal([]byte(`[1,2]`), &obj)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected JSON object")
}

func TestMarshalIRValueRoundTrip(t *testing.T) {
	original := IRObject{
		"name":   IRString("cart"),
		"count":  IRInt(3),
		"ratio":  IRFloat(0.25),
		"ok":     IRBool(true),
		"none":   IRNull{},
		"items":  IRArray{IRString("a"), IRInt(2)},
		"nested": IRObject{"deep": IRObject{}},
	}

	data, err := MarshalIRValue(original)
	require.NoError(t, err)

	decoded, err := UnmarshalIRValue(data)
	require.NoError(t, err)
	assert.True(t, Equal(original, decoded))
}

func TestMarshalIRValueRejectsNaN(t *testing.T) {
	_, err := MarshalIRValue(IRFloat(nanValue()))
	require.Error(t, err)
}

func TestFromGoPrimitives(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  IRValue
	}{
		{"nil", nil, IRNull{}},
		{"bool", true, IRBool(true)},
		{"string", "x", IRString("x")},
		{"int", 5, IRInt(5)},
		{"int32", int32(-3), IRInt(-3)},
		{"uint8", uint8(200), IRInt(200)},
		{"float64", 0.7, IRFloat(0.7)},
		{"json number", json.Number("12"), IRInt(12)},
		{"ir passthrough", IRString("kept"), IRString("kept")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromGoStructUsesJSONTags(t *testing.T) {
	type timescale struct {
		Speed float64 `json:"speed"`
		Pitch float64 `json:"pitch,omitempty"`
		Rate  int     `json:"rate"`
	}

	got, err := FromGo(&timescale{Speed: 1.1, Rate: 2})
	require.NoError(t, err)
	assert.Equal(t, IRObject{"speed": IRFloat(1.1), "rate": IRInt(2)}, got)
}

func TestFromGoTypedCollections(t *testing.T) {
	got, err := FromGo(map[string][]int{"list": {1, 2}})
	require.NoError(t, err)
	assert.Equal(t, IRObject{"list": IRArray{IRInt(1), IRInt(2)}}, got)
}

func TestFromGoRejectsUnsupported(t *testing.T) {
	_, err := FromGo(make(chan int))
	require.Error(t, err)

	_, err = FromGo(nanValue())
	require.Error(t, err)
}

func TestToGo(t *testing.T) {
	v := IRObject{
		"a": IRArray{IRInt(1), IRFloat(1.5), IRNull{}},
		"b": IRBool(false),
	}

	assert.Equal(t, map[string]any{
		"a": []any{int64(1), 1.5, nil},
		"b": false,
	}, ToGo(v))
}

func TestCloneIsDeep(t *testing.T) {
	original := IRObject{"a": IRObject{"list": IRArray{IRInt(1)}}}

	clone := CloneObject(original)
	clone["a"].(IRObject)["list"] = append(clone["a"].(IRObject)["list"].(IRArray), IRInt(2))
	clone["b"] = IRString("new")

	assert.Equal(t, IRObject{"a": IRObject{"list": IRArray{IRInt(1)}}}, original)
}

func TestCloneObjectNil(t *testing.T) {
	clone := CloneObject(nil)
	require.NotNil(t, clone)
	assert.Empty(t, clone)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(IRInt(1), IRFloat(1)))
	assert.True(t, Equal(IRNull{}, IRNull{}))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(IRNull{}, nil))
	assert.False(t, Equal(IRString("1"), IRInt(1)))
	assert.False(t, Equal(IRArray{IRInt(1)}, IRArray{IRInt(1), IRInt(2)}))
	assert.False(t, Equal(IRObject{"a": IRInt(1)}, IRObject{"b": IRInt(1)}))
	assert.True(t, Equal(IRObject{"a": IRArray{IRBool(true)}}, IRObject{"a": IRArray{IRBool(true)}}))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "absent", TypeName(nil))
	assert.Equal(t, "null", TypeName(IRNull{}))
	assert.Equal(t, "number", TypeName(IRInt(1)))
	assert.Equal(t, "number", TypeName(IRFloat(1)))
	assert.Equal(t, "array", TypeName(IRArray{}))
	assert.Equal(t, "object", TypeName(IRObject{}))
}

func TestHelperConstructors(t *testing.T) {
	obj := NewIRObjectFromPairs(O("volume", IRFloat(1)), O("name", IRString("soft")))
	assert.Equal(t, IRObject{"volume": IRFloat(1), "name": IRString("soft")}, obj)
}
