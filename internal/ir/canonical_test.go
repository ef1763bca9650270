package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nanValue() float64 { return math.NaN() }

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    IRValue
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(42), "42"},
		{"negative int", IRInt(-100), "-100"},
		{"max int64", IRInt(9223372036854775807), "9223372036854775807"},
		{"float", IRFloat(1.125), "1.125"},
		{"integral float", IRFloat(1), "1"},
		{"negative zero", IRFloat(math.Copysign(0, -1)), "0"},
		{"small float", IRFloat(1e-7), "1e-7"},
		{"large float", IRFloat(1e21), "1e+21"},
		{"null", IRNull{}, "null"},
		{"bool true", IRBool(true), "true"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"array", IRArray{IRInt(1), IRNull{}, IRString("x")}, `[1,null,"x"]`},
		{"simple object", IRObject{"a": IRInt(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := IRObject{
		"z": IRObject{
			"b": IRInt(1),
			"a": IRInt(2),
		},
		"a": IRInt(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(IRObject{"<tag>": IRString("a & b > c")})
	require.NoError(t, err)
	assert.Equal(t, `{"<tag>":"a & b > c"}`, string(result))
}

func TestMarshalCanonicalRejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(IRArray{IRFloat(math.Inf(1))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[0]")
}

func TestMarshalCanonicalKeepsUnicodeForm(t *testing.T) {
	// "e" + COMBINING ACUTE ACCENT and precomposed U+00E9 stay distinct.
	result, err := MarshalCanonical(IRObject{
		"caf\u00e9":  IRString("cafe\u0301"),
		"cafe\u0301": IRString("caf\u00e9"),
	})
	require.NoError(t, err)
	assert.Equal(t, "{\"cafe\u0301\":\"caf\u00e9\",\"caf\u00e9\":\"cafe\u0301\"}", string(result))

	decoded, err := UnmarshalIRValue(result)
	require.NoError(t, err)
	again, err := MarshalCanonical(decoded)
	require.NoError(t, err)
	assert.Equal(t, result, again)
}

func TestMarshalCanonicalStringEscaping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(IRString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalU2028U2029NotEscaped(t *testing.T) {
	result, err := MarshalCanonical(IRString("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))
}

func TestMarshalCanonicalLiteralBackslashU2028(t *testing.T) {
	result, err := MarshalCanonical(IRString("literal \\u2028 and actual \u2028"))
	require.NoError(t, err)
	assert.Equal(t, "\"literal \\\\u2028 and actual \u2028\"", string(result))
}

func TestMarshalCanonicalIdempotent(t *testing.T) {
	inputs := []string{
		`{"b":[1,2.5,null],"a":{"y":true,"x":"s"}}`,
		`[{"z":1},{"a":2}]`,
		`"plain"`,
	}

	for _, input := range inputs {
		v, err := UnmarshalIRValue([]byte(input))
		require.NoError(t, err)

		first, err := MarshalCanonical(v)
		require.NoError(t, err)

		reparsed, err := UnmarshalIRValue(first)
		require.NoError(t, err)

		second, err := MarshalCanonical(reparsed)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	}
}

func FuzzMarshalCanonicalIdempotent(f *testing.F) {
	f.Add(`{"a":1,"b":"test"}`)
	f.Add(`[1,2,3]`)
	f.Add(`0.1`)
	f.Add(`null`)

	f.Fuzz(func(t *testing.T, input string) {
		v, err := UnmarshalIRValue([]byte(input))
		if err != nil {
			return
		}
		first, err := MarshalCanonical(v)
		if err != nil {
			return
		}
		reparsed, err := UnmarshalIRValue(first)
		if err != nil {
			t.Fatalf("canonical output does not parse: %s", first)
		}
		second, err := MarshalCanonical(reparsed)
		if err != nil {
			t.Fatalf("second marshal failed: %v", err)
		}
		if string(first) != string(second) {
			t.Fatalf("not idempotent: %s vs %s", first, second)
		}
	})
}
