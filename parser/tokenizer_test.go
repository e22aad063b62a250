package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTopLevelArrayValues(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"Strings", `["message","value"]`, []string{"message", "value"}},
		{"Single", `["message"]`, []string{"message"}},
		{"EmptyObject", `["message",{}]`, []string{"message", "{}"}},
		{"Object", `["new message",{"username":"u","message":"hi"}]`,
			[]string{"new message", `{"username":"u","message":"hi"}`}},
		{"NestedArray", `["a",[1,[2,3]],4]`, []string{"a", "[1,[2,3]]", "4"}},
		{"CommaInString", `["a,b","c"]`, []string{"a,b", "c"}},
		{"BracketInString", `["a]",{"k":"}{"}]`, []string{"a]", `{"k":"}{"}`}},
		{"EscapedQuote", `["say \"hi\", ok",1]`, []string{`say "hi", ok`, "1"}},
		{"EscapedBackslash", `["a\\",2]`, []string{`a\`, "2"}},
		{"Spaces", ` [ "a" , 1 , null ] `, []string{"a", "1", "null"}},
		{"Empty", `[]`, []string{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := SplitTopLevelArrayValues(test.text)

			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestSplitTopLevelArrayValuesMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"NoBrackets", `"a","b"`},
		{"MissingClose", `["a"`},
		{"MissingOpen", `"a"]`},
		{"Unbalanced", `["a",{"b":1]`},
		{"ExtraClose", `["a"}]`},
		{"Unterminated", `["a]`},
		{"TrailingComma", `["a",]`},
		{"EmptyValue", `[,"a"]`},
		{"Blank", ``},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := SplitTopLevelArrayValues(test.text)
			assert.ErrorIs(t, err, ErrMalformedArray)
		})
	}
}
