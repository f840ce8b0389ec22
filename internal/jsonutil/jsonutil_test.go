package jsonutil

import (
	"strings"
	"testing"

	"writeflow/internal/tester"
)

type payload struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestUnmarshalFlex_DirectJSON(t *testing.T) {
	var p payload
	err := UnmarshalFlex([]byte(`{"title":"Intro","tags":["go","http"]}`), &p)
	tester.NoErr(t, err)
	tester.Eq(t, "Intro", p.Title)
	tester.Eq(t, []string{"go", "http"}, p.Tags)
}

func TestUnmarshalFlex_StripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"title\":\"Fenced\",\"tags\":[]}\n```"

	var p payload
	err := UnmarshalFlex([]byte(raw), &p)
	tester.NoErr(t, err)
	tester.Eq(t, "Fenced", p.Title)
}

func TestUnmarshalFlex_FenceWithoutLanguageTag(t *testing.T) {
	raw := "```\n{\"title\":\"Plain\"}\n```"

	var p payload
	err := UnmarshalFlex([]byte(raw), &p)
	tester.NoErr(t, err)
	tester.Eq(t, "Plain", p.Title)
}

func TestUnmarshalFlex_RejectsGarbage(t *testing.T) {
	var p payload
	err := UnmarshalFlex([]byte("not json at all"), &p)
	tester.Err(t, err)
}

func TestStripFences_LeavesBareJSONAlone(t *testing.T) {
	in := `{"title":"x"}`
	tester.Eq(t, in, StripFences(in))
}

func TestStripFences_TrimsSurroundingWhitespace(t *testing.T) {
	got := StripFences("  ```json\n{\"a\":1}\n```  \n")
	tester.Eq(t, `{"a":1}`, got)
}

func TestMarshalNoEscape_KeepsAngleBrackets(t *testing.T) {
	out, err := MarshalNoEscape(map[string]string{"html": "<b>bold & loud</b>"})
	tester.NoErr(t, err)

	s := string(out)
	tester.True(t, strings.Contains(s, "<b>bold & loud</b>"))
	tester.False(t, strings.Contains(s, `\u003c`))
	tester.False(t, strings.HasSuffix(s, "\n"))
}
