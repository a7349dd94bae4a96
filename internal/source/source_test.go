package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	src := Slice("a", "b")
	assert.Equal(t, "", src.Value(), "no value before Next")

	got, err := Collect(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.False(t, src.Next(), "exhausted source stays exhausted")
}

func TestSlice_Empty(t *testing.T) {
	got, err := Collect(Slice[int]())
	require.NoError(t, err)
	assert.Empty(t, got)
}

type ptrSource struct{}

func (*ptrSource) Next() bool    { return false }
func (*ptrSource) Value() string { return "" }
func (*ptrSource) Err() error    { return nil }

type funcSource func() (string, bool)

func (funcSource) Next() bool    { return false }
func (funcSource) Value() string { return "" }
func (funcSource) Err() error    { return nil }

type valueSource struct{}

func (valueSource) Next() bool    { return false }
func (valueSource) Value() string { return "" }
func (valueSource) Err() error    { return nil }

func TestIsNil(t *testing.T) {
	tests := []struct {
		name string
		src  Source[string]
		want bool
	}{
		{"untyped nil", nil, true},
		{"typed nil pointer", (*ptrSource)(nil), true},
		{"typed nil func", funcSource(nil), true},
		{"pointer", &ptrSource{}, false},
		{"value type", valueSource{}, false},
		{"slice source", Slice("a"), false},
		{"token source", Tokens(strings.NewReader("a"), TokenOptions{}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNil(tt.src))
		})
	}
}

func TestTokens(t *testing.T) {
	src := Tokens(strings.NewReader("  b a\tc\n\nc  "), TokenOptions{})
	got, err := Collect(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c", "c"}, got)
}

func TestTokens_NormalizeAndFold(t *testing.T) {
	input := "caf\u00e9 cafe\u0301 Alice ALICE"

	raw, err := Collect(Tokens(strings.NewReader(input), TokenOptions{}))
	require.NoError(t, err)
	assert.NotEqual(t, raw[0], raw[1])
	assert.NotEqual(t, raw[2], raw[3])

	got, err := Collect(Tokens(strings.NewReader(input), TokenOptions{Normalize: true, Fold: true}))
	require.NoError(t, err)
	assert.Equal(t, got[0], got[1])
	assert.Equal(t, "alice", got[2])
	assert.Equal(t, got[2], got[3])
}

func TestCanonicalize(t *testing.T) {
	got, err := Collect(Canonicalize(Slice("cafe\u0301", "Stra\u00dfe", "two words"), TokenOptions{Normalize: true, Fold: true}))
	require.NoError(t, err)
	assert.Equal(t, []string{"caf\u00e9", "strasse", "two words"}, got)

	same, err := Collect(Canonicalize(Slice("ABC"), TokenOptions{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC"}, same)
}

func TestTokens_TooLong(t *testing.T) {
	src := Tokens(strings.NewReader(strings.Repeat("x", MaxTokenSize+1)), TokenOptions{})
	_, err := Collect(src)
	assert.Error(t, err)
}

func TestMap_ParseInts(t *testing.T) {
	src := Map(Tokens(strings.NewReader("1 2 -3"), TokenOptions{}), ParseInt64)
	got, err := Collect(src)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, -3}, got)
}

func TestMap_StopsOnError(t *testing.T) {
	src := Map(Slice("1", "x", "3"), ParseInt64)
	got, err := Collect(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x"`)
	assert.Equal(t, []int64{1}, got)
	assert.False(t, src.Next())
}

type errSource struct{ err error }

func (e errSource) Next() bool    { return false }
func (e errSource) Value() string { return "" }
func (e errSource) Err() error    { return e.err }

func TestMap_PropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Collect(Map(Source[string](errSource{boom}), ParseInt64))
	assert.ErrorIs(t, err, boom)
}

func TestSample(t *testing.T) {
	assert.Equal(t, "b a c c e a c d c d", strings.Join(Sample(), " "))
}
