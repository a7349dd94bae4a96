package scratch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
	Tag  string
}

func TestInt64Codec_RejectsTrailingBytes(t *testing.T) {
	data, err := Int64Codec{}.Encode(300)
	require.NoError(t, err)

	_, err = Int64Codec{}.Decode(append(data, 0x00))
	assert.Error(t, err)

	_, err = Int64Codec{}.Decode(nil)
	assert.Error(t, err)
}

func TestCodecs_EqualValuesEncodeEqually(t *testing.T) {
	p := point{X: 1, Y: 2, Tag: "a"}

	j1, err := JSONCodec[point]{}.Encode(p)
	require.NoError(t, err)
	j2, err := JSONCodec[point]{}.Encode(point{X: 1, Y: 2, Tag: "a"})
	require.NoError(t, err)
	assert.Equal(t, j1, j2)

	g1, err := GobCodec[point]{}.Encode(p)
	require.NoError(t, err)
	g2, err := GobCodec[point]{}.Encode(point{X: 1, Y: 2, Tag: "a"})
	require.NoError(t, err)
	assert.Equal(t, g1, g2)
}

type hidden struct {
	X int
	y int
}

func TestCodecs_Canonical(t *testing.T) {
	tests := []struct {
		name string
		want bool
		got  bool
	}{
		{"string", true, IsCanonical[string](StringCodec{})},
		{"int64", true, IsCanonical[int64](Int64Codec{})},
		{"json struct", false, IsCanonical[point](JSONCodec[point]{})},
		{"gob struct", true, IsCanonical[point](GobCodec[point]{})},
		{"gob array", true, IsCanonical[[2]uint8](GobCodec[[2]uint8]{})},
		{"gob float", false, IsCanonical[float64](GobCodec[float64]{})},
		{"gob unexported field", false, IsCanonical[hidden](GobCodec[hidden]{})},
		{"gob pointer", false, IsCanonical[*point](GobCodec[*point]{})},
		{"gob slice", false, IsCanonical[[]int](GobCodec[[]int]{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestJSONCodec_NegativeZeroEncodesDifferently(t *testing.T) {
	pos, err := JSONCodec[float64]{}.Encode(0.0)
	require.NoError(t, err)
	neg, err := JSONCodec[float64]{}.Encode(math.Copysign(0, -1))
	require.NoError(t, err)

	assert.NotEqual(t, pos, neg)
	assert.False(t, IsCanonical[float64](JSONCodec[float64]{}))
}

func TestLog_StructValuesThroughFile(t *testing.T) {
	in := []point{{1, 2, "a"}, {0, 0, ""}, {1, 2, "a"}}

	for name, codec := range map[string]Codec[point]{
		"json": JSONCodec[point]{},
		"gob":  GobCodec[point]{},
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t)
			f, err := s.Create("buffer")
			require.NoError(t, err)
			l := NewLog(f, codec)
			for _, p := range in {
				require.NoError(t, l.Append(p))
			}

			out := scanAll(t, l)
			require.Len(t, out, 3)
			assert.Equal(t, in, out)
			assert.True(t, out[0] == out[2])
		})
	}
}

func TestJSONCodec_DecodeError(t *testing.T) {
	_, err := JSONCodec[point]{}.Decode([]byte("{"))
	assert.Error(t, err)
}
