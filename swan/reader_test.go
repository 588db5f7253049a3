package swan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func drain(r *codePointReader) []rune {
	var out []rune
	for {
		cp := r.consumeNext()
		if cp == eofRune {
			return out
		}
		out = append(out, cp)
	}
}

func TestCodePointReader_CRLFCollapsesToLF(t *testing.T) {
	r := newCodePointReader("a\r\nb", nil)
	out := drain(r)
	require.Equal(t, []rune{'a', '\n', 'b'}, out)
	require.Equal(t, []int{2}, r.gaps)
}

func TestCodePointReader_BareCRBecomesLF(t *testing.T) {
	r := newCodePointReader("a\rb", nil)
	out := drain(r)
	require.Equal(t, []rune{'a', '\n', 'b'}, out)
	require.Empty(t, r.gaps)
}

func TestCodePointReader_OffsetTracksOriginalSource(t *testing.T) {
	r := newCodePointReader("a\r\nb", nil)
	require.Equal(t, 'a', r.consumeNext())
	require.Equal(t, 1, r.offset)
	require.Equal(t, rune('\n'), r.consumeNext()) // the '\r' itself, normalised
	require.Equal(t, 2, r.offset)
	require.Equal(t, 'b', r.consumeNext()) // swallows the real '\n' as a gap, then reads 'b'
	require.Equal(t, 4, r.offset)
}

func TestCodePointReader_SurrogatePair(t *testing.T) {
	// U+1F600 GRINNING FACE, encoded as a surrogate pair in UTF-16.
	r := newCodePointReader("😀", nil)
	out := drain(r)
	require.Equal(t, []rune{'😀'}, out)
}

func TestCodePointReader_LoneSurrogateReportsError(t *testing.T) {
	var got []ErrorCode
	r := &codePointReader{
		src:    []uint16{0xD800, 'x'},
		line:   1,
		column: 0,
		onError: func(code ErrorCode, index, line, column int, msg string) {
			got = append(got, code)
		},
	}
	drain(r)
	require.Equal(t, []ErrorCode{ErrSurrogateInInputStream}, got)
}

func TestCodePointReader_EOF(t *testing.T) {
	r := newCodePointReader("", nil)
	require.True(t, r.eof())
	require.Equal(t, rune(eofRune), r.consumeNext())
}
