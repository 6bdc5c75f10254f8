package terminal

import (
	"strings"
	"testing"

	"github.com/hinshun/vt10x"
	"github.com/stretchr/testify/require"
)

// reverseAttr is the glyph mode bit vt10x sets for SGR 7.
const reverseAttr = 1

func newVT(t *testing.T, cols, rows int) vt10x.Terminal {
	t.Helper()
	return vt10x.New(vt10x.WithSize(cols, rows))
}

func feed(t *testing.T, vt vt10x.Terminal, out string) {
	t.Helper()
	_, err := vt.Write([]byte(out))
	require.NoError(t, err)
}

// vtRow returns row y (0-based) with trailing blanks removed.
func vtRow(vt vt10x.Terminal, y int) string {
	vt.Lock()
	defer vt.Unlock()
	cols, _ := vt.Size()
	var b strings.Builder
	for x := 0; x < cols; x++ {
		c := vt.Cell(x, y).Char
		if c == 0 {
			c = ' '
		}
		b.WriteRune(c)
	}
	return strings.TrimRight(b.String(), " ")
}

func vtReversed(vt vt10x.Terminal, x, y int) bool {
	vt.Lock()
	defer vt.Unlock()
	return vt.Cell(x, y).Mode&reverseAttr != 0
}
