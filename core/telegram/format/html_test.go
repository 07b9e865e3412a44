package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoldEscapes(t *testing.T) {
	require.Equal(t, "<b>Fish &amp; Chips &lt;3</b>", Bold("Fish & Chips <3"))
}

func TestNumberedList(t *testing.T) {
	items := make([]string, 12)
	for i := range items {
		items[i] = "x"
	}
	out := NumberedList(items)
	require.Contains(t, out, "1. x\n2. x")
	require.Contains(t, out, "\n12. x")
	require.Empty(t, NumberedList(nil))
}
