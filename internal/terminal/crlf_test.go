package terminal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRLFWriter(t *testing.T) {
	testCases := []struct {
		name     string
		writes   []string
		expected string
	}{
		{name: "bare newlines", writes: []string{"a\nb\n"}, expected: "a\r\nb\r\n"},
		{name: "existing crlf kept", writes: []string{"a\r\nb"}, expected: "a\r\nb"},
		{name: "cr split across writes", writes: []string{"a\r", "\nb\n"}, expected: "a\r\nb\r\n"},
		{name: "no newline", writes: []string{"plain"}, expected: "plain"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewCRLFWriter(&buf)
			for _, s := range tc.writes {
				n, err := w.Write([]byte(s))
				require.NoError(t, err)
				assert.Equal(t, len(s), n)
			}
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}
