package cli

import (
	"errors"
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyToClipboard(t *testing.T) {
	if clipboard.Unsupported {
		assert.ErrorIs(t, CopyToClipboard("69435151530"), ErrClipboardUnsupported)
		return
	}

	original := clipboardWrite
	t.Cleanup(func() { clipboardWrite = original })

	var got string
	clipboardWrite = func(text string) error {
		got = text
		return nil
	}
	require.NoError(t, CopyToClipboard("69435151530"))
	assert.Equal(t, "69435151530", got)

	clipboardWrite = func(string) error { return errors.New("xsel missing") }
	err := CopyToClipboard("69435151530")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xsel missing")
}
