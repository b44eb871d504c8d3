package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBotLink(t *testing.T) {
	link, err := GenerateBotLink("support_bot")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/support_bot", link)
}

func TestGenerateBotLinkRequiresUsername(t *testing.T) {
	_, err := GenerateBotLink("")
	assert.Error(t, err)
}

func TestGenerateQRCode(t *testing.T) {
	qrBytes, err := GenerateQRCode("support_bot")
	require.NoError(t, err)
	require.NotEmpty(t, qrBytes)
	// PNG-сигнатура.
	assert.True(t, bytes.HasPrefix(qrBytes, []byte{0x89, 'P', 'N', 'G'}))
}

func TestGenerateQRCodeRequiresUsername(t *testing.T) {
	_, err := GenerateQRCode("")
	assert.Error(t, err)
}
