package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRService_CardURL(t *testing.T) {
	svc := NewQRService("https://cards.example.com", t.TempDir())
	assert.Equal(t, "https://cards.example.com/view-card.html?id=card_0000aaaa", svc.CardURL("card_0000aaaa"))
}

func TestQRService_Generate(t *testing.T) {
	dir := t.TempDir()
	svc := NewQRService("http://localhost:3000", dir)

	path, err := svc.Generate("card_0000aaaa")
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(svc.PNGPath("card_0000aaaa")), path)

	info, err := os.Stat(filepath.FromSlash(path))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// PNG magic bytes.
	data, err := os.ReadFile(filepath.FromSlash(path))
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestQRService_GenerateUnwritableDir(t *testing.T) {
	svc := NewQRService("http://localhost:3000", filepath.Join(t.TempDir(), "missing", "nested"))

	_, err := svc.Generate("card_0000aaaa")
	require.Error(t, err)
}
