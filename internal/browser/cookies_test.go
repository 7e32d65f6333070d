package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	cookies := []Cookie{
		{
			Name:     "session-id",
			Value:    "abc-123",
			Domain:   ".amazon.com",
			Path:     "/",
			Expires:  1893456000,
			HTTPOnly: true,
			Secure:   true,
			SameSite: "Lax",
		},
		{
			Name:   "ubid-main",
			Value:  "def-456",
			Domain: ".amazon.com",
			Path:   "/",
		},
	}

	require.NoError(t, WriteCookieFile(path, cookies))

	loaded, err := ReadCookieFile(path)
	require.NoError(t, err)
	assert.Equal(t, cookies, loaded)

	// Temp file must not linger after the atomic rename.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestReadCookieFileAcceptsExtractorFormat(t *testing.T) {
	// Format produced by a browser context dump, including fields the core
	// passes through untouched.
	path := filepath.Join(t.TempDir(), "cookies.json")
	raw := `[
		{
			"name": "at-main",
			"value": "token",
			"domain": ".amazon.com",
			"path": "/",
			"expires": 1767225600.5,
			"httpOnly": true,
			"secure": true,
			"sameSite": "Strict"
		}
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	cookies, err := ReadCookieFile(path)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "at-main", cookies[0].Name)
	assert.Equal(t, "Strict", cookies[0].SameSite)
	assert.True(t, cookies[0].HTTPOnly)
}

func TestReadCookieFileMissing(t *testing.T) {
	_, err := ReadCookieFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestSameSiteAttributeMapping(t *testing.T) {
	assert.NotNil(t, sameSiteAttribute("Lax"))
	assert.NotNil(t, sameSiteAttribute("Strict"))
	assert.NotNil(t, sameSiteAttribute("None"))
	assert.Nil(t, sameSiteAttribute(""))
	assert.Nil(t, sameSiteAttribute("unspecified"))
}
