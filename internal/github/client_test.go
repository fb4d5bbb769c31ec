package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// serveRelease returns a test server answering the given API path with the JSON body.
func serveRelease(t *testing.T, path, body string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts
}

// TestResolveAsset_TagTemplate covers the templated resolution scenario:
// a dxvk release tagged v1.2 resolves through the template to its asset URL.
func TestResolveAsset_TagTemplate(t *testing.T) {
	t.Parallel()

	body := `{
		"tag_name": "v1.2",
		"assets": [
			{"name": "dxvk-macOS-async-v1.2.tar.gz", "browser_download_url": "U"},
			{"name": "dxvk-macOS-async-v1.2.tar.gz.sha256", "browser_download_url": "S"}
		]
	}`
	ts := serveRelease(t, "/repos/Gcenx/DXVK-macOS/releases/latest", body)

	client := NewClient(WithBaseURL(ts.URL))

	resolved, err := client.ResolveAsset(
		context.Background(),
		"Gcenx/DXVK-macOS",
		LatestVersion,
		TagTemplate("dxvk-macOS-async-<tag>.tar.gz"),
	)
	require.NoError(t, err)
	require.Equal(t, "v1.2", resolved.Tag)
	require.Equal(t, "dxvk-macOS-async-v1.2.tar.gz", resolved.Name)
	require.Equal(t, "U", resolved.URL)
}

// TestResolveAsset_ExactName resolves a fixed asset name from an explicit tag.
func TestResolveAsset_ExactName(t *testing.T) {
	t.Parallel()

	body := `{
		"tag_name": "v1.2.7",
		"assets": [
			{"name": "MoltenVK-ios.tar", "browser_download_url": "I"},
			{"name": "MoltenVK-macos.tar", "browser_download_url": "M"}
		]
	}`
	ts := serveRelease(t, "/repos/KhronosGroup/MoltenVK/releases/tags/v1.2.7", body)

	client := NewClient(WithBaseURL(ts.URL))

	resolved, err := client.ResolveAsset(
		context.Background(),
		"KhronosGroup/MoltenVK",
		"v1.2.7",
		ExactName("MoltenVK-macos.tar"),
	)
	require.NoError(t, err)
	require.Equal(t, "MoltenVK-macos.tar", resolved.Name)
	require.Equal(t, "M", resolved.URL)
}

// TestResolveAsset_NoMatch verifies a zero-match resolution is a hard failure.
func TestResolveAsset_NoMatch(t *testing.T) {
	t.Parallel()

	body := `{"tag_name": "v2.0", "assets": [{"name": "other.zip", "browser_download_url": "X"}]}`
	ts := serveRelease(t, "/repos/o/r/releases/latest", body)

	client := NewClient(WithBaseURL(ts.URL))

	_, err := client.ResolveAsset(context.Background(), "o/r", LatestVersion, ExactName("missing.tar"))
	require.ErrorIs(t, err, ErrNoAssetMatch)
}

// TestResolveAsset_Ambiguous verifies a multi-match resolution is a hard failure.
func TestResolveAsset_Ambiguous(t *testing.T) {
	t.Parallel()

	body := `{
		"tag_name": "v2.0",
		"assets": [
			{"name": "dup.tar", "browser_download_url": "A"},
			{"name": "dup.tar", "browser_download_url": "B"}
		]
	}`
	ts := serveRelease(t, "/repos/o/r/releases/latest", body)

	client := NewClient(WithBaseURL(ts.URL))

	_, err := client.ResolveAsset(context.Background(), "o/r", LatestVersion, ExactName("dup.tar"))
	require.ErrorIs(t, err, ErrAmbiguousAsset)
}

// TestResolveAsset_MetadataFailure checks a non-200 metadata response fails the resolution.
func TestResolveAsset_MetadataFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(ts.Close)

	client := NewClient(WithBaseURL(ts.URL))

	_, err := client.ResolveAsset(context.Background(), "o/r", LatestVersion, ExactName("any.tar"))
	require.Error(t, err)
	require.ErrorContains(t, err, "404")
}

// TestSelectors covers matching behavior of the selector variants.
func TestSelectors(t *testing.T) {
	t.Parallel()

	exact := ExactName("MoltenVK-macos.tar")
	require.True(t, exact.Matches("v1.2.7", "MoltenVK-macos.tar"))
	require.False(t, exact.Matches("v1.2.7", "MoltenVK-ios.tar"))

	templated := TagTemplate("wine-devel-<tag>-osx64.tar.xz")
	require.True(t, templated.Matches("9.0", "wine-devel-9.0-osx64.tar.xz"))
	require.False(t, templated.Matches("9.0", "wine-devel-8.0-osx64.tar.xz"))
	require.Equal(t, "wine-devel-<tag>-osx64.tar.xz", templated.String())
}
