package presets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/network"
)

func TestGroups(t *testing.T) {
	groups, err := Groups()
	require.NoError(t, err)
	require.Len(t, groups, len(models.Contexts))

	for i, g := range groups {
		assert.Equal(t, models.Contexts[i], g.Context)
		assert.NotEmpty(t, g.Presets, g.Context)
		for _, p := range g.Presets {
			assert.Equal(t, g.Context, p.Context)
			assert.True(t, strings.HasPrefix(p.URL, URLPrefix+string(g.Context)+"/"), p.URL)
		}
	}
}

func TestEmbeddedLoaderReadsEveryPreset(t *testing.T) {
	groups, err := Groups()
	require.NoError(t, err)

	var loader EmbeddedLoader
	for _, g := range groups {
		for _, p := range g.Presets {
			text, err := loader.Load(context.Background(), p.URL)
			require.NoError(t, err, p.URL)
			assert.NotEmpty(t, text, p.URL)
		}
	}
}

func TestPresetTextIsVerbatim(t *testing.T) {
	p, ok := Find(models.ContextHTMLContent, "Image onerror")
	require.True(t, ok)

	text, err := EmbeddedLoader{}.Load(context.Background(), p.URL)
	require.NoError(t, err)
	assert.Equal(t, `<img src=x onerror="xss()">`, text)

	p, ok = Find(models.ContextChallenges, "Backslash before quote")
	require.True(t, ok)
	text, err = EmbeddedLoader{}.Load(context.Background(), p.URL)
	require.NoError(t, err)
	assert.Equal(t, `\"; xss(); //`, text)
}

func TestEmbeddedLoaderRejectsBadURLs(t *testing.T) {
	for _, url := range []string{
		"/payloads/../index.yaml",
		"/elsewhere/html-content/script.txt",
		"/payloads/html-content/missing.txt",
		"/payloads/",
	} {
		_, err := EmbeddedLoader{}.Load(context.Background(), url)
		assert.ErrorIs(t, err, ErrNotFound, url)
	}
}

func TestFind(t *testing.T) {
	_, ok := Find(models.ContextURL, "javascript URL")
	assert.True(t, ok)
	_, ok = Find(models.ContextURL, "Image onerror")
	assert.False(t, ok)
	assert.Nil(t, ForContext("nowhere"))
}

func TestHTTPLoader(t *testing.T) {
	server := httptest.NewServer(http.StripPrefix("/payloads", http.FileServer(http.FS(Files()))))
	defer server.Close()

	loader := NewHTTPLoader(server.URL+"/", network.NewClient(time.Second, 0), nil)

	text, err := loader.Load(context.Background(), "/payloads/url/javascript.txt")
	require.NoError(t, err)
	assert.Equal(t, "javascript:xss()", text)

	_, err = loader.Load(context.Background(), "/payloads/url/missing.txt")
	assert.ErrorIs(t, err, network.ErrStatus)

	_, err = loader.Load(context.Background(), "http://evil.example/x")
	assert.ErrorIs(t, err, ErrNotFound)
}
