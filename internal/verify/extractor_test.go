package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLinksFromReader_CollectsAllElements(t *testing.T) {
	page := `<!DOCTYPE html>
<html><head>
<link rel="stylesheet" href="/assets/site.css">
<script src="https://cdn.example.com/app.js"></script>
</head><body>
<a href="https://vuejs.org/guide/">Vue <em>guide</em></a>
<img src="diagram.png" alt="Slot flow">
<video src="/media/demo.mp4"></video>
</body></html>`

	links, err := ExtractLinksFromReader(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, links, 5)

	byURL := make(map[string]*Link, len(links))
	for _, l := range links {
		byURL[l.URL] = l
	}

	require.Equal(t, "link", byURL["/assets/site.css"].Tag)
	require.Equal(t, "stylesheet", byURL["/assets/site.css"].Text)
	require.Equal(t, "script", byURL["https://cdn.example.com/app.js"].Tag)
	require.Equal(t, "Vue guide", byURL["https://vuejs.org/guide/"].Text)
	require.Equal(t, "Slot flow", byURL["diagram.png"].Text)
	require.Equal(t, "video", byURL["/media/demo.mp4"].Tag)
}

func TestExtractLinksFromReader_ExternalDetection(t *testing.T) {
	page := `<body>
<a href="state/stores/">Stores</a>
<a href="/patterns/composables/">Composables</a>
<a href="https://pinia.vuejs.org/">Pinia</a>
<a href="mailto:team@example.com">Mail</a>
</body>`

	links, err := ExtractLinksFromReader(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, links, 4)

	external := make(map[string]bool, len(links))
	for _, l := range links {
		external[l.URL] = l.External
	}

	require.False(t, external["state/stores/"])
	require.False(t, external["/patterns/composables/"])
	require.True(t, external["https://pinia.vuejs.org/"])
	require.False(t, external["mailto:team@example.com"])
}

func TestShouldCheck_FiltersUncheckableLinks(t *testing.T) {
	tests := []struct {
		name string
		link *Link
		want bool
	}{
		{"external https", &Link{URL: "https://vuejs.org/", External: true}, true},
		{"external http", &Link{URL: "http://example.com/", External: true}, true},
		{"fragment", &Link{URL: "#usage"}, false},
		{"mailto", &Link{URL: "mailto:team@example.com"}, false},
		{"tel", &Link{URL: "tel:+4712345678"}, false},
		{"javascript", &Link{URL: "javascript:void(0)"}, false},
		{"data uri", &Link{URL: "data:image/png;base64,iVBOR"}, false},
		{"empty", &Link{URL: ""}, false},
		{"site relative", &Link{URL: "/patterns/state/stores/"}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ShouldCheck(tt.link))
		})
	}
}

func TestExtractLinks_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	content := `<body><a href="https://vuejs.org/">Vue</a></body>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	links, err := ExtractLinks(path)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "https://vuejs.org/", links[0].URL)
	require.True(t, links[0].External)
}

func TestExtractLinks_MissingFile(t *testing.T) {
	_, err := ExtractLinks(filepath.Join(t.TempDir(), "absent.html"))
	require.Error(t, err)
}
