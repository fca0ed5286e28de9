package site

import "html/template"

var (
	pageTemplate     = template.Must(template.New("page").Parse(pageLayout))
	redirectTemplate = template.Must(template.New("redirect").Parse(redirectLayout))
)

// notFoundBody is the article markup of the generated 404 page. The %s slot
// takes the site base path.
const notFoundBody = `<h1>Page not found</h1>
<p>The page you are looking for does not exist or has moved. Head back to the
<a href="%s">catalog index</a> or pick a pattern from the sidebar.</p>`

// HTML Templates

const pageLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="patterns {{.Generator}}">
<title>{{.TabTitle}}</title>
{{- if .Page.Description}}
<meta name="description" content="{{.Page.Description}}">
{{- else if .Site.Description}}
<meta name="description" content="{{.Site.Description}}">
{{- end}}
<link rel="stylesheet" href="{{.Site.BasePath}}assets/site.css">
</head>
<body data-base="{{.Site.BasePath}}">
<header class="topbar">
  <a class="brand" href="{{.Site.BasePath}}">{{.Site.Title}}</a>
  <div class="search">
    <input id="search" type="search" placeholder="Search patterns" autocomplete="off">
    <ul id="search-results" hidden></ul>
  </div>
</header>
<div class="shell">
<nav class="sidebar">
{{- range .Nav}}
{{- $open := not .Collapsed}}
{{- range .Items}}{{if eq .Href $.Page.Href}}{{$open = true}}{{end}}{{end}}
  <details class="nav-group"{{if $open}} open{{end}}>
    <summary>{{.Title}}</summary>
    <ul>
    {{- range .Items}}
      <li><a href="{{.Href}}"{{if eq .Href $.Page.Href}} class="active"{{end}}>{{.Label}}</a></li>
    {{- end}}
    </ul>
  </details>
{{- end}}
</nav>
<main>
<article class="doc">
{{.Page.Content}}
</article>
{{- if .Page.Headings}}
<aside class="toc">
  <p class="toc-title">On this page</p>
  <ul>
  {{- range .Page.Headings}}
    <li class="toc-l{{.Level}}"><a href="#{{.ID}}">{{.Text}}</a></li>
  {{- end}}
  </ul>
</aside>
{{- end}}
</main>
</div>
<footer>
{{- if not .Page.LastMod.IsZero}}
  <span class="lastmod">Updated {{.Page.LastMod.Format "2006-01-02"}}</span>
{{- end}}
{{- range .Social}}
  <a href="{{.URL}}" rel="noopener">{{.Name}}</a>
{{- end}}
  <span>{{.Site.Title}}</span>
</footer>
<script src="{{.Site.BasePath}}assets/search.js" defer></script>
{{- if .LiveReload}}
<script>new EventSource("/__livereload").onmessage = function () { location.reload(); };</script>
{{- end}}
</body>
</html>
`

const redirectLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="canonical" href="{{.Target}}">
<meta http-equiv="refresh" content="0; url={{.Target}}">
</head>
<body>
<p>Moved to <a href="{{.Target}}">{{.Title}}</a>.</p>
</body>
</html>
`
