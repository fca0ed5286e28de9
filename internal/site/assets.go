package site

// Static assets written into every build. Kept as source constants so the
// binary stays self-contained.

const siteCSS = `:root {
  --bg: #ffffff;
  --fg: #213547;
  --muted: #6b7280;
  --brand: #42b883;
  --border: #e5e7eb;
  --code-bg: #f6f8fa;
  --sidebar-width: 260px;
  --toc-width: 200px;
}
* { box-sizing: border-box; }
body {
  margin: 0;
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  line-height: 1.65;
  color: var(--fg);
  background: var(--bg);
}
a { color: var(--brand); text-decoration: none; }
a:hover { text-decoration: underline; }

.topbar {
  position: sticky;
  top: 0;
  display: flex;
  align-items: center;
  justify-content: space-between;
  gap: 1rem;
  padding: 0.6rem 1.2rem;
  border-bottom: 1px solid var(--border);
  background: var(--bg);
  z-index: 10;
}
.brand { font-weight: 600; color: var(--fg); }
.search { position: relative; }
.search input {
  width: 220px;
  padding: 0.35rem 0.6rem;
  border: 1px solid var(--border);
  border-radius: 6px;
  font-size: 0.9rem;
}
#search-results {
  position: absolute;
  right: 0;
  top: 2.2rem;
  width: 320px;
  max-height: 320px;
  overflow-y: auto;
  margin: 0;
  padding: 0.25rem;
  list-style: none;
  border: 1px solid var(--border);
  border-radius: 6px;
  background: var(--bg);
  box-shadow: 0 4px 12px rgba(0, 0, 0, 0.08);
}
#search-results li a {
  display: block;
  padding: 0.4rem 0.6rem;
  border-radius: 4px;
  color: var(--fg);
}
#search-results li a:hover,
#search-results li.selected a {
  background: var(--code-bg);
  text-decoration: none;
}
#search-results .group {
  font-size: 0.75rem;
  color: var(--muted);
}

.shell {
  display: flex;
  max-width: 1280px;
  margin: 0 auto;
}
.sidebar {
  width: var(--sidebar-width);
  flex-shrink: 0;
  padding: 1.2rem 0.8rem;
  border-right: 1px solid var(--border);
}
.nav-group summary {
  cursor: pointer;
  font-weight: 600;
  font-size: 0.85rem;
  text-transform: uppercase;
  letter-spacing: 0.03em;
  color: var(--muted);
  padding: 0.4rem 0.4rem;
}
.nav-group ul { list-style: none; margin: 0.2rem 0 0.8rem; padding: 0; }
.nav-group li a {
  display: block;
  padding: 0.25rem 0.8rem;
  border-radius: 4px;
  color: var(--fg);
  font-size: 0.92rem;
}
.nav-group li a:hover { background: var(--code-bg); text-decoration: none; }
.nav-group li a.active { color: var(--brand); font-weight: 500; }

main {
  display: flex;
  flex: 1;
  min-width: 0;
  padding: 1.6rem 2rem;
  gap: 2rem;
}
article.doc { flex: 1; min-width: 0; max-width: 760px; }
article.doc h1 { font-size: 1.8rem; line-height: 1.3; }
article.doc h2 {
  margin-top: 2rem;
  padding-top: 1rem;
  border-top: 1px solid var(--border);
}
article.doc pre {
  background: var(--code-bg);
  padding: 1rem;
  border-radius: 8px;
  overflow-x: auto;
  font-size: 0.88rem;
}
article.doc code {
  background: var(--code-bg);
  padding: 0.15rem 0.35rem;
  border-radius: 4px;
  font-size: 0.88em;
}
article.doc pre code { background: none; padding: 0; }
article.doc table { border-collapse: collapse; width: 100%; }
article.doc th, article.doc td {
  border: 1px solid var(--border);
  padding: 0.45rem 0.7rem;
  text-align: left;
}
article.doc blockquote {
  margin: 1rem 0;
  padding: 0.1rem 1rem;
  border-left: 3px solid var(--brand);
  color: var(--muted);
}

.toc {
  width: var(--toc-width);
  flex-shrink: 0;
  position: sticky;
  top: 4rem;
  align-self: flex-start;
  font-size: 0.85rem;
}
.toc-title {
  font-weight: 600;
  text-transform: uppercase;
  font-size: 0.75rem;
  color: var(--muted);
}
.toc ul { list-style: none; margin: 0; padding: 0; }
.toc li a { display: block; padding: 0.15rem 0; color: var(--muted); }
.toc li a:hover { color: var(--brand); }
.toc li.toc-l3 { padding-left: 0.8rem; }

footer {
  display: flex;
  gap: 1.2rem;
  justify-content: center;
  padding: 1.2rem;
  border-top: 1px solid var(--border);
  font-size: 0.85rem;
  color: var(--muted);
}

@media (max-width: 900px) {
  .sidebar { display: none; }
  .toc { display: none; }
  main { padding: 1.2rem; }
}
`

const searchJS = `(function () {
  var base = document.body.dataset.base || '/';
  var input = document.getElementById('search');
  var results = document.getElementById('search-results');
  if (!input || !results) return;

  var index = null;

  function load() {
    if (index) return Promise.resolve(index);
    return fetch(base + 'search.json')
      .then(function (res) { return res.json(); })
      .then(function (data) { index = data; return index; });
  }

  function matches(entry, q) {
    if (entry.title.toLowerCase().indexOf(q) !== -1) return true;
    if (entry.description && entry.description.toLowerCase().indexOf(q) !== -1) return true;
    if (entry.group && entry.group.toLowerCase().indexOf(q) !== -1) return true;
    return (entry.tags || []).some(function (t) {
      return t.toLowerCase().indexOf(q) !== -1;
    });
  }

  function render(entries) {
    results.innerHTML = '';
    entries.slice(0, 10).forEach(function (entry) {
      var li = document.createElement('li');
      var a = document.createElement('a');
      a.href = entry.href;
      a.textContent = entry.title;
      if (entry.group) {
        var g = document.createElement('span');
        g.className = 'group';
        g.textContent = ' ' + entry.group;
        a.appendChild(g);
      }
      li.appendChild(a);
      results.appendChild(li);
    });
    results.hidden = entries.length === 0;
  }

  input.addEventListener('input', function () {
    var q = input.value.trim().toLowerCase();
    if (q.length < 2) {
      results.hidden = true;
      return;
    }
    load().then(function (data) {
      render(data.filter(function (entry) { return matches(entry, q); }));
    });
  });

  input.addEventListener('keydown', function (ev) {
    if (ev.key === 'Escape') {
      results.hidden = true;
      input.blur();
    }
    if (ev.key === 'Enter') {
      var first = results.querySelector('a');
      if (first && !results.hidden) window.location.href = first.href;
    }
  });

  document.addEventListener('keydown', function (ev) {
    if (ev.key === '/' && document.activeElement !== input) {
      ev.preventDefault();
      input.focus();
    }
  });

  document.addEventListener('click', function (ev) {
    if (!results.contains(ev.target) && ev.target !== input) {
      results.hidden = true;
    }
  });
})();
`
