// Package web serves the HTML pages. Each page is a server-rendered shell
// whose nonce'd inline script talks to the JSON API. Any auth-based redirect
// a script performs is a courtesy for the browser; the API middleware is
// what actually enforces access.
package web

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/openreel/openreel/internal/httputil"
)

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}} | OpenReel</title>
    <style nonce="{{.Nonce}}">
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            background: #0f1117;
            color: #e6e8ee;
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            min-height: 100vh;
        }
        a { color: #7aa2ff; text-decoration: none; }
        a:hover { text-decoration: underline; }
        nav {
            display: flex;
            align-items: center;
            justify-content: space-between;
            padding: 1rem 1.5rem;
            border-bottom: 1px solid #252936;
        }
        nav .brand { font-weight: 700; font-size: 1.1rem; color: #e6e8ee; }
        nav .links a, nav .links button { margin-left: 1rem; }
        .container { max-width: 960px; margin: 0 auto; padding: 2rem 1rem; }
        h1 { font-size: 1.4rem; margin-bottom: 1rem; }
        .muted { color: #8b92a5; font-size: 0.875rem; }
        .error { color: #ff8080; margin-top: 0.75rem; }
        .card {
            background: #181b24;
            border: 1px solid #252936;
            border-radius: 8px;
            padding: 1rem;
        }
        form label { display: block; margin-top: 0.75rem; font-size: 0.875rem; }
        input, textarea {
            width: 100%;
            margin-top: 0.25rem;
            padding: 0.5rem;
            background: #0f1117;
            color: #e6e8ee;
            border: 1px solid #323748;
            border-radius: 6px;
        }
        button {
            margin-top: 1rem;
            padding: 0.5rem 1rem;
            background: #3b6cff;
            color: #fff;
            border: none;
            border-radius: 6px;
            cursor: pointer;
        }
        button:disabled { opacity: 0.5; cursor: default; }
        button.secondary { background: #323748; }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fill, minmax(280px, 1fr));
            gap: 1rem;
        }
        video { width: 100%; border-radius: 8px; background: #000; }
        table { width: 100%; border-collapse: collapse; margin-top: 1rem; }
        th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #252936; font-size: 0.875rem; }
        progress { width: 100%; margin-top: 0.75rem; }
    </style>
</head>
<body>
    <nav>
        <a class="brand" href="/">OpenReel</a>
        <span class="links" id="nav-links"></span>
    </nav>
    <main class="container">{{template "content" .}}</main>
    <script nonce="{{.Nonce}}">
        var reel = {
            token: function () { return localStorage.getItem('openreel_token'); },
            setToken: function (t) {
                if (t) { localStorage.setItem('openreel_token', t); }
                else { localStorage.removeItem('openreel_token'); }
            },
            refresh: function () {
                return fetch('/api/auth/refresh', { method: 'POST' }).then(function (res) {
                    if (!res.ok) { return false; }
                    return res.json().then(function (body) {
                        reel.setToken(body.accessToken);
                        return true;
                    });
                }).catch(function () { return false; });
            },
            api: function (path, opts) {
                opts = opts || {};
                var send = function () {
                    var o = Object.assign({}, opts);
                    o.headers = Object.assign({}, opts.headers);
                    var t = reel.token();
                    if (t) { o.headers['Authorization'] = 'Bearer ' + t; }
                    return fetch(path, o);
                };
                return send().then(function (res) {
                    // The access token outlives pages but not long uploads;
                    // the refresh cookie lets us rotate it once and retry.
                    if (res.status !== 401 || !reel.token() || path.indexOf('/api/auth/') === 0) {
                        return res;
                    }
                    return reel.refresh().then(function (ok) {
                        if (!ok) { reel.setToken(null); return res; }
                        return send();
                    });
                });
            },
            me: function () {
                return reel.api('/api/auth/me').then(function (res) {
                    if (!res.ok) { return { user: null, profile: null, isAdmin: false }; }
                    return res.json();
                }).catch(function () {
                    return { user: null, profile: null, isAdmin: false };
                });
            },
            text: function (el, value) { el.textContent = value; }
        };

        reel.me().then(function (id) {
            var nav = document.getElementById('nav-links');
            if (!nav) { return; }
            nav.textContent = '';
            function link(href, label) {
                var a = document.createElement('a');
                a.href = href;
                a.textContent = label;
                nav.appendChild(a);
            }
            if (id.user) {
                link('/upload', 'Upload');
                if (id.isAdmin) { link('/admin', 'Admin'); }
                var out = document.createElement('a');
                out.href = '#';
                out.textContent = 'Sign out';
                out.addEventListener('click', function (e) {
                    e.preventDefault();
                    reel.api('/api/auth/logout', { method: 'POST' }).finally(function () {
                        reel.setToken(null);
                        location.href = '/';
                    });
                });
                nav.appendChild(out);
            } else {
                link('/login', 'Sign in');
                link('/signup', 'Sign up');
            }
            document.dispatchEvent(new CustomEvent('reel:identity', { detail: id }));
        });
    </script>
    {{template "script" .}}
</body>
</html>`

type pageData struct {
	Title string
	Nonce string
}

// mustPage builds a full page template from the shared shell plus the
// page's content and script defines.
func mustPage(defines string) *template.Template {
	t := template.Must(template.New("page").Parse(pageShell))
	return template.Must(t.Parse(defines))
}

// Pages holds the page handlers. All data loads client-side through the
// JSON API, so the handlers themselves carry no dependencies.
type Pages struct{}

func NewPages() *Pages {
	return &Pages{}
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, title string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := pageData{Title: title, Nonce: httputil.NonceFromContext(r.Context())}
	if err := tmpl.Execute(w, data); err != nil {
		slog.Error("failed to render page", "title", title, "error", err)
	}
}
