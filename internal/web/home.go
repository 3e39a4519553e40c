package web

import "net/http"

var homePage = mustPage(`
{{define "content"}}
<h1>Latest videos</h1>
<p class="muted" id="feed-status">Loading…</p>
<div class="grid" id="feed"></div>
{{end}}
{{define "script"}}
<script nonce="{{.Nonce}}">
    reel.api('/api/videos').then(function (res) {
        if (!res.ok) { throw new Error('feed failed'); }
        return res.json();
    }).then(function (body) {
        var status = document.getElementById('feed-status');
        var feed = document.getElementById('feed');
        if (!body.videos.length) {
            reel.text(status, 'No videos yet.');
            return;
        }
        status.remove();
        body.videos.forEach(function (v) {
            var card = document.createElement('div');
            card.className = 'card';

            var player = document.createElement('video');
            player.src = v.playbackUrl;
            player.preload = 'metadata';
            card.appendChild(player);

            var title = document.createElement('h1');
            var a = document.createElement('a');
            a.href = '/watch/' + encodeURIComponent(v.id);
            a.textContent = v.title;
            title.appendChild(a);
            card.appendChild(title);

            var meta = document.createElement('p');
            meta.className = 'muted';
            meta.textContent = new Date(v.createdAt).toLocaleString();
            card.appendChild(meta);

            feed.appendChild(card);
        });
    }).catch(function () {
        reel.text(document.getElementById('feed-status'), 'Could not load the feed.');
    });
</script>
{{end}}`)

func (p *Pages) Home(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, homePage, "Latest videos")
}
