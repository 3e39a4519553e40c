package web

import "net/http"

var watchPage = mustPage(`
{{define "content"}}
<p class="muted" id="watch-status">Loading…</p>
<div id="watch" hidden>
    <video id="player" controls></video>
    <h1 id="video-title"></h1>
    <p class="muted" id="video-meta"></p>
    <p id="video-description"></p>
</div>
{{end}}
{{define "script"}}
<script nonce="{{.Nonce}}">
    var videoID = decodeURIComponent(location.pathname.split('/').pop());

    reel.api('/api/videos/' + encodeURIComponent(videoID)).then(function (res) {
        if (!res.ok) { throw new Error('load failed'); }
        return res.json();
    }).then(function (body) {
        var status = document.getElementById('watch-status');
        if (!body.video) {
            reel.text(status, 'Video not found.');
            return;
        }
        status.remove();
        var v = body.video;
        document.getElementById('watch').hidden = false;
        document.getElementById('player').src = v.playbackUrl;
        reel.text(document.getElementById('video-title'), v.title);
        reel.text(document.getElementById('video-meta'), new Date(v.createdAt).toLocaleString());
        reel.text(document.getElementById('video-description'), v.description);
        document.title = v.title + ' | OpenReel';

        fetch('/api/videos/' + encodeURIComponent(videoID) + '/view', { method: 'POST' });
    }).catch(function () {
        reel.text(document.getElementById('watch-status'), 'Could not load this video.');
    });
</script>
{{end}}`)

func (p *Pages) Watch(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, watchPage, "Watch")
}
