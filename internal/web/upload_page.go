package web

import "net/http"

var uploadPage = mustPage(`
{{define "content"}}
<div class="card">
    <h1>Upload a video</h1>
    <form id="upload-form">
        <label>Video file <input type="file" id="file" accept="video/*"></label>
        <label>Title <input type="text" id="title" maxlength="200"></label>
        <label>Description <textarea id="description" rows="4" maxlength="5000"></textarea></label>
        <button type="submit" id="upload-button">Upload</button>
    </form>
    <progress id="upload-progress" max="100" value="0" hidden></progress>
    <p class="muted" id="upload-status"></p>
    <p class="error" id="form-error"></p>
</div>
{{end}}
{{define "script"}}
<script nonce="{{.Nonce}}">
    document.addEventListener('reel:identity', function (e) {
        if (!e.detail.user) { location.href = '/login'; return; }
        if (e.detail.profile && e.detail.profile.banned) { location.href = '/'; }
    });

    var form = document.getElementById('upload-form');
    var button = document.getElementById('upload-button');
    var bar = document.getElementById('upload-progress');
    var status = document.getElementById('upload-status');
    var errEl = document.getElementById('form-error');

    function setProgress(pct) {
        bar.hidden = false;
        bar.value = pct;
        reel.text(status, 'Uploading… ' + pct.toFixed(2) + '%');
    }

    function sendChunk(session, file, offset) {
        var chunk = file.slice(offset, Math.min(offset + session.chunkSize, file.size));
        return reel.api('/api/uploads/' + encodeURIComponent(session.uploadId), {
            method: 'PATCH',
            headers: { 'Upload-Offset': String(offset), 'Content-Type': 'application/offset+octet-stream' },
            body: chunk
        }).then(function (res) {
            if (res.status === 409) {
                // The server knows better than we do; resync and go on.
                var stored = parseInt(res.headers.get('Upload-Offset'), 10);
                if (isNaN(stored)) { throw new Error('upload out of sync'); }
                return stored;
            }
            if (!res.ok) {
                return res.json().then(function (body) { throw new Error(body.error || 'chunk failed'); });
            }
            return res.json().then(function (body) {
                setProgress(body.progress);
                return body.offset;
            });
        }).then(function (next) {
            if (next < file.size) { return sendChunk(session, file, next); }
        });
    }

    form.addEventListener('submit', function (e) {
        e.preventDefault();
        reel.text(errEl, '');

        var file = document.getElementById('file').files[0];
        if (!file) {
            reel.text(errEl, 'Choose a video file.');
            return;
        }
        var title = document.getElementById('title').value;
        if (!title.trim()) {
            reel.text(errEl, 'Title is required.');
            return;
        }
        var description = document.getElementById('description').value;
        // Survives page reloads, so a retried upload resumes mid-file.
        var fingerprint = [file.name, file.size, file.lastModified].join('-');

        button.disabled = true;
        var session;
        reel.api('/api/uploads', {
            method: 'POST',
            headers: { 'Content-Type': 'application/json' },
            body: JSON.stringify({
                fileName: file.name,
                fileSize: file.size,
                contentType: file.type,
                fingerprint: fingerprint
            })
        }).then(function (res) {
            return res.json().then(function (body) {
                if (!res.ok) { throw new Error(body.error || 'could not start upload'); }
                session = body;
                setProgress(session.offset / file.size * 100);
                return sendChunk(session, file, session.offset);
            });
        }).then(function () {
            reel.text(status, 'Finalizing…');
            return reel.api('/api/uploads/' + encodeURIComponent(session.uploadId) + '/complete', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ title: title, description: description })
            });
        }).then(function (res) {
            return res.json().then(function (body) {
                if (!res.ok) { throw new Error(body.error || 'could not finish upload'); }
                location.href = '/watch/' + encodeURIComponent(body.video.id);
            });
        }).catch(function (err) {
            reel.text(errEl, err.message);
            button.disabled = false;
        });
    });
</script>
{{end}}`)

func (p *Pages) Upload(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, uploadPage, "Upload")
}
