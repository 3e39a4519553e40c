package web

import "net/http"

var adminPage = mustPage(`
{{define "content"}}
<h1>Admin console</h1>
<h2 class="muted">Profiles</h2>
<table id="profiles">
    <thead><tr><th>Email</th><th>Role</th><th>Banned</th><th></th></tr></thead>
    <tbody></tbody>
</table>
<h2 class="muted">Videos</h2>
<table id="videos">
    <thead><tr><th>Title</th><th>Uploaded</th><th></th></tr></thead>
    <tbody></tbody>
</table>
<p class="error" id="admin-error"></p>
{{end}}
{{define "script"}}
<script nonce="{{.Nonce}}">
    document.addEventListener('reel:identity', function (e) {
        if (!e.detail.isAdmin) { location.href = '/'; }
    });

    var errEl = document.getElementById('admin-error');
    // One in-flight action per row; actions on different rows may overlap.
    var busy = {};

    function action(id, buttonEl, run) {
        if (busy[id]) { return; }
        busy[id] = true;
        buttonEl.disabled = true;
        run().catch(function (err) {
            reel.text(errEl, err.message);
        }).finally(function () {
            delete busy[id];
            buttonEl.disabled = false;
        });
    }

    function checkOK(res) {
        if (res.ok) { return res; }
        return res.json().then(function (body) { throw new Error(body.error || 'request failed'); });
    }

    function loadProfiles() {
        return reel.api('/api/admin/profiles').then(checkOK).then(function (res) {
            return res.json();
        }).then(function (body) {
            var tbody = document.querySelector('#profiles tbody');
            tbody.textContent = '';
            body.profiles.forEach(function (p) {
                var tr = document.createElement('tr');

                var email = document.createElement('td');
                email.textContent = p.email;
                tr.appendChild(email);

                var role = document.createElement('td');
                role.textContent = p.role;
                tr.appendChild(role);

                var banned = document.createElement('td');
                banned.textContent = p.banned ? 'yes' : 'no';
                tr.appendChild(banned);

                var actions = document.createElement('td');
                var banBtn = document.createElement('button');
                banBtn.className = 'secondary';
                banBtn.textContent = p.banned ? 'Unban' : 'Ban';
                banBtn.addEventListener('click', function () {
                    action(p.id, banBtn, function () {
                        return reel.api('/api/admin/profiles/' + encodeURIComponent(p.id) + '/ban', { method: 'POST' })
                            .then(checkOK).then(loadProfiles);
                    });
                });
                actions.appendChild(banBtn);

                var roleBtn = document.createElement('button');
                roleBtn.className = 'secondary';
                roleBtn.textContent = p.role === 'admin' ? 'Make user' : 'Make admin';
                roleBtn.addEventListener('click', function () {
                    action(p.id, roleBtn, function () {
                        return reel.api('/api/admin/profiles/' + encodeURIComponent(p.id) + '/role', { method: 'POST' })
                            .then(checkOK).then(loadProfiles);
                    });
                });
                actions.appendChild(roleBtn);

                tr.appendChild(actions);
                tbody.appendChild(tr);
            });
        });
    }

    function loadVideos() {
        return reel.api('/api/admin/videos').then(checkOK).then(function (res) {
            return res.json();
        }).then(function (body) {
            var tbody = document.querySelector('#videos tbody');
            tbody.textContent = '';
            body.videos.forEach(function (v) {
                var tr = document.createElement('tr');

                var title = document.createElement('td');
                var a = document.createElement('a');
                a.href = '/watch/' + encodeURIComponent(v.id);
                a.textContent = v.title;
                title.appendChild(a);
                tr.appendChild(title);

                var created = document.createElement('td');
                created.textContent = new Date(v.createdAt).toLocaleString();
                tr.appendChild(created);

                var actions = document.createElement('td');
                var delBtn = document.createElement('button');
                delBtn.className = 'secondary';
                delBtn.textContent = 'Delete';
                delBtn.addEventListener('click', function () {
                    action(v.id, delBtn, function () {
                        return reel.api('/api/admin/videos/' + encodeURIComponent(v.id), { method: 'DELETE' })
                            .then(checkOK).then(loadVideos);
                    });
                });
                actions.appendChild(delBtn);

                tr.appendChild(actions);
                tbody.appendChild(tr);
            });
        });
    }

    loadProfiles().catch(function (err) { reel.text(errEl, err.message); });
    loadVideos().catch(function (err) { reel.text(errEl, err.message); });
</script>
{{end}}`)

func (p *Pages) Admin(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, adminPage, "Admin")
}
