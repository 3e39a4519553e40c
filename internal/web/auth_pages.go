package web

import "net/http"

var loginPage = mustPage(`
{{define "content"}}
<div class="card" id="auth-card">
    <h1>Sign in</h1>
    <form id="login-form">
        <label>Email <input type="email" id="email" autocomplete="email" required></label>
        <label>Password <input type="password" id="password" autocomplete="current-password" required></label>
        <button type="submit">Sign in</button>
    </form>
    <p class="error" id="form-error"></p>
    <p class="muted">No account? <a href="/signup">Sign up</a></p>
</div>
{{end}}
{{define "script"}}
<script nonce="{{.Nonce}}">
    document.addEventListener('reel:identity', function (e) {
        if (e.detail.user) { location.href = '/'; }
    });
    document.getElementById('login-form').addEventListener('submit', function (e) {
        e.preventDefault();
        var errEl = document.getElementById('form-error');
        reel.text(errEl, '');
        fetch('/api/auth/login', {
            method: 'POST',
            headers: { 'Content-Type': 'application/json' },
            body: JSON.stringify({
                email: document.getElementById('email').value,
                password: document.getElementById('password').value
            })
        }).then(function (res) {
            return res.json().then(function (body) {
                if (!res.ok) { throw new Error(body.error || 'sign in failed'); }
                reel.setToken(body.accessToken);
                location.href = '/';
            });
        }).catch(function (err) {
            reel.text(errEl, err.message);
        });
    });
</script>
{{end}}`)

var signupPage = mustPage(`
{{define "content"}}
<div class="card" id="auth-card">
    <h1>Create account</h1>
    <form id="signup-form">
        <label>Email <input type="email" id="email" autocomplete="email" required></label>
        <label>Password <input type="password" id="password" autocomplete="new-password" minlength="8" required></label>
        <button type="submit">Sign up</button>
    </form>
    <p class="error" id="form-error"></p>
    <p class="muted">Already registered? <a href="/login">Sign in</a></p>
</div>
{{end}}
{{define "script"}}
<script nonce="{{.Nonce}}">
    document.addEventListener('reel:identity', function (e) {
        if (e.detail.user) { location.href = '/'; }
    });
    document.getElementById('signup-form').addEventListener('submit', function (e) {
        e.preventDefault();
        var errEl = document.getElementById('form-error');
        reel.text(errEl, '');
        fetch('/api/auth/signup', {
            method: 'POST',
            headers: { 'Content-Type': 'application/json' },
            body: JSON.stringify({
                email: document.getElementById('email').value,
                password: document.getElementById('password').value
            })
        }).then(function (res) {
            return res.json().then(function (body) {
                if (!res.ok) { throw new Error(body.error || 'sign up failed'); }
                reel.setToken(body.accessToken);
                location.href = '/';
            });
        }).catch(function (err) {
            reel.text(errEl, err.message);
        });
    });
</script>
{{end}}`)

func (p *Pages) Login(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, loginPage, "Sign in")
}

func (p *Pages) Signup(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, signupPage, "Sign up")
}
