package http

import (
	"html/template"
	"net/http"

	"github.com/aussiebroadwan/newsletter/pkg/flashx"
	"github.com/aussiebroadwan/newsletter/pkg/httpx"
)

var pages = template.Must(template.New("pages").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta http-equiv="content-type" content="text/html; charset=utf-8">
    <title>{{.}}</title>
</head>
<body>
{{end}}

{{define "flash"}}{{with .}}<p class="flash-{{.Level}}"><i>{{.Text}}</i></p>{{end}}{{end}}

{{define "login"}}{{template "head" "Login"}}
{{template "flash" .Flash}}
<form action="/login" method="post">
    <label>Username
        <input type="text" placeholder="Enter Username" name="username">
    </label>
    <label>Password
        <input type="password" placeholder="Enter Password" name="password">
    </label>
    <button type="submit">Login</button>
</form>
</body>
</html>
{{end}}

{{define "dashboard"}}{{template "head" "Admin dashboard"}}
<p>Welcome {{.Username}}!</p>
<p>Available actions:</p>
<ol>
    <li><a href="/admin/password">Change password</a></li>
    <li>
        <form name="logoutForm" action="/admin/logout" method="post">
            <input type="submit" value="Logout">
        </form>
    </li>
</ol>
</body>
</html>
{{end}}

{{define "password"}}{{template "head" "Change Password"}}
{{template "flash" .Flash}}
<form action="/admin/password" method="post">
    <label>Current password
        <input type="password" placeholder="Enter current password" name="current_password">
    </label>
    <br>
    <label>New password
        <input type="password" placeholder="Enter new password" name="new_password">
    </label>
    <br>
    <label>Confirm new password
        <input type="password" placeholder="Type the new password again" name="new_password_check">
    </label>
    <br>
    <button type="submit">Change password</button>
</form>
<p><a href="/admin/dashboard">&lt;- Back</a></p>
</body>
</html>
{{end}}
`))

type pageData struct {
	Flash    *flashx.Message
	Username string
}

func renderPage(w http.ResponseWriter, name string, data pageData) error {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	return pages.ExecuteTemplate(w, name, data)
}

// takeFlash consumes the pending flash message, if any.
func takeFlash(f *flashx.Flasher, w http.ResponseWriter, r *http.Request) *flashx.Message {
	if f == nil {
		return nil
	}
	if msg, ok := f.Take(w, r); ok {
		return &msg
	}
	return nil
}
