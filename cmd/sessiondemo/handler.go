package main

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sesskit/session"
)

var templ = template.Must(template.New("").Parse(page))

// demoHandler handles everything: page/form rendering, processing login form submits, logout submits.
// A successful login stores the user name in the session, logout destroys the session.
func demoHandler(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		m := map[string]interface{}{}

		if userName, _ := sess.Get("UserName").(string); userName != "" {
			// Already logged in
			if r.FormValue("Logout") != "" {
				sess.Destroy() // Logout user
			} else {
				count, _ := sess.Get("Count").(int)
				if err := sess.Set("Count", count+1); err != nil {
					logger.Error("Failed to update count", "error", err)
				}
			}
		} else if r.FormValue("Login") != "" {
			// Not logged in
			userName := r.FormValue("UserName")
			if userName != "" && r.FormValue("Password") == "a" {
				if err := sess.Set("UserName", userName); err != nil {
					// E.g. the user name "0" counts as empty
					logger.Warn("Failed to log in", "error", err)
					m["InvalidLogin"] = true
				} else if err := sess.Set("Count", 1); err != nil {
					logger.Error("Failed to init count", "error", err)
				}
			} else {
				m["InvalidLogin"] = true
			}
		}

		if sess.IsRegistered() {
			m["UserName"] = sess.Get("UserName")
			m["Count"] = sess.Get("Count")
		}

		if err := templ.Execute(w, m); err != nil {
			logger.Error("Failed to render page", "error", err)
		}
	})
}

const page = `<html><body>
{{if .InvalidLogin}}<p style="color:red">Invalid user name or password!</p>{{end}}

{{if .UserName}}
	<p>Hello <b>{{.UserName}}</b>! Since login you visited <b>{{.Count}}</b> times! <a href="/demo">Refresh!</a></p>
{{end}}

<form method="post" action="/demo">
	{{if .UserName}}
		<input type="submit" name="Logout" value="Logout">
	{{else}}
		<label for="UserNameId" style="width:100px; display: inline-block">User name:</label>
		<input type="text" name="UserName" id="UserNameId"><br>
		<label for="PasswordId" style="width:100px; display: inline-block">Password:</label>
		<input type="password" name="Password" id="PasswordId">
		<span style="font-style:italic; font-size: 90%">Tip: use 'a' to login ;)</span><br>
		<input type="submit" name="Login" value="Login">
	{{end}}
</form>
</body></html>`
