package cli

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	portalAuth "github.com/MrEthical07/portalAuth"
	"github.com/MrEthical07/portalAuth/gate"
)

const pageHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
{{if .Form}}
<form method="post">
  {{if eq .Form "signup"}}<label>Full name <input name="full_name"></label>{{end}}
  <label>Email <input name="email" type="email" required></label>
  <label>Password <input name="password" type="password" required></label>
  <button type="submit">{{if eq .Form "signup"}}Create account{{else}}Sign in{{end}}</button>
</form>
{{if eq .Form "login"}}<a href="/auth/signup">Create an account</a>{{else}}<a href="/auth/login">Sign in instead</a>{{end}}
{{else}}
{{with .User}}<p>{{.Email}} ({{.Role}})</p>
<form method="post" action="/auth/logout"><button type="submit">Log out</button></form>{{end}}
{{range $k, $v := .Params}}<p>{{$k}}: {{$v}}</p>{{end}}
{{end}}
</body>
</html>
`

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

type pageData struct {
	Title  string
	Form   string
	Error  string
	User   *portalAuth.User
	Params gate.Params
}

// views renders placeholder pages for every gated route and handles the auth
// forms.
type views struct {
	store  *portalAuth.SessionStore
	logger zerolog.Logger
}

func (v *views) handlers() gate.Views {
	return gate.Views{
		gate.LoginPath:  http.HandlerFunc(v.login),
		gate.SignupPath: http.HandlerFunc(v.signup),
		"*":             http.HandlerFunc(v.page),
	}
}

func (v *views) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		v.logger.Error().Err(err).Msg("render page")
	}
}

func (v *views) page(w http.ResponseWriter, r *http.Request) {
	d, _ := gate.DecisionFromContext(r.Context())
	v.render(w, http.StatusOK, pageData{
		Title:  d.Route.Title,
		User:   v.store.Snapshot().User,
		Params: d.Params,
	})
}

func (v *views) login(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Sign In", Form: "login"}
	if r.Method != http.MethodPost {
		v.render(w, http.StatusOK, data)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	res := v.store.Login(r.Context(), portalAuth.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
	if !res.OK() {
		data.Error = res.Message()
		v.render(w, http.StatusUnauthorized, data)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (v *views) signup(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Create Account", Form: "signup"}
	if r.Method != http.MethodPost {
		v.render(w, http.StatusOK, data)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	res := v.store.Register(r.Context(), portalAuth.Registration{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		FullName: r.PostFormValue("full_name"),
	})
	if !res.OK() {
		data.Error = res.Message()
		v.render(w, http.StatusBadRequest, data)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (v *views) logout(w http.ResponseWriter, r *http.Request) {
	if res := v.store.Logout(r.Context()); !res.OK() {
		v.logger.Warn().Str("reason", res.Message()).Msg("logout failed")
	}
	http.Redirect(w, r, gate.LoginPath, http.StatusSeeOther)
}
