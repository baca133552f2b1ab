package mailer

import (
	"bytes"
	htmltpl "html/template"
	texttpl "text/template"
)

// WelcomeData feeds the welcome email rendered for user.created events.
type WelcomeData struct {
	Name     string
	Username string
	AppName  string
}

const welcomeSubject = "Welcome aboard"

var welcomeText = texttpl.Must(texttpl.New("welcome_text").Parse(
	`Hi {{if .Name}}{{.Name}}{{else}}{{.Username}}{{end}},

Your {{.AppName}} account "{{.Username}}" has been created.

If this wasn't you, please contact support.
`))

var welcomeHTML = htmltpl.Must(htmltpl.New("welcome_html").Parse(
	`<p>Hi {{if .Name}}{{.Name}}{{else}}{{.Username}}{{end}},</p>
<p>Your {{.AppName}} account <strong>{{.Username}}</strong> has been created.</p>
<p>If this wasn't you, please contact support.</p>
`))

// RenderWelcome renders the welcome email's subject, text and HTML bodies.
func RenderWelcome(data WelcomeData) (subject, text, html string, err error) {
	var tb, hb bytes.Buffer
	if err = welcomeText.Execute(&tb, data); err != nil {
		return "", "", "", err
	}
	if err = welcomeHTML.Execute(&hb, data); err != nil {
		return "", "", "", err
	}
	return welcomeSubject, tb.String(), hb.String(), nil
}
