package notify

import (
	"bytes"
	htmltemplate "html/template"
	"strconv"
	"strings"
	texttemplate "text/template"
)

const Subject = "New networking matches found for you!"

type emailCard struct {
	Name        string
	Program     string
	Reason      string
	LinkedInURL string
	Message     string
}

type emailView struct {
	Greeting string
	Intro    string
	Cards    []emailCard
}

func newEmailView(greeting string, entries []Entry, drafts []string) emailView {
	v := emailView{Greeting: greeting}
	if len(entries) == 1 {
		v.Intro = "We just found someone who you might be interested in talking to:"
	} else {
		v.Intro = "We just found " + strconv.Itoa(len(entries)) + " people who you might be interested in talking to:"
	}
	for i, e := range entries {
		v.Cards = append(v.Cards, emailCard{
			Name:        e.FullName(),
			Program:     e.ProgramLine(),
			Reason:      strings.TrimSpace(e.Reason),
			LinkedInURL: e.LinkedInURL,
			Message:     drafts[i],
		})
	}
	return v
}

var htmlTmpl = htmltemplate.Must(htmltemplate.New("match_email_html").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
  </head>
  <body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; line-height: 1.6; color: #fafafa; background: #0d0d0d; max-width: 600px; margin: 0 auto; padding: 32px 20px;">
    <div style="background: #1a1a1a; border-radius: 16px; padding: 32px; border: 1px solid #333333;">
      <h1 style="color: #c1e649; margin: 0 0 24px 0; font-size: 28px;">LBS Connect</h1>
      <h2 style="color: #fafafa; margin: 0 0 16px 0; font-size: 24px;">Hi {{.Greeting}},</h2>
      <p style="color: #cccccc; margin-bottom: 28px;">{{.Intro}}</p>
      {{range .Cards}}
      <div style="margin-bottom: 24px; padding: 24px; background: #1a1a1a; border-radius: 16px; border: 1px solid #333333;">
        <h3 style="margin: 0 0 12px 0; color: #fafafa;">{{.Name}}, {{.Program}}</h3>
        {{if .Reason}}<p style="margin: 0 0 16px 0; color: #999999; font-style: italic;">{{.Reason}}</p>{{end}}
        {{if .LinkedInURL}}<p style="margin: 0 0 20px 0;"><a href="{{.LinkedInURL}}" style="color: #c1e649; text-decoration: none; font-weight: 600;" target="_blank">View LinkedIn Profile &rarr;</a></p>{{end}}
        <div style="background: #0d0d0d; padding: 16px; border-radius: 12px; border-left: 3px solid #c1e649;">
          <p style="margin: 0 0 10px 0; font-weight: 600; color: #c1e649; font-size: 14px;">Suggested message:</p>
          <p style="margin: 0; color: #cccccc; white-space: pre-line;">{{.Message}}</p>
        </div>
      </div>
      {{end}}
      <div style="margin-top: 32px; padding-top: 24px; border-top: 1px solid #333333;">
        <p style="color: #999999; margin: 0;">Best,<br><strong style="color: #fafafa;">The LBS Connect Team</strong></p>
      </div>
    </div>
  </body>
</html>
`))

var textTmpl = texttemplate.Must(texttemplate.New("match_email_text").Parse(`Hi {{.Greeting}},

{{.Intro}}
{{range $i, $c := .Cards}}{{if $i}}
---
{{end}}
{{$c.Name}}, {{$c.Program}}
{{if $c.Reason}}{{$c.Reason}}
{{end}}LinkedIn: {{if $c.LinkedInURL}}{{$c.LinkedInURL}}{{else}}N/A{{end}}

Suggested message:
{{$c.Message}}
{{end}}
Best,
The LBS Connect Team
`))

func renderEmail(v emailView) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := htmlTmpl.Execute(&hb, v); err != nil {
		return "", "", err
	}
	if err := textTmpl.Execute(&tb, v); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
