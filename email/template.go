package email

import (
	"bytes"
	"html/template"
	stdtemplate "text/template"

	"github.com/campusgate/campusgate"
)

type renderedMail struct {
	subject string
	text    string
	html    string
}

const (
	verificationSubject = "Your verification code"

	verificationText = `Welcome!

Your verification code is {{.Code}}.

The code expires in 15 minutes. If you did not request it, you can ignore this email.
`

	verificationHTML = `<html>
  <body>
    <p>Welcome!</p>
    <p>Your verification code is <strong>{{.Code}}</strong>.</p>
    <p>The code expires in 15 minutes. If you did not request it, you can ignore this email.</p>
  </body>
</html>
`

	reportSubject = "Content report"

	reportText = `A content report was submitted.

Content type: {{.ContentType}}
Content ID: {{.ContentID}}
Reporter: {{.ReporterID}}

Details:
{{.ReportDetails}}
`

	reportHTML = `<html>
  <body>
    <p>A content report was submitted.</p>
    <ul>
      <li>Content type: {{.ContentType}}</li>
      <li>Content ID: {{.ContentID}}</li>
      <li>Reporter: {{.ReporterID}}</li>
    </ul>
    <p>{{.ReportDetails}}</p>
  </body>
</html>
`
)

var (
	verificationTextTmpl = stdtemplate.Must(stdtemplate.New("verification_text").Parse(verificationText))
	verificationHTMLTmpl = template.Must(template.New("verification_html").Parse(verificationHTML))
	reportTextTmpl       = stdtemplate.Must(stdtemplate.New("report_text").Parse(reportText))
	reportHTMLTmpl       = template.Must(template.New("report_html").Parse(reportHTML))
)

func renderVerification(code string) (renderedMail, error) {
	data := struct{ Code string }{Code: code}

	var text, html bytes.Buffer
	if err := verificationTextTmpl.Execute(&text, data); err != nil {
		return renderedMail{}, err
	}
	if err := verificationHTMLTmpl.Execute(&html, data); err != nil {
		return renderedMail{}, err
	}

	return renderedMail{
		subject: verificationSubject,
		text:    text.String(),
		html:    html.String(),
	}, nil
}

func renderReport(report campusgate.ContentReport) (renderedMail, error) {
	var text, html bytes.Buffer
	if err := reportTextTmpl.Execute(&text, report); err != nil {
		return renderedMail{}, err
	}
	if err := reportHTMLTmpl.Execute(&html, report); err != nil {
		return renderedMail{}, err
	}

	return renderedMail{
		subject: reportSubject,
		text:    text.String(),
		html:    html.String(),
	}, nil
}
