package notification

import (
	"bytes"
	"html/template"
	"strings"
)

const (
	subjectSuccess = "Your Webinar Access — Registration Confirmed"
	subjectFailure = "There was an issue with your webinar payment"
)

var successEmailTmpl = template.Must(template.New("success").Parse(
	`<p>Hi {{.Name}},</p>` +
		`<p>Thanks for registering. Your payment is confirmed.</p>` +
		`<p>Join the webinar here: <a href="{{.WebinarLink}}">{{.WebinarLink}}</a></p>` +
		`{{if .CommunityLink}}<p>Join our community for updates: <a href="{{.CommunityLink}}">{{.CommunityLink}}</a></p>{{end}}` +
		`<p>— {{.Brand}}</p>`,
))

var failureEmailTmpl = template.Must(template.New("failure").Parse(
	`<p>Hi {{.Name}},</p>` +
		`<p>We noticed you tried to register for the trading webinar, but the payment didn't complete successfully.</p>` +
		`<p>If you'd still like to join, you can try registering again at any time right here:</p>` +
		`<p><a href="{{.SiteURL}}">{{.SiteURL}}</a></p>` +
		`<p>If you had trouble, please let us know. We're here to help.</p>` +
		`<p>— {{.Brand}}</p>`,
))

type emailData struct {
	Name          string
	WebinarLink   string
	CommunityLink string
	SiteURL       string
	Brand         string
}

func render(t *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func whatsAppText(name, webinarLink, communityLink string) string {
	var b strings.Builder
	b.WriteString("Hi ")
	b.WriteString(name)
	b.WriteString("! Your webinar registration is confirmed. Join: ")
	b.WriteString(webinarLink)
	if communityLink != "" {
		b.WriteString("\nCommunity: ")
		b.WriteString(communityLink)
	}
	return b.String()
}
