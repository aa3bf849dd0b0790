package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/nyashahama/wellness-notifier/internal/email"
	"github.com/nyashahama/wellness-notifier/internal/scoring"
	"github.com/nyashahama/wellness-notifier/internal/survey"
)

// ─── SUBJECTS ─────────────────────────────────────────────────────────────────

const (
	subjectOriginal     = "Your Pinnacle Wellness Assessment Results"
	subjectClient       = "Your Wellness Assessment Results from Your Practitioner"
	subjectPractitioner = "Client Wellness Assessment Results"
)

// submittedDateLayout renders the practitioner's "submitted on" line.
const submittedDateLayout = "January 2, 2006"

// RenderOptions holds the static values the templates need.
type RenderOptions struct {
	BookingURL string
}

// ─── VIEWS ────────────────────────────────────────────────────────────────────
// Each variant gets a view holding only the data it renders.

type domainRow struct {
	Name        string
	Score       string
	Band        scoring.Band
	Color       string
	Description string
}

type summary struct {
	TotalScore string
	Overall    scoring.Interpretation
	Domains    []domainRow
}

// OriginalView is the single-respondent email.
type OriginalView struct {
	summary
	BookingURL string
}

// ClientView is the email to the client of a practitioner-administered survey.
type ClientView struct {
	summary
}

// PractitionerView is the email to the practitioner.
type PractitionerView struct {
	summary
	ClientEmail string // empty when the record carries none
	SubmittedOn string
}

func buildSummary(rec survey.Record) summary {
	results := scoring.DomainResults(rec.DomainScores)
	rows := make([]domainRow, len(results))
	for i, r := range results {
		rows[i] = domainRow{
			Name:        r.Name,
			Score:       scoring.FormatScore(r.Score),
			Band:        r.Interpretation.Band,
			Color:       r.Interpretation.Color,
			Description: r.Description,
		}
	}
	return summary{
		TotalScore: scoring.FormatScore(rec.TotalScore),
		Overall:    scoring.OverallInterpretation(rec.TotalScore),
		Domains:    rows,
	}
}

func submittedOn(rec survey.Record) string {
	ts, ok := rec.SubmittedAt()
	if !ok {
		return "Not recorded"
	}
	return ts.Format(submittedDateLayout)
}

// ─── RENDER ───────────────────────────────────────────────────────────────────

// Render builds the email for one task.
func Render(task Task, rec survey.Record, opts RenderOptions) (email.Message, error) {
	sum := buildSummary(rec)

	var (
		subject string
		html    string
		err     error
	)

	switch task.Role {
	case RoleOriginal:
		subject = subjectOriginal
		html, err = renderOriginal(OriginalView{summary: sum, BookingURL: opts.BookingURL})

	case RoleClient:
		subject = subjectClient
		html, err = renderClient(ClientView{summary: sum})

	case RolePractitioner:
		view := PractitionerView{summary: sum, SubmittedOn: submittedOn(rec)}
		subject = subjectPractitioner
		if rec.ClientEmail.Truthy() {
			view.ClientEmail = rec.ClientEmail.Value()
			subject = fmt.Sprintf("%s - %s", subjectPractitioner, view.ClientEmail)
		}
		html, err = renderPractitioner(view)

	default:
		return email.Message{}, fmt.Errorf("notify: unknown role %q", task.Role)
	}

	if err != nil {
		return email.Message{}, fmt.Errorf("notify: render %s: %w", task.Role, err)
	}

	return email.Message{To: task.Address, Subject: subject, HTML: html}, nil
}

func renderOriginal(v OriginalView) (string, error) { return execute("original", v) }

func renderClient(v ClientView) (string, error) { return execute("client", v) }

func renderPractitioner(v PractitionerView) (string, error) { return execute("practitioner", v) }

func execute(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

var templates = template.Must(template.New("email").Funcs(template.FuncMap{
	"year": func() int { return time.Now().Year() },
}).Parse(layoutHTML + originalHTML + clientHTML + practitionerHTML))

// ─── HTML ─────────────────────────────────────────────────────────────────────

const layoutHTML = `
{{define "head"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"></head>
<body style="font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; background: #f5f7f6; margin: 0; padding: 0;">
<div style="max-width: 600px; margin: 0 auto; background: #ffffff; padding: 32px 28px;">
  <div style="text-align: center; border-bottom: 2px solid #2e7d32; padding-bottom: 16px; margin-bottom: 24px;">
    <h1 style="margin: 0; font-size: 24px; color: #1b4332;">Pinnacle Wellness</h1>
    <p style="margin: 4px 0 0; color: #6b7280; font-size: 14px;">Wellness Assessment Results</p>
  </div>
{{end}}

{{define "overall"}}
  <div style="text-align: center; margin: 24px 0; padding: 20px; border-radius: 8px; background: #f9fafb;">
    <p style="margin: 0; font-size: 14px; color: #6b7280; text-transform: uppercase; letter-spacing: 1px;">Overall Wellness Score</p>
    <p style="margin: 8px 0; font-size: 40px; font-weight: 700; color: {{.Overall.Color}};">{{.TotalScore}}</p>
    <p style="margin: 0; font-size: 18px; font-weight: 600; color: {{.Overall.Color}};">{{.Overall.Band}}</p>
  </div>
{{end}}

{{define "domains"}}
  {{- if .Domains}}
  <h3 style="margin: 28px 0 12px; font-size: 18px;">Your Wellness Domains</h3>
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="border-collapse: collapse;">
    {{- range .Domains}}
    <tr>
      <td style="padding: 12px 0; border-bottom: 1px solid #e5e7eb;">
        <p style="margin: 0; font-weight: 600;">{{.Name}}</p>
        {{- if .Description}}
        <p style="margin: 4px 0 0; font-size: 13px; color: #6b7280;">{{.Description}}</p>
        {{- end}}
      </td>
      <td style="padding: 12px 0; border-bottom: 1px solid #e5e7eb; text-align: right; white-space: nowrap; font-weight: 600; color: {{.Color}};">{{.Score}} - {{.Band}}</td>
    </tr>
    {{- end}}
  </table>
  {{- end}}
{{end}}

{{define "legend"}}
  <p style="margin: 24px 0 0; font-size: 12px; color: #6b7280;">
    <span style="color: #2e7d32;">&#9679; Thriving</span> &nbsp;
    <span style="color: #1565c0;">&#9679; Balanced</span> &nbsp;
    <span style="color: #ef6c00;">&#9679; Needs Attention</span> &nbsp;
    <span style="color: #c62828;">&#9679; Critical</span>
  </p>
{{end}}

{{define "foot"}}
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 32px 0 16px;">
  <p style="color: #9ca3af; font-size: 12px; text-align: center;">
    &copy; {{year}} Pinnacle Wellness &middot; Questions? Reply to this email and our team will help.
  </p>
</div>
</body>
</html>{{end}}
`

const originalHTML = `
{{define "original"}}{{template "head" .}}
  <p>Hello,</p>
  <p>Thank you for completing the Pinnacle Wellness Assessment. Below is a summary of your results
  across each area of wellness, along with what your scores mean.</p>
{{template "overall" .}}
{{template "domains" .}}
{{template "legend" .}}
  <div style="margin: 32px 0 0; padding: 24px; border-radius: 8px; background: #1b4332; color: #ffffff; text-align: center;">
    <h3 style="margin: 0 0 8px; font-size: 20px; color: #ffffff;">Ready to reach your peak?</h3>
    <p style="margin: 0 0 20px; font-size: 15px; color: #d1fae5;">
      Book a complimentary consultation with a Pinnacle Wellness coach and turn these results
      into a personalised plan.
    </p>
    <a href="{{.BookingURL}}"
       style="display: inline-block; background: #ffffff; color: #1b4332; padding: 12px 28px;
              border-radius: 6px; text-decoration: none; font-weight: 700;">
      Book Your Free Consultation
    </a>
  </div>
{{template "foot" .}}{{end}}
`

const clientHTML = `
{{define "client"}}{{template "head" .}}
  <p>Hello,</p>
  <p>Your practitioner has shared the results of the Pinnacle Wellness Assessment you completed
  together. Use this summary as a starting point for your next conversation.</p>
{{template "overall" .}}
{{template "domains" .}}
{{template "legend" .}}
  <p style="margin: 24px 0 0;">Your practitioner has received a copy of these results and will be in
  touch to discuss next steps.</p>
{{template "foot" .}}{{end}}
`

const practitionerHTML = `
{{define "practitioner"}}{{template "head" .}}
  <p>Hello,</p>
  <p>A client assessment you administered has been submitted. The results are summarised below.</p>
  <table role="presentation" cellpadding="0" cellspacing="0" style="margin: 16px 0; font-size: 14px;">
    {{- if .ClientEmail}}
    <tr><td style="padding: 2px 16px 2px 0; color: #6b7280;">Client</td><td>{{.ClientEmail}}</td></tr>
    {{- end}}
    <tr><td style="padding: 2px 16px 2px 0; color: #6b7280;">Submitted</td><td>{{.SubmittedOn}}</td></tr>
  </table>
{{template "overall" .}}
{{template "domains" .}}
{{template "legend" .}}
{{template "foot" .}}{{end}}
`
