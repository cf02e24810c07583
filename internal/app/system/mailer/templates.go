// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
)

// PlacementEmailData holds data for the placement congratulation email.
type PlacementEmailData struct {
	SiteName      string
	StudentName   string
	JobTitle      string
	Company       string
	Location      string
	JobType       string
	PackageAmount float64 // lakhs per annum
}

// Package formats the package amount as shown to students, e.g. "6 LPA".
func (d PlacementEmailData) Package() string {
	return strconv.FormatFloat(d.PackageAmount, 'f', -1, 64) + " LPA"
}

// BuildPlacementEmail creates a placement email with both HTML and text bodies.
func BuildPlacementEmail(data PlacementEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Congratulations! You have been placed at %s", data.Company),
		TextBody: buildPlacementText(data),
		HTMLBody: buildPlacementHTML(data),
	}
}

func buildPlacementText(data PlacementEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Dear %s,\n\n", data.StudentName)
	fmt.Fprintf(&buf, "Congratulations! You have been selected for %s at %s.\n\n", data.JobTitle, data.Company)
	buf.WriteString("Placement details:\n")
	fmt.Fprintf(&buf, "  Company:  %s\n", data.Company)
	fmt.Fprintf(&buf, "  Role:     %s\n", data.JobTitle)
	if data.Location != "" {
		fmt.Fprintf(&buf, "  Location: %s\n", data.Location)
	}
	if data.JobType != "" {
		fmt.Fprintf(&buf, "  Type:     %s\n", data.JobType)
	}
	fmt.Fprintf(&buf, "  Package:  %s\n\n", data.Package())
	buf.WriteString("Next steps: the company will contact you with offer details. Keep an eye on your inbox and reach out to your placement cell with any questions.\n\n")
	fmt.Fprintf(&buf, "The %s team\n", data.SiteName)
	return buf.String()
}

var placementTmpl = template.Must(template.New("placement").Parse(placementHTMLTemplate))

func buildPlacementHTML(data PlacementEmailData) string {
	var buf bytes.Buffer
	_ = placementTmpl.Execute(&buf, data)
	return buf.String()
}

const placementHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Placement Confirmation</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 520px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 22px; font-weight: 600; color: #047857;">Congratulations, {{.StudentName}}!</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 20px; font-size: 16px; color: #374151; line-height: 1.5;">
                You have been selected for <strong>{{.JobTitle}}</strong> at <strong>{{.Company}}</strong>.
              </p>
              <table role="presentation" cellspacing="0" cellpadding="6" style="font-size: 14px; color: #374151;">
                <tr><td><strong>Company</strong></td><td>{{.Company}}</td></tr>
                <tr><td><strong>Role</strong></td><td>{{.JobTitle}}</td></tr>
                {{if .Location}}<tr><td><strong>Location</strong></td><td>{{.Location}}</td></tr>{{end}}
                {{if .JobType}}<tr><td><strong>Type</strong></td><td>{{.JobType}}</td></tr>{{end}}
                <tr><td><strong>Package</strong></td><td>{{.Package}}</td></tr>
              </table>
              <p style="margin: 24px 0 0; font-size: 14px; color: #6b7280; line-height: 1.5;">
                The company will contact you with offer details. Reach out to your placement cell with any questions.
              </p>
            </td>
          </tr>
          <tr>
            <td style="padding: 16px 32px; text-align: center; border-top: 1px solid #e5e7eb; font-size: 12px; color: #9ca3af;">
              {{.SiteName}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
