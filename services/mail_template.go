package services

import (
	"bytes"
	"html/template"
	"log/slog"
	"strings"
)

type mailMetaItem struct {
	Label string
	Value string
}

type mailContent struct {
	Subject    string
	Paragraphs []string
	Meta       []mailMetaItem
}

var mailTemplate = template.Must(template.New("mail").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
<div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px;">
<h1 style="margin:0 0 20px 0;font-size:22px;font-weight:700;color:#111827;">{{.Subject}}</h1>
{{range .Paragraphs}}<p style="margin:0 0 18px 0;line-height:1.7;color:#1f2937;">{{.}}</p>
{{end}}{{if .Meta}}<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="border:1px solid #e5e7eb;border-radius:12px;background-color:#f9fafb;">
<tbody>
{{range .Meta}}<tr>
<td style="padding:12px 16px;font-size:13px;color:#6b7280;width:38%;">{{.Label}}</td>
<td style="padding:12px 16px;font-size:15px;color:#111827;font-weight:600;white-space:pre-wrap;">{{.Value}}</td>
</tr>
{{end}}</tbody>
</table>
{{end}}</div>
</div>
</body>
</html>
`))

// renderMail lays out an HTML mail. Empty paragraphs and meta rows with a
// blank label or value are skipped.
func renderMail(content mailContent) string {
	paragraphs := make([]string, 0, len(content.Paragraphs))
	for _, p := range content.Paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	meta := make([]mailMetaItem, 0, len(content.Meta))
	for _, m := range content.Meta {
		m.Label, m.Value = strings.TrimSpace(m.Label), strings.TrimSpace(m.Value)
		if m.Label != "" && m.Value != "" {
			meta = append(meta, m)
		}
	}
	content.Paragraphs, content.Meta = paragraphs, meta

	var buf bytes.Buffer
	if err := mailTemplate.Execute(&buf, content); err != nil {
		slog.Error("failed to render mail", "subject", content.Subject, "error", err)
		return ""
	}
	return buf.String()
}
