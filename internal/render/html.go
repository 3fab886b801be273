package render

import (
	"bytes"
	"fmt"
	"html/template"
)

var htmlFuncs = template.FuncMap{
	"score": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"cell": func(row AreaRow) string {
		if !row.Applicable {
			return "NA"
		}
		return fmt.Sprintf("%.2f / %.2f", row.Obtained, row.Ceiling)
	},
}

var htmlTemplate = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Audit Report: {{.CenterName}} ({{.CenterCode}})</h2>
  <p>
    Center type: <b>{{.CenterType}}</b><br>
    Financial year: <b>{{.FinancialYear}}</b><br>
    Audit date: <b>{{.AuditDate}}</b>
  </p>

  <h3>Summary</h3>
  <table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
    <tr style="background: #eee;">
      <th>Area</th><th>Score</th><th>Status</th>
    </tr>
    {{range .Summary}}
    <tr>
      <td>{{.Name}}</td>
      <td>{{cell .}}</td>
      <td style="color: {{.Color}}; font-weight: bold;">{{.Status}}</td>
    </tr>
    {{end}}
    <tr style="background: #eee;">
      <td><b>Grand Total</b></td>
      <td><b>{{score .GrandTotal}} / 100.00</b></td>
      <td style="color: {{.OverallColor}}; font-weight: bold;">{{.Overall}}</td>
    </tr>
  </table>

  {{range .Details}}{{if .Applicable}}
  <h3>{{.Name}}</h3>
  <table border="1" cellpadding="4" cellspacing="0" style="border-collapse: collapse; font-size: 13px;">
    <tr style="background: #eee;">
      <th>#</th><th>Checkpoint</th><th>Samples</th><th>Compliant</th>
      <th>%</th><th>Score</th><th>Max</th><th>Auditor Remarks</th><th>Center Head Remarks</th>
    </tr>
    {{range .Checkpoints}}
    <tr>
      <td>{{.ID}}</td>
      <td>{{.Name}}</td>
      <td align="right">{{.TotalSamples}}</td>
      <td align="right">{{.SamplesCompliant}}</td>
      <td align="right">{{score .Percent}}</td>
      <td align="right">{{score .Score}}</td>
      <td align="right">{{score .MaxScore}}</td>
      <td>{{.Remarks}}</td>
      <td>{{.CenterHeadRemark}}</td>
    </tr>
    {{end}}
  </table>
  {{end}}{{end}}

  {{if .AuditorRemarks}}<p><b>Auditor remarks:</b> {{.AuditorRemarks}}</p>{{end}}
  {{if .RejectReason}}<p><b>Rejection reason:</b> {{.RejectReason}}</p>{{end}}
</body>
</html>
`))

// HTML renders the report view as the email body.
func HTML(v *View) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
