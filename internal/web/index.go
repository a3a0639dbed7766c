package web

import (
	"html/template"

	"github.com/purserdev/purser/internal/domain"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"centsToMajor": domain.FormatCents,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Purser</title>
<style>
  body { font-family: -apple-system, sans-serif; margin: 2rem; background: #fafafa; }
  table { border-collapse: collapse; width: 100%; background: #fff; }
  th, td { padding: .5rem .75rem; border-bottom: 1px solid #e5e5e5; text-align: left; }
  th { background: #f0f0f0; }
  .spark { font-size: .8rem; color: #888; }
  form { margin-bottom: 1.5rem; }
  input[type=url] { width: 24rem; }
</style>
</head>
<body>
<h1>Purser</h1>
<form method="post" action="/items">
  <input type="url" name="url" placeholder="https://www.ebay.com/itm/..." required>
  <input type="number" name="target_cents" placeholder="target (cents)" min="0">
  <button type="submit">Track</button>
</form>
<form method="post" action="/check/now">
  <button type="submit">Check now</button>
</form>
<table>
<tr><th>Item</th><th>Site</th><th>Current</th><th>Target</th><th>Change</th><th>Trend</th></tr>
{{range .Rows}}<tr>
  <td><a href="{{.URL}}">{{.Title}}</a></td>
  <td>{{.SiteName}}</td>
  <td>{{centsToMajor .CurrentCents}}{{if .CurrentCents}} {{.Currency}}{{end}}</td>
  <td>{{centsToMajor .TargetCents}}</td>
  <td>{{.DeltaPctDisplay}}</td>
  <td class="spark">{{range .Sparkline.Values}}{{.}} {{end}}</td>
</tr>{{end}}
</table>
</body>
</html>`
