// Package digest assembles the daily watchlist summary email.
package digest

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"go.uber.org/zap"

	"github.com/purserdev/purser/internal/domain"
)

type rowSource interface {
	BuildWatchlistRows(ctx context.Context) ([]domain.WatchlistRow, error)
}

type notifier interface {
	Send(to, subject, htmlBody string) bool
}

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"centsToMajor": domain.FormatCents,
}).Parse(`<h2>Purser daily digest</h2>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Item</th><th>Current</th><th>Target</th><th>Change</th></tr>
{{range .Rows}}<tr>
<td><a href="{{.URL}}">{{.Title}}</a></td>
<td>{{centsToMajor .CurrentCents}}</td>
<td>{{centsToMajor .TargetCents}}</td>
<td>{{.DeltaPctDisplay}}</td>
</tr>{{end}}
</table>`))

// Digest renders current rows into HTML and hands them to the notifier.
type Digest struct {
	rows      rowSource
	notifier  notifier
	recipient string
	logger    *zap.Logger
}

func New(rows rowSource, n notifier, recipient string, logger *zap.Logger) *Digest {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Digest{rows: rows, notifier: n, recipient: recipient, logger: logger}
}

// SendDaily builds and sends the digest. Failures are logged, never
// propagated; the scheduler calls this blindly once a day.
func (d *Digest) SendDaily(ctx context.Context) {
	if d.recipient == "" {
		d.logger.Debug("no digest recipient configured, skipping")
		return
	}

	rows, err := d.rows.BuildWatchlistRows(ctx)
	if err != nil {
		d.logger.Warn("failed to build digest rows", zap.Error(err))
		return
	}

	var body bytes.Buffer
	if err := digestTmpl.Execute(&body, struct{ Rows []domain.WatchlistRow }{rows}); err != nil {
		d.logger.Warn("failed to render digest", zap.Error(err))
		return
	}

	subject := "Purser digest " + time.Now().Format("2006-01-02")
	if ok := d.notifier.Send(d.recipient, subject, body.String()); !ok {
		d.logger.Warn("digest email was not delivered", zap.String("to", d.recipient))
	}
}
