package output

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/torosent/glt/internal/metrics"
	"github.com/torosent/glt/internal/runner"
	"github.com/torosent/glt/internal/threshold"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt      string
	Metadata         ReportMetadata
	Scenarios        []HTMLScenario
	ThresholdSummary *ThresholdSummary
}

// ReportMetadata contains configuration information about the suite run.
type ReportMetadata struct {
	TargetURL   string
	RunID       string
	Concurrency int
	Number      int
}

// HTMLScenario is one row of the suite report. Bars holds the per second
// throughput split by call kind, scaled against the busiest scenario.
type HTMLScenario struct {
	Title          string
	Slug           string
	Concurrency    int
	Number         int
	Record         runner.Record
	RequestsPerSec string
	Bars           []BarSegment
	Latency        []metrics.OperationSummary
	Errors         []string
}

// BarSegment is one stacked part of a throughput bar.
type BarSegment struct {
	Class   string
	Label   string
	PerSec  float64
	Percent float64
}

// GenerateHTMLReport generates a standalone HTML report comparing the
// throughput of every scenario in runs.
func GenerateHTMLReport(w io.Writer, runs []runner.Result, thresholdResults []threshold.Result, metadata ReportMetadata) error {
	var thresholdSummary *ThresholdSummary
	if len(thresholdResults) > 0 {
		summary := NewThresholdSummary(thresholdResults)
		thresholdSummary = &summary
	}

	data := HTMLReportData{
		GeneratedAt:      time.Now().Format(time.RFC3339),
		Metadata:         metadata,
		Scenarios:        htmlScenarios(runs),
		ThresholdSummary: thresholdSummary,
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatDuration": func(d time.Duration) string {
			return d.String()
		},
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

func htmlScenarios(runs []runner.Result) []HTMLScenario {
	rows := make([]HTMLScenario, 0, len(runs))
	var widest float64
	for _, run := range runs {
		row := HTMLScenario{
			Title:          run.Scenario.Title(),
			Slug:           run.Scenario.Slug(),
			Concurrency:    run.Concurrency,
			Number:         run.Number,
			Record:         run.Record(),
			RequestsPerSec: FormatRate(run, run.Totals.Loaded),
			Latency:        run.Latency.Operations,
			Bars:           throughputBars(run),
		}
		for _, err := range run.Errors {
			row.Errors = append(row.Errors, err.Error())
		}
		var total float64
		for _, seg := range row.Bars {
			total += seg.PerSec
		}
		if total > widest {
			widest = total
		}
		rows = append(rows, row)
	}
	if widest > 0 {
		for i := range rows {
			for j := range rows[i].Bars {
				rows[i].Bars[j].Percent = rows[i].Bars[j].PerSec / widest * 100
			}
		}
	}
	return rows
}

// throughputBars splits requests into reads, updates and writes, then adds
// retries. Reads are whatever requests were neither writes nor updates.
func throughputBars(run runner.Result) []BarSegment {
	totals := run.Totals
	reads := totals.Loaded - totals.Updated - totals.Created
	if reads < 0 {
		reads = 0
	}
	segments := []BarSegment{
		{Class: "reads", Label: "Reads/sec"},
		{Class: "updates", Label: "Updates/sec"},
		{Class: "writes", Label: "Writes/sec"},
		{Class: "retries", Label: "Retries/sec"},
	}
	for i, n := range []int{reads, totals.Updated, totals.Created, totals.Retries} {
		perSec, ok := run.Rate(n)
		if ok {
			segments[i].PerSec = perSec
		}
	}
	return segments
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Content Load Test Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1400px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: #f8f9fa;
            border-radius: 8px;
            padding: 20px;
            border-left: 4px solid #667eea;
        }
        .card h3 {
            font-size: 0.9rem;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 10px;
        }
        .card .value {
            font-size: 2rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .card .subvalue {
            font-size: 0.85rem;
            color: #6c757d;
            margin-top: 5px;
        }
        .card.success {
            border-left-color: #10b981;
        }
        .card.error {
            border-left-color: #ef4444;
        }
        .card.warning {
            border-left-color: #f59e0b;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            padding-bottom: 10px;
            border-bottom: 2px solid #e5e7eb;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
        }
        th, td {
            text-align: left;
            padding: 12px;
            border-bottom: 1px solid #e5e7eb;
        }
        th {
            background: #f8f9fa;
            font-weight: 600;
            color: #4b5563;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        tr:hover {
            background: #f8f9fa;
        }
        .badge {
            display: inline-block;
            padding: 4px 12px;
            border-radius: 12px;
            font-size: 0.85rem;
            font-weight: 600;
        }
        .badge-success {
            background: #d1fae5;
            color: #065f46;
        }
        .badge-error {
            background: #fee2e2;
            color: #991b1b;
        }
        .no-data {
            text-align: center;
            padding: 40px;
            color: #6c757d;
            font-style: italic;
        }
        .bar {
            display: flex;
            height: 22px;
            min-width: 2px;
            border-radius: 4px;
            overflow: hidden;
            background: #f3f4f6;
        }
        .bar span {
            display: block;
            height: 100%;
        }
        .bar .reads { background: #667eea; }
        .bar .updates { background: #10b981; }
        .bar .writes { background: #f59e0b; }
        .bar .retries { background: #ef4444; }
        .legend span {
            display: inline-block;
            margin-right: 16px;
            font-size: 0.85rem;
            color: #4b5563;
        }
        .legend i {
            display: inline-block;
            width: 10px;
            height: 10px;
            margin-right: 6px;
            border-radius: 2px;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Content Load Test Report</h1>
            {{if .Metadata.TargetURL}}
            <div class="meta" style="margin-top: 5px;">Target: <a href="{{.Metadata.TargetURL}}" style="color: white; text-decoration: underline;">{{.Metadata.TargetURL}}</a></div>
            {{end}}
            <div class="meta">Generated: {{.GeneratedAt}}{{if .Metadata.RunID}} | Run: {{.Metadata.RunID}}{{end}} | Workers: {{.Metadata.Concurrency}} | Number: {{.Metadata.Number}}</div>
        </header>

        <div class="content">
            {{if .Scenarios}}
            <div class="grid">
                {{range .Scenarios}}
                <div class="card{{if .Errors}} error{{else}} success{{end}}">
                    <h3>{{.Title}}</h3>
                    <div class="value">{{.RequestsPerSec}}</div>
                    <div class="subvalue">requests/sec over {{formatFloat .Record.Duration}}s</div>
                </div>
                {{end}}
            </div>

            <div class="section">
                <h2>Throughput</h2>
                <div class="legend">
                    <span><i class="reads" style="background: #667eea;"></i>Reads/sec</span>
                    <span><i class="updates" style="background: #10b981;"></i>Updates/sec</span>
                    <span><i class="writes" style="background: #f59e0b;"></i>Writes/sec</span>
                    <span><i class="retries" style="background: #ef4444;"></i>Retries/sec</span>
                </div>
                <table>
                    <tbody>
                        {{range .Scenarios}}
                        <tr>
                            <td style="width: 20%;"><strong>{{.Title}}</strong></td>
                            <td>
                                <div class="bar">
                                    {{range .Bars}}<span class="{{.Class}}" style="width: {{.Percent}}%;" title="{{.Label}}: {{formatFloat .PerSec}}"></span>{{end}}
                                </div>
                            </td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>

            <div class="section">
                <h2>Scenario Results</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Scenario</th>
                            <th>Workers</th>
                            <th>Requests</th>
                            <th>Writes</th>
                            <th>Updates</th>
                            <th>Retries</th>
                            <th>Seconds</th>
                            <th>Requests/sec</th>
                            <th>Status</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Scenarios}}
                        <tr>
                            <td><strong>{{.Title}}</strong></td>
                            <td>{{.Concurrency}} x {{.Number}}</td>
                            <td>{{.Record.Requests}}</td>
                            <td>{{.Record.Writes}}</td>
                            <td>{{.Record.Updates}}</td>
                            <td>{{.Record.Retries}}</td>
                            <td>{{formatFloat .Record.Duration}}</td>
                            <td>{{.RequestsPerSec}}</td>
                            <td>
                                {{if .Errors}}
                                <span class="badge badge-error">{{len .Errors}} failed</span>
                                {{else}}
                                <span class="badge badge-success">OK</span>
                                {{end}}
                            </td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>

            <div class="section">
                <h2>Latency</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Scenario</th>
                            <th>Operation</th>
                            <th>Calls</th>
                            <th>Failures</th>
                            <th>Mean</th>
                            <th>Max</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range $s := .Scenarios}}
                        {{range $s.Latency}}
                        <tr>
                            <td>{{$s.Title}}</td>
                            <td>{{.Operation}}</td>
                            <td>{{.Count}}</td>
                            <td>{{.Failures}}</td>
                            <td>{{formatDuration .MeanLatency}}</td>
                            <td>{{formatDuration .MaxLatency}}</td>
                        </tr>
                        {{end}}
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{else}}
            <div class="no-data">No scenario completed.</div>
            {{end}}

            {{if .ThresholdSummary}}
            <div class="section">
                <h2>Thresholds ({{.ThresholdSummary.Passed}}/{{.ThresholdSummary.Total}} Passed)</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Threshold</th>
                            <th>Scenario</th>
                            <th>Metric</th>
                            <th>Expected</th>
                            <th>Actual</th>
                            <th>Status</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .ThresholdSummary.Results}}
                        <tr>
                            <td>{{.Threshold}}</td>
                            <td>{{if .Scenario}}{{.Scenario}}{{else}}-{{end}}</td>
                            <td>{{.Metric}} ({{.Aggregate}})</td>
                            <td>{{.Operator}} {{formatFloat .Expected}}</td>
                            <td>{{formatFloat .Actual}}</td>
                            <td>
                                {{if .Pass}}
                                <span class="badge badge-success">✓ PASS</span>
                                {{else}}
                                <span class="badge badge-error">✗ FAIL</span>
                                {{end}}
                            </td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}

            {{range .Scenarios}}{{if .Errors}}
            <div class="section">
                <h2>{{.Title}} Failures</h2>
                <table>
                    <tbody>
                        {{range .Errors}}
                        <tr><td>{{.}}</td></tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}{{end}}
        </div>
    </div>
</body>
</html>
`
