package report

import "html/template"

// The report layout follows a fixed order: summary banner, pass-rate bar,
// failed-case list, environment card, then one card per case in suite order.
// The summary element carries machine-readable counts so downstream tooling
// can recover them without re-parsing the cards.
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8"/>
<meta name="viewport" content="width=device-width,initial-scale=1"/>
<title>{{.Title}} — Test Report</title>
<style>
  *, *::before, *::after { box-sizing: border-box; margin: 0; padding: 0; }
  body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
         background: #f5f6fa; color: #1a1a2e; font-size: 14px; line-height: 1.6; }
  .container { max-width: 1100px; margin: 0 auto; padding: 24px 16px 60px; }
  .header { background: #1a1a2e; color: #fff; padding: 32px 40px; border-radius: 12px;
            margin-bottom: 28px; }
  .header h1 { font-size: 24px; font-weight: 700; }
  .header .meta { font-size: 12px; opacity: .75; margin-top: 6px; }
  .summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr));
             gap: 14px; margin-bottom: 28px; }
  .stat-card { background: #fff; border-radius: 10px; padding: 20px 24px;
               box-shadow: 0 1px 4px rgba(0,0,0,.07); text-align: center; }
  .stat-card .num { font-size: 36px; font-weight: 700; line-height: 1; }
  .stat-card .label { font-size: 12px; color: #666; margin-top: 6px; text-transform: uppercase; }
  .stat-card.pass .num { color: #16a34a; }
  .stat-card.fail .num { color: #dc2626; }
  .stat-card.skip .num { color: #9ca3af; }
  .pass-bar-wrap { background: #fff; border-radius: 10px; padding: 20px 24px;
                   box-shadow: 0 1px 4px rgba(0,0,0,.07); margin-bottom: 28px; }
  .pass-bar { height: 18px; background: #e5e7eb; border-radius: 99px; overflow: hidden; }
  .pass-bar .fill { height: 100%; background: linear-gradient(90deg, #16a34a, #4ade80); }
  .fail-summary { background: #fff; border-radius: 10px; padding: 20px 24px;
                  box-shadow: 0 1px 4px rgba(0,0,0,.07); margin-bottom: 28px;
                  border-left: 4px solid #dc2626; }
  .fail-summary h2 { font-size: 14px; color: #dc2626; margin-bottom: 10px; }
  .fail-summary li { margin-left: 18px; font-size: 13px; }
  .env-card { background: #fff; border-radius: 10px; padding: 20px 24px;
              box-shadow: 0 1px 4px rgba(0,0,0,.07); margin-bottom: 28px; }
  .env-card h2 { font-size: 14px; color: #374151; margin-bottom: 12px; }
  .env-table { display: grid; grid-template-columns: 140px 1fr; gap: 4px 16px; }
  .env-table .k { color: #9ca3af; font-size: 12px; }
  .env-table .v { font-weight: 500; font-size: 13px; word-break: break-all; }
  .tc-card { background: #fff; border-radius: 10px; margin-bottom: 16px;
             box-shadow: 0 1px 4px rgba(0,0,0,.07); overflow: hidden; }
  .tc-card.passed { border-left: 4px solid #16a34a; }
  .tc-card.failed { border-left: 4px solid #dc2626; }
  .tc-card.skipped { border-left: 4px solid #9ca3af; }
  .tc-header { padding: 16px 20px; display: flex; align-items: center; gap: 14px; cursor: pointer; }
  .tc-status { font-size: 12px; font-weight: 700; padding: 3px 12px; border-radius: 99px; }
  .passed .tc-status { background: #dcfce7; color: #16a34a; }
  .failed .tc-status { background: #fee2e2; color: #dc2626; }
  .skipped .tc-status { background: #f3f4f6; color: #9ca3af; }
  .tc-id { font-size: 11px; color: #9ca3af; font-family: monospace; }
  .tc-name { font-weight: 600; flex: 1; }
  .tc-dur { font-size: 12px; color: #9ca3af; }
  .tc-body { padding: 0 20px 20px; display: none; }
  .tc-card.open .tc-body { display: block; }
  .tc-error { background: #fef2f2; border: 1px solid #fecaca; border-radius: 8px;
              padding: 12px 16px; margin-bottom: 14px; font-family: monospace;
              font-size: 12px; color: #991b1b; white-space: pre-wrap; }
  .steps-table { width: 100%; border-collapse: collapse; font-size: 13px; }
  .steps-table th { text-align: left; padding: 8px 12px; background: #f9fafb;
                    font-size: 11px; text-transform: uppercase; color: #6b7280;
                    border-bottom: 1px solid #e5e7eb; }
  .steps-table td { padding: 9px 12px; border-bottom: 1px solid #f3f4f6; vertical-align: top; }
  .step-pass { color: #16a34a; font-weight: 700; }
  .step-fail { color: #dc2626; font-weight: 700; }
  .step-action { font-family: monospace; background: #f3f4f6; border-radius: 4px;
                 padding: 1px 6px; font-size: 12px; }
  .step-ss { cursor: pointer; color: #6366f1; text-decoration: underline; font-size: 12px; }
  .step-missing { color: #9ca3af; font-size: 12px; font-style: italic; }
  .step-error { color: #dc2626; font-size: 12px; }
  .video-wrap { margin-top: 14px; }
  .video-wrap video { width: 100%; max-width: 720px; border-radius: 8px; display: block; }
  #lightbox { display: none; position: fixed; inset: 0; background: rgba(0,0,0,.85);
              z-index: 9999; align-items: center; justify-content: center; }
  #lightbox.active { display: flex; }
  #lightbox img { max-width: 92vw; max-height: 92vh; border-radius: 8px; }
</style>
</head>
<body>
<div id="lightbox"><img id="lb-img" src="" alt=""/></div>
<div class="container">
  <div class="header">
    <h1>{{.Title}}</h1>
    <div class="meta">{{.Meta.Environment}} {{.Meta.BaseURL}} · run {{.Summary.RunID}} · started {{.Summary.StartedAt}}{{if .Meta.TestedBy}} · tested by {{.Meta.TestedBy}}{{end}}</div>
  </div>

  <div class="summary" id="summary"
       data-total="{{.Summary.Total}}" data-passed="{{.Summary.Passed}}"
       data-failed="{{.Summary.Failed}}" data-skipped="{{.Summary.Skipped}}">
    <div class="stat-card"><div class="num">{{.Summary.Total}}</div><div class="label">Total</div></div>
    <div class="stat-card pass"><div class="num">{{.Summary.Passed}}</div><div class="label">Passed</div></div>
    <div class="stat-card fail"><div class="num">{{.Summary.Failed}}</div><div class="label">Failed</div></div>
    <div class="stat-card skip"><div class="num">{{.Summary.Skipped}}</div><div class="label">Skipped</div></div>
    <div class="stat-card"><div class="num">{{.Summary.DurationSeconds}}s</div><div class="label">Duration</div></div>
  </div>

  <div class="pass-bar-wrap">
    <div style="font-size:13px;color:#444;margin-bottom:8px">Pass rate {{.PassRate}}%</div>
    <div class="pass-bar"><div class="fill" style="width:{{.PassRate}}%"></div></div>
  </div>

  {{if .Failed}}
  <div class="fail-summary">
    <h2>Failed cases</h2>
    <ul>{{range .Failed}}<li><strong>{{.ID}}</strong> — {{.Name}}</li>{{end}}</ul>
  </div>
  {{end}}

  <div class="env-card">
    <h2>Environment</h2>
    <div class="env-table">
      <span class="k">Base URL</span><span class="v">{{.Meta.BaseURL}}</span>
      <span class="k">Environment</span><span class="v">{{.Meta.Environment}}</span>
      <span class="k">Tested by</span><span class="v">{{.Meta.TestedBy}}</span>
      <span class="k">Date</span><span class="v">{{.Meta.Date}}</span>
      <span class="k">Started</span><span class="v">{{.Summary.StartedAt}}</span>
      <span class="k">Finished</span><span class="v">{{.Summary.FinishedAt}}</span>
    </div>
  </div>

  {{range .Cases}}
  <div class="tc-card {{.Status}}">
    <div class="tc-header" onclick="this.closest('.tc-card').classList.toggle('open')">
      <span class="tc-status">{{.Status}}</span>
      <span class="tc-id">{{.ID}}</span>
      <span class="tc-name">{{.Name}}</span>
      <span class="tc-dur">{{.DurationSeconds}}s</span>
    </div>
    <div class="tc-body">
      {{if .Error}}<div class="tc-error">step {{.Error.StepIndex}}: {{.Error.Message}}</div>{{end}}
      {{if .StepViews}}
      <table class="steps-table">
        <thead><tr><th></th><th>Action</th><th>Target / Value</th><th>Screenshot</th></tr></thead>
        <tbody>
        {{range .StepViews}}
        <tr>
          <td>{{if eq .Status "passed"}}<span class="step-pass">✓</span>{{else}}<span class="step-fail">✗</span>{{end}}</td>
          <td><span class="step-action">{{.Action}}</span></td>
          <td>{{.Target}}{{if .Value}} → {{.Value}}{{end}}{{if .Error}}<br/><span class="step-error">{{.Error}}</span>{{end}}</td>
          <td>
            {{if .ImageURI}}<span class="step-ss" onclick="openLightbox(this.dataset.uri)" data-uri="{{.ImageURI}}">view</span>
            {{else if .MissingMedia}}<span class="step-missing">missing: {{.Screenshot}}</span>
            {{end}}
          </td>
        </tr>
        {{end}}
        </tbody>
      </table>
      {{else}}<p style="color:#9ca3af;font-size:13px">(no recorded steps)</p>{{end}}
      {{if .VideoURI}}
      <div class="video-wrap"><video controls src="{{.VideoURI}}"></video></div>
      {{else if .Video}}
      <p class="step-missing">missing video: {{.Video}}</p>
      {{end}}
    </div>
  </div>
  {{end}}
</div>
<script>
function openLightbox(src) {
  document.getElementById('lb-img').src = src;
  document.getElementById('lightbox').classList.add('active');
}
document.getElementById('lightbox').addEventListener('click', function() {
  this.classList.remove('active');
});
document.addEventListener('keydown', function(e) {
  if (e.key === 'Escape') document.getElementById('lightbox').classList.remove('active');
});
document.querySelectorAll('.tc-card.failed').forEach(function(c) { c.classList.add('open'); });
</script>
</body>
</html>
`))
