/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML template for the glitch gallery. A single self-contained page with
the run header, detected scan ranges and one card per artifact.
*/

package reporting

// galleryTemplate is the gallery page template
const galleryTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - glitch gallery</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            color: #333;
        }

        .container {
            max-width: 1400px;
            margin: 0 auto;
            padding: 20px;
        }

        .header {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 20px;
            padding: 30px;
            margin-bottom: 30px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }

        .header h1 {
            color: #4a5568;
            font-size: 2rem;
            margin-bottom: 10px;
        }

        .header .meta {
            color: #718096;
            font-size: 0.9rem;
        }

        .stats {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(160px, 1fr));
            gap: 16px;
            margin-top: 20px;
        }

        .stat {
            background: #f7fafc;
            border-radius: 12px;
            padding: 16px;
            text-align: center;
        }

        .stat .value {
            font-size: 1.6rem;
            font-weight: 700;
            color: #2d3748;
        }

        .stat .label {
            font-size: 0.8rem;
            color: #718096;
            text-transform: uppercase;
        }

        .ranges {
            margin-top: 20px;
            font-family: monospace;
            color: #4a5568;
        }

        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fill, minmax(260px, 1fr));
            gap: 20px;
        }

        .card {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 16px;
            overflow: hidden;
            box-shadow: 0 4px 16px rgba(0, 0, 0, 0.1);
        }

        .card img {
            width: 100%;
            display: block;
            background: #1a202c;
            min-height: 120px;
        }

        .card .body {
            padding: 12px 16px;
            font-size: 0.85rem;
        }

        .card .id {
            font-family: monospace;
            font-weight: 700;
            color: #2d3748;
            word-break: break-all;
        }

        .probe-ok { color: #38a169; }
        .probe-error { color: #dd6b20; }
        .split { color: #805ad5; font-weight: 600; }
        .probe-panic { color: #e53e3e; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
            <div class="meta">
                run {{.RunID}} &middot; seed {{.Seed}} &middot; {{.InputSize}} bytes &middot; {{.Duration}} &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}
            </div>
            <div class="stats">
                <div class="stat"><div class="value">{{.Stats.Artifacts}}</div><div class="label">Artifacts</div></div>
                <div class="stat"><div class="value">{{.Stats.Overwrites}}</div><div class="label">Overwrites</div></div>
                <div class="stat"><div class="value">{{.Stats.BytesChanged}}</div><div class="label">Bytes changed</div></div>
                {{if .Stats.Probed}}
                <div class="stat"><div class="value">{{.Stats.Decodable}}</div><div class="label">Decodable</div></div>
                <div class="stat"><div class="value">{{.Stats.ProbeFailures}}</div><div class="label">Probe failures</div></div>
                <div class="stat"><div class="value">{{.Stats.Disagreements}}</div><div class="label">Decoder splits</div></div>
                {{end}}
            </div>
            <div class="ranges">
                {{range $i, $r := .Ranges}}scan {{$i}}: {{$r}} &nbsp; {{else}}no scan ranges detected{{end}}
            </div>
        </div>

        <div class="grid">
            <div class="card">
                <img src="{{.Original}}" alt="original">
                <div class="body"><div class="id">original</div><div>{{.Input}}</div></div>
            </div>
            {{range .Items}}
            <div class="card">
                <img src="{{.File}}" alt="{{.StrategyID}}" loading="lazy">
                <div class="body">
                    <div class="id">{{.StrategyID}}</div>
                    <div>{{.Placement}} placement, {{.Overwrite}} overwrite</div>
                    <div>{{.Overwrites}} overwrites, {{.BytesChanged}} bytes changed</div>
                    <div class="probe-{{.Probe}}" title="{{.ProbeError}}">probe: {{.Probe}}</div>
                    {{if .Decoders}}<div{{if .Disagree}} class="split"{{end}}>{{.Decoders}}{{if .Disagree}} (split){{end}}</div>{{end}}
                </div>
            </div>
            {{end}}
        </div>
    </div>
</body>
</html>
`
