package web

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Model Inspector</title>
<style>
body { margin: 0; font-family: sans-serif; display: flex; min-height: 100vh; }
aside { width: 18rem; padding: 1rem; background: #f3f3f3; }
main { flex: 1; padding: 1rem; }
pre { background: #fafafa; border: 1px solid #ddd; padding: .75rem; white-space: pre-wrap; }
.notice { padding: .5rem .75rem; margin-bottom: .75rem; border-radius: 4px; }
.notice-error { background: #fde2e1; color: #8a1c1c; }
.notice-info { background: #e1effd; color: #1c4a8a; }
</style>
</head>
<body>
<aside>
<form method="post" action="/submit">
<label for="selected_model">Select a Model:</label>
<select id="selected_model" name="model">
{{- range .Models}}
<option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
<button type="submit" id="submit_model">Submit Model</button>
</form>
</aside>
<main>
{{- range .Notifications}}
<div class="notice notice-{{.Level}}">{{.Message}}</div>
{{- end}}
<pre id="submitted_model_output">{{.State.SubmittedModel}}</pre>
<pre id="system_prompt_output">{{.State.SystemPrompt}}</pre>
<pre id="model_config_output">{{.State.Config}}</pre>
</main>
</body>
</html>
`))
