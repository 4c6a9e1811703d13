package page

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

// Shell describes the editor page served by the host application.
type Shell struct {
	Title     string
	ScriptURL string
	// Config is marshalled into the config element. Nil omits the element.
	Config any
	// Data is the raw initial document. Empty omits the element.
	Data json.RawMessage
}

var shellTmpl = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="root"></div>
{{- if .Config}}
<script type="application/json" id="` + ConfigElementID + `">{{.Config}}</script>
{{- end}}
{{- if .Data}}
<script type="application/json" id="` + DataElementID + `">{{.Data}}</script>
{{- end}}
{{- if .ScriptURL}}
<script type="module" src="{{.ScriptURL}}"></script>
{{- end}}
</body>
</html>
`))

type shellView struct {
	Title     string
	ScriptURL string
	Config    template.JS
	Data      template.JS
}

// Render writes the editor shell. JSON payloads are escaped so they cannot
// close the surrounding script element.
func Render(w io.Writer, s Shell) error {
	v := shellView{Title: s.Title, ScriptURL: s.ScriptURL}
	if v.Title == "" {
		v.Title = "Email Builder"
	}
	if s.Config != nil {
		b, err := json.Marshal(s.Config)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		v.Config = template.JS(b)
	}
	if len(s.Data) > 0 {
		// Marshal compacts and validates the payload.
		b, err := json.Marshal(s.Data)
		if err != nil {
			return fmt.Errorf("marshal data: %w", err)
		}
		v.Data = template.JS(b)
	}
	if err := shellTmpl.Execute(w, v); err != nil {
		return fmt.Errorf("render shell: %w", err)
	}
	return nil
}
