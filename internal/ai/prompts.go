package ai

import (
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var promptFuncs = template.FuncMap{
	"join":         strings.Join,
	"deref":        func(p *int) int { return *p },
	"derefFloat":   func(p *float64) float64 { return *p },
	"money":        func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"stageLabel":   func(v string) string { return labelOf(InterviewStages, v) },
	"channelLabel": func(v string) string { return labelOf(OutreachChannels, v) },
	"purposeLabel": func(v string) string { return strings.ToLower(labelOf(OutreachPurposes, v)) },
}

// prompts is parsed once; every template is named after its file.
var prompts = template.Must(template.New("prompts").Funcs(promptFuncs).ParseFS(promptFS, "prompts/*.tmpl"))

// Prompt is a rendered system and user prompt pair.
type Prompt struct {
	System string
	User   string
}

// RenderPrompt renders the prompt for kind with req as data.
func RenderPrompt(kind Kind, req Request) (Prompt, error) {
	system, err := execute("system.tmpl", nil)
	if err != nil {
		return Prompt{}, err
	}
	user, err := execute(string(kind)+".tmpl", req)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: system, User: user}, nil
}

func execute(name string, data any) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}
