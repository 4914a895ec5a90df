package delivery

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	texttemplate "text/template"

	"github.com/sungwon/ion-notify/internal/htmltext"
)

//go:embed templates
var embeddedTemplates embed.FS

// Renderer loads email templates by logical name, e.g.
// "announcements/emails/announcement_posted.txt". Templates found under the
// override directory replace the embedded defaults.
type Renderer struct {
	sources []fs.FS
}

// NewRenderer creates a Renderer. overrideDir may be empty.
func NewRenderer(overrideDir string) (*Renderer, error) {
	builtin, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("delivery: embedded templates: %w", err)
	}

	r := &Renderer{}
	if overrideDir != "" {
		info, err := os.Stat(overrideDir)
		if err != nil {
			return nil, fmt.Errorf("delivery: template dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("delivery: template dir %s is not a directory", overrideDir)
		}
		r.sources = append(r.sources, os.DirFS(overrideDir))
	}
	r.sources = append(r.sources, builtin)
	return r, nil
}

func (r *Renderer) load(name string) (string, error) {
	for _, src := range r.sources {
		data, err := fs.ReadFile(src, name)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read template %s: %w", name, err)
		}
	}
	return "", fmt.Errorf("template %s: %w", name, fs.ErrNotExist)
}

// RenderText executes a text/template.
func (r *Renderer) RenderText(name string, data map[string]any) (string, error) {
	src, err := r.load(name)
	if err != nil {
		return "", err
	}
	tmpl, err := texttemplate.New(path.Base(name)).Funcs(texttemplate.FuncMap(textFuncs)).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderHTML executes an html/template, escaping everything not passed
// through "safe".
func (r *Renderer) RenderHTML(name string, data map[string]any) (string, error) {
	src, err := r.load(name)
	if err != nil {
		return "", err
	}
	tmpl, err := htmltemplate.New(path.Base(name)).Funcs(htmlFuncs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

var textFuncs = map[string]any{
	"plaintext": htmltext.PlainText,
	"striptags": htmltext.StripTags,
	"formvalue": formValue,
}

var htmlFuncs = htmltemplate.FuncMap{
	// Announcement bodies are authored HTML and go out unescaped.
	"safe":      func(s string) htmltemplate.HTML { return htmltemplate.HTML(s) }, //nolint:gosec
	"plaintext": htmltext.PlainText,
	"striptags": htmltext.StripTags,
	"formvalue": formValue,
}

// formValue reads a submitted form field as display text. Lists are joined
// with ", " and missing keys render as "".
func formValue(form map[string]any, key string) string {
	v, ok := form[key]
	if !ok || v == nil {
		return ""
	}
	switch tv := v.(type) {
	case string:
		return tv
	case []any:
		parts := make([]string, 0, len(tv))
		for _, item := range tv {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(tv, ", ")
	case map[string]any:
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return strings.Join(keys, ", ")
	default:
		return fmt.Sprint(tv)
	}
}
