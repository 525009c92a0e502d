package web

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"sync"
	"time"
)

// Renderer holds the parsed template set. In reload mode templates are
// reparsed on every render so edits show up without a restart.
type Renderer struct {
	glob   string
	reload bool

	mu    sync.RWMutex
	cache *template.Template
}

// NewRenderer parses all templates matching glob. Unless reload is set the
// parse happens exactly once, at construction.
func NewRenderer(glob string, reload bool) (*Renderer, error) {
	r := &Renderer{glob: glob, reload: reload}
	if !reload {
		t, err := r.parse()
		if err != nil {
			return nil, err
		}
		r.cache = t
	}
	return r, nil
}

func (r *Renderer) parse() (*template.Template, error) {
	files, err := filepath.Glob(r.glob)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found matching %s", r.glob)
	}
	funcMap := template.FuncMap{
		"price": FormatPrice,
		"now":   time.Now,
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

// Render executes the named page template. Template failures surface as a
// plain 500 since the error page itself may be broken.
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var t *template.Template
	if r.reload {
		parsed, err := r.parse()
		if err != nil {
			http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
			return
		}
		r.mu.Lock()
		r.cache = parsed
		r.mu.Unlock()
		t = parsed
	} else {
		r.mu.RLock()
		t = r.cache
		r.mu.RUnlock()
	}
	if t == nil {
		http.Error(w, "template not initialized", http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
	}
}
