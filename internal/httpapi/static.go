package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Pages serves the static site: explicit routes for the success and shop
// pages, a root route preferring index.html, a file server over the
// static root, and a GET catch-all for client-side routes.
type Pages struct {
	Root string
}

func NewPages(root string) *Pages {
	return &Pages{Root: root}
}

func (p *Pages) exists(name string) bool {
	info, err := os.Stat(filepath.Join(p.Root, name))
	return err == nil && !info.IsDir()
}

// HasShopPage steers the checkout cancel redirect.
func (p *Pages) HasShopPage() bool {
	return p.exists("shop.html")
}

func (p *Pages) serve(w http.ResponseWriter, r *http.Request, name string) {
	http.ServeFile(w, r, filepath.Join(p.Root, name))
}

func (p *Pages) Success(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, "success.html")
}

func (p *Pages) Shop(w http.ResponseWriter, r *http.Request) {
	if p.exists("shop.html") {
		p.serve(w, r, "shop.html")
		return
	}
	http.Redirect(w, r, "/success.html", http.StatusFound)
}

// landing picks the best available page: index.html, then shop.html,
// then success.html.
func (p *Pages) landing() (string, bool) {
	for _, name := range []string{"index.html", "shop.html", "success.html"} {
		if p.exists(name) {
			return name, true
		}
	}
	return "", false
}

func (p *Pages) Landing(w http.ResponseWriter, r *http.Request) {
	name, ok := p.landing()
	if !ok {
		http.Error(w, "No landing page. Ensure a site index or success page exists.", http.StatusNotFound)
		return
	}
	p.serve(w, r, name)
}

// Fallback handles GET requests for anything the router did not match:
// static assets first, then the landing page for client-side routes. API
// and debug paths are never hijacked.
func (p *Pages) Fallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/api") || strings.HasPrefix(r.URL.Path, "/debug") {
		http.NotFound(w, r)
		return
	}

	clean := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	if clean != "." && !strings.HasPrefix(clean, "..") && p.exists(clean) {
		p.serve(w, r, clean)
		return
	}

	p.Landing(w, r)
}

// List implements GET /debug/public-list, a quick look at what the
// static root actually contains on a deployed instance.
func (p *Pages) List(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"root": p.Root,
			"list": []string{"<missing static root>"},
		})
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"root": p.Root,
		"list": names,
	})
}
