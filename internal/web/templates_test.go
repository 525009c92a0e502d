package web

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestRendererParseOnce(t *testing.T) {
	renderer, err := NewRenderer(testTemplateGlob, false)
	if err != nil {
		t.Fatalf("construct renderer: %v", err)
	}

	rr := httptest.NewRecorder()
	renderer.Render(rr, "cart", cartPageData{Title: "Trendora | Your Cart", Path: "/cart"})

	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Your cart is empty") {
		t.Error("expected empty cart body")
	}
}

func TestRendererReloadModeConcurrentRenders(t *testing.T) {
	renderer, err := NewRenderer(testTemplateGlob, true)
	if err != nil {
		t.Fatalf("construct renderer: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := httptest.NewRecorder()
			renderer.Render(rr, "shop", shopPageData{Title: "Trendora | Shop", Path: "/shop", Category: "all"})
			if rr.Code != 200 {
				t.Errorf("expected 200, got %d", rr.Code)
			}
		}()
	}
	wg.Wait()
}

func TestRendererMissingTemplates(t *testing.T) {
	if _, err := NewRenderer("does/not/exist/*.tmpl", false); err == nil {
		t.Fatal("expected error for empty glob")
	}
}
