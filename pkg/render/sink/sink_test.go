package sink

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ayeeff/marketmap/pkg/errors"
	"github.com/ayeeff/marketmap/pkg/render"
	"github.com/ayeeff/marketmap/pkg/treemap"
)

func testMap(t *testing.T) *render.Map {
	t.Helper()
	rects := []treemap.Rect{
		{X: 0, Y: 0, DX: 0.5, DY: 1},
		{X: 0.5, Y: 0, DX: 0.5, DY: 1},
	}
	m, err := render.Compose("Global Market Cap Treemap",
		rects,
		[]string{"United States", `A "quoted" <name>`},
		[]string{"United States\n$68.89 T\n46.50%", ""},
		1000, 830, 30)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	return m
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(testMap(t), "https://raw.githubusercontent.com/ayeeff/marketcap/main/img/map1.png", "globalmap")
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	got := string(out)

	for _, want := range []string{
		`usemap="#globalmap"`,
		`<map name="globalmap">`,
		`coords="0,30,500,830"`,
		`coords="500,30,1000,830"`,
		`title="United States` + "\n" + `$68.89 T` + "\n" + `46.50%"`,
		`Hover over rectangles for details.`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	// Markup in labels must be escaped.
	if strings.Contains(got, "<name>") {
		t.Error("unescaped label markup in output")
	}
	if !strings.Contains(got, "&lt;name&gt;") {
		t.Error("expected escaped label markup")
	}

	// Empty tooltip falls back to the label.
	if !strings.Contains(got, `title="A &#34;quoted&#34; &lt;name&gt;"`) {
		t.Errorf("fallback tooltip missing:\n%s", got)
	}
}

func TestRenderHTMLValidation(t *testing.T) {
	m := testMap(t)
	if _, err := RenderHTML(m, "ftp://bad/scheme.png", "map"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad URL error = %v", err)
	}
	if _, err := RenderHTML(m, "https://example.com/x.png", ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty map name error = %v", err)
	}
}

func TestRenderSVG(t *testing.T) {
	got := string(RenderSVG(testMap(t)))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="1000" height="830"`,
		`Global Market Cap Treemap`,
		`<rect x="0" y="30" width="500" height="800"`,
		`<title>United States` + "\n" + `$68.89 T` + "\n" + `46.50%</title>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Contains(got, "<name>") {
		t.Error("unescaped label markup in svg")
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := RenderJSON(testMap(t))
	if err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}

	var decoded render.Map
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Title != "Global Market Cap Treemap" || len(decoded.Boxes) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Boxes[0].Pixel.Right != 500 {
		t.Errorf("pixel geometry lost in export: %+v", decoded.Boxes[0].Pixel)
	}
}
