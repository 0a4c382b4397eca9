package generator

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ByLCY/badges/layout"
	"github.com/ByLCY/badges/record"
	rasterrenderer "github.com/ByLCY/badges/renderer/raster"
)

// fakeRenderer 记录收到的胸牌，不产生文件。
type fakeRenderer struct {
	badges  []*layout.Badge
	closed  bool
	failAt  int
	closeTo string
}

func (f *fakeRenderer) TextWidth(content string, _ layout.FontResource, size float64) (float64, error) {
	return float64(utf8.RuneCountInString(content)) * size * 0.2, nil
}

func (f *fakeRenderer) FontMetrics(_ layout.FontResource, size float64) (layout.Metrics, error) {
	return layout.Metrics{Ascent: size * 0.3, Descent: size * 0.1}, nil
}

func (f *fakeRenderer) RenderBadge(b *layout.Badge) error {
	if f.failAt > 0 && b.Index == f.failAt {
		return errors.New("boom")
	}
	f.badges = append(f.badges, b)
	return nil
}

func (f *fakeRenderer) Close() (string, error) {
	f.closed = true
	return f.closeTo, nil
}

func writeCSV(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "participants.csv")
	content := "Name,Title,Company,QR Code\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func runOrFail(t *testing.T, opts Options) Summary {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger, _ = test.NewNullLogger()
	}
	s, err := Run(opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return s
}

func TestRunProducesOneBadgePerRowInOrder(t *testing.T) {
	csv := writeCSV(t,
		"Ana Li,CTO,Acme,attendee-1",
		"Bo,,Initech,",
		",Engineer,Globex,attendee-3",
	)
	fake := &fakeRenderer{closeTo: "out.pdf"}
	s := runOrFail(t, Options{CSVPath: csv, Config: layout.DefaultConfig(), Renderer: fake})

	if s.Generated != 3 || len(fake.badges) != 3 || !fake.closed {
		t.Fatalf("expected 3 badges and a closed renderer, got %+v closed=%v", s, fake.closed)
	}
	if s.Output != "out.pdf" || s.RunID == "" {
		t.Fatalf("unexpected summary %+v", s)
	}
	wantNames := []string{"Ana Li", "Bo", "Unknown"}
	for i, b := range fake.badges {
		if b.Index != i+1 || b.Name != wantNames[i] {
			t.Fatalf("badge %d = index %d name %q", i, b.Index, b.Name)
		}
	}
	if fake.badges[0].QR == nil || fake.badges[0].QR.Data != "attendee-1" {
		t.Fatalf("first badge should carry its QR code")
	}
	if fake.badges[1].QR != nil {
		t.Fatalf("empty QR field must not produce a QR box")
	}
}

func TestRunQRTemplate(t *testing.T) {
	csv := writeCSV(t, "Ana,CTO,Acme,a b", "Bo,CEO,Initech,")
	cfg := layout.DefaultConfig()
	cfg.QR.Data = "https://example.org/a/${QR Code|url}"
	fake := &fakeRenderer{}
	runOrFail(t, Options{CSVPath: csv, Config: cfg, Renderer: fake})

	if got := fake.badges[0].QR.Data; got != "https://example.org/a/a%20b" {
		t.Fatalf("template not applied: %q", got)
	}
	if fake.badges[1].QR != nil {
		t.Fatalf("template must not apply to an empty QR field")
	}
}

func TestRunMissingCSV(t *testing.T) {
	fake := &fakeRenderer{}
	logger, _ := test.NewNullLogger()
	_, err := Run(Options{
		CSVPath:  filepath.Join(t.TempDir(), "missing.csv"),
		Config:   layout.DefaultConfig(),
		Renderer: fake,
		Logger:   logger,
	})
	if !errors.Is(err, record.ErrNotFound) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(fake.badges) != 0 || fake.closed {
		t.Fatalf("no output expected for a missing CSV")
	}
}

func TestRunAbortsOnRenderError(t *testing.T) {
	csv := writeCSV(t, "Ana,,,", "Bo,,,", "Cy,,,")
	fake := &fakeRenderer{failAt: 2}
	logger, _ := test.NewNullLogger()
	s, err := Run(Options{CSVPath: csv, Config: layout.DefaultConfig(), Renderer: fake, Logger: logger})
	if err == nil || !strings.Contains(err.Error(), "第 2 条记录") {
		t.Fatalf("expected row 2 failure, got %v", err)
	}
	if s.Generated != 1 || fake.closed {
		t.Fatalf("run should stop after the failure without closing: %+v closed=%v", s, fake.closed)
	}
}

func TestRunEmptyCSV(t *testing.T) {
	csv := writeCSV(t)
	fake := &fakeRenderer{}
	s := runOrFail(t, Options{CSVPath: csv, Config: layout.DefaultConfig(), Renderer: fake})
	if s.Generated != 0 || !fake.closed {
		t.Fatalf("header-only CSV should close with zero badges: %+v", s)
	}
}

func TestRunWritesDebugJSON(t *testing.T) {
	csv := writeCSV(t, "Ana,CTO,Acme,x")
	debug := filepath.Join(t.TempDir(), "layout.json")
	runOrFail(t, Options{CSVPath: csv, Config: layout.DefaultConfig(), Renderer: &fakeRenderer{}, DebugPath: debug})

	data, err := os.ReadFile(debug)
	if err != nil {
		t.Fatalf("read debug: %v", err)
	}
	var badges []layout.Badge
	if err := json.Unmarshal(data, &badges); err != nil {
		t.Fatalf("debug JSON: %v", err)
	}
	if len(badges) != 1 || badges[0].Name != "Ana" || badges[0].QR == nil {
		t.Fatalf("unexpected debug content: %+v", badges)
	}
}

func TestRunRasterEndToEnd(t *testing.T) {
	csv := writeCSV(t, "maria garcia lopez santos,Senior Director of Engineering,Acme,attendee-42")
	cfg := layout.RasterConfig()
	cfg.DPI = 40
	cfg.Background = ""
	logger, _ := test.NewNullLogger()
	dir := filepath.Join(t.TempDir(), "badges")
	r := rasterrenderer.NewRenderer(rasterrenderer.Options{OutputDir: dir, DPI: cfg.DPI, Logger: logger})

	s := runOrFail(t, Options{CSVPath: csv, Config: cfg, Renderer: r, Logger: logger})
	if s.Generated != 1 || s.Output != dir {
		t.Fatalf("unexpected summary %+v", s)
	}
	if _, err := os.Stat(filepath.Join(dir, "badge_1_Maria_Garcia_Lopez_Santos.jpg")); err != nil {
		t.Fatalf("expected badge file: %v", err)
	}
}

func TestRunAcceptsBareQuotes(t *testing.T) {
	csv := writeCSV(t,
		"Ana Li,CTO,Acme,attendee-1",
		`Robert "Bob" Smith,CEO,Initech,attendee-2`,
		"Cy,,,",
	)
	fake := &fakeRenderer{}
	s := runOrFail(t, Options{CSVPath: csv, Config: layout.DefaultConfig(), Renderer: fake})
	if s.Generated != 3 || !fake.closed {
		t.Fatalf("expected 3 badges and a closed renderer, got %+v closed=%v", s, fake.closed)
	}
	if got := fake.badges[1].Name; got != `Robert "Bob" Smith` {
		t.Fatalf("name = %q", got)
	}
}

func TestRunEncodesQRFieldVerbatim(t *testing.T) {
	csv := writeCSV(t, `Ana,CTO,Acme," attendee-1 "`, `Bo,,,"   "`)
	fake := &fakeRenderer{}
	runOrFail(t, Options{CSVPath: csv, Config: layout.DefaultConfig(), Renderer: fake})
	if qr := fake.badges[0].QR; qr == nil || qr.Data != " attendee-1 " || qr.Code.Data != " attendee-1 " {
		t.Fatalf("QR payload should be the raw field value, got %+v", qr)
	}
	if fake.badges[1].QR != nil {
		t.Fatalf("whitespace-only QR field must not produce a QR box")
	}
}
