package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/badges/dsl"
)

const sampleProfile = `
// 会议胸牌
badge Summit v1 {
  page {
    width: 210mm
    height: 297mm
    background: "public/badge.png"
    dpi: 300
  }

  block name {
    font: bold; size: 30pt; small-size: 24pt
    color: #1a1a1a
    max-lines: 2
  }

  qr {
    size: 75mm
    data: "https://example.org/a/${QR Code}"
  }
}
`

func TestParseProfile(t *testing.T) {
	p, err := dsl.ParseString(sampleProfile)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if p.Name != "Summit" || p.Version != "v1" {
		t.Fatalf("expected Summit v1, got %s %s", p.Name, p.Version)
	}
	if len(p.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(p.Sections))
	}

	page := p.Find("page", "")
	if page == nil {
		t.Fatalf("page section missing")
	}
	if len(page.Entries) != 4 {
		t.Fatalf("expected 4 page entries, got %d", len(page.Entries))
	}
	if got := page.Entries[2].Value.Text(); got != "public/badge.png" {
		t.Fatalf("background mismatch: %q", got)
	}
	if page.Entries[0].Value.Number == nil || *page.Entries[0].Value.Number != "210mm" {
		t.Fatalf("width should be a number token: %+v", page.Entries[0].Value)
	}

	name := p.Find("block", "name")
	if name == nil {
		t.Fatalf("block name missing")
	}
	if len(name.Entries) != 5 {
		t.Fatalf("expected 5 name entries (';' separated), got %d", len(name.Entries))
	}
	if name.Entries[0].Value.Ident == nil || *name.Entries[0].Value.Ident != "bold" {
		t.Fatalf("font should be ident bold: %+v", name.Entries[0].Value)
	}
	if name.Entries[3].Value.Color == nil || *name.Entries[3].Value.Color != "#1a1a1a" {
		t.Fatalf("color mismatch: %+v", name.Entries[3].Value)
	}

	qr := p.Find("qr", "")
	if qr == nil || qr.Entries[1].Value.Text() != "https://example.org/a/${QR Code}" {
		t.Fatalf("qr data mismatch: %+v", qr)
	}
}

func TestParseReportsPosition(t *testing.T) {
	_, err := dsl.Parse("bad.badge", strings.NewReader("badge X v1 {\n  page {\n    width 210mm\n  }\n}\n"))
	if err == nil {
		t.Fatalf("expected parse error for missing colon")
	}
	if !strings.Contains(err.Error(), "bad.badge:3") {
		t.Fatalf("error should carry file and line, got %v", err)
	}
}

func TestFindOnNilProfile(t *testing.T) {
	var p *dsl.Profile
	if p.Find("page", "") != nil {
		t.Fatalf("nil profile should find nothing")
	}
}
