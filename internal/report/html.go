package report

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const styleCSS = `
body{font-family:-apple-system,'Segoe UI',Roboto,sans-serif;color:#1c1917;max-width:860px;margin:0 auto;padding:1rem;}
h1{font-size:1.5rem;border-bottom:2px solid #0f766e;padding-bottom:0.4rem;}
h2{font-size:1.1rem;color:#0f766e;margin-top:1.4rem;}
table{width:100%;border-collapse:collapse;font-size:0.85rem;margin:0.5rem 0;}
th,td{border:1px solid #d6d3d1;padding:0.35rem 0.5rem;text-align:left;}
thead th{background:#f5f5f4;font-weight:700;}
strong{color:#0f766e;}
`

// RenderHTML converts the report markdown to a standalone HTML document.
func RenderHTML(markdown string) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>Wycena nieruchomości</title>" +
		"<style>" + styleCSS +
		"html,body{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}" +
		"@media print{ @page{size:A4;margin:12mm;} body{padding:0;} }" +
		"</style></head><body>" + content.String() + "</body></html>", nil
}
