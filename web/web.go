// Package web embeds the single page used to create invoices from a browser.
package web

import _ "embed"

//go:embed index.html
var Index []byte
