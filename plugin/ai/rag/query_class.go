// Package rag assembles the knowledge context injected into the chat prompt:
// catalog text for commercial questions, vector-matched chunks for general
// ones, and nothing for custom requests that a human must price.
package rag

import "strings"

// QueryClass routes a question to its knowledge source.
type QueryClass string

const (
	// QueryCommercial asks about packages or prices; answered from the
	// authoritative catalog only.
	QueryCommercial QueryClass = "commercial"
	// QueryGeneral is answered from the embedded knowledge base.
	QueryGeneral QueryClass = "general"
	// QueryCustom needs human pricing; no knowledge context is attached.
	QueryCustom QueryClass = "custom"
)

var commercialKeywords = []string{
	"harga", "paket", "biaya", "promo", "diskon", "berapa",
	"dp", "cicilan", "tarif", "bayar", "murah", "termasuk apa",
}

var customKeywords = []string{
	"paket khusus", "custom", "request khusus", "mobil pribadi",
	"rombongan", "keluarga besar", "private", "umrah plus",
	"itinerary sendiri", "tanggal sendiri",
}

// Classify picks the knowledge route for a message. Custom wins over
// commercial: "harga paket khusus" is a custom request, not a catalog lookup.
func Classify(message string) QueryClass {
	lower := strings.ToLower(message)
	for _, kw := range customKeywords {
		if strings.Contains(lower, kw) {
			return QueryCustom
		}
	}
	for _, kw := range commercialKeywords {
		if strings.Contains(lower, kw) {
			return QueryCommercial
		}
	}
	return QueryGeneral
}
