// Package deeplink builds the outbound links the site hands to browsers: a
// WhatsApp chat with a prefilled message and a Google Maps search.
package deeplink

import (
	"net/url"
	"strings"
)

const (
	whatsAppBase = "https://wa.me/"
	mapsBase     = "https://www.google.com/maps/search/"
)

// componentUnescaper restores the characters encodeURIComponent leaves alone
// but url.QueryEscape does not.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s the way JavaScript's encodeURIComponent does.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// WhatsApp opens a chat with phone (international digits, no plus sign) and
// text prefilled.
func WhatsApp(phone, text string) string {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	return whatsAppBase + phone + "?text=" + EncodeComponent(text)
}

// Maps searches Google Maps for a postal address.
func Maps(address string) string {
	return mapsBase + EncodeComponent(address)
}

// Tel is a tel: link for phone.
func Tel(phone string) string {
	return "tel:+" + strings.TrimPrefix(strings.TrimSpace(phone), "+")
}
