package utils

import (
	"log"
	"time"
)

const marketTimeZone = "America/Sao_Paulo"

// GetMarketLocation returns the B3 exchange time zone.
func GetMarketLocation() *time.Location {
	loc, err := time.LoadLocation(marketTimeZone)
	if err != nil {
		log.Println("Failed to load market location, using UTC:", err)
		return time.UTC
	}
	return loc
}

// LoadLocationOrDefault resolves name, falling back to the market time zone when name is blank or unknown.
func LoadLocationOrDefault(name string) *time.Location {
	if name == "" {
		return GetMarketLocation()
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Unknown time zone %q, using %s", name, marketTimeZone)
		return GetMarketLocation()
	}
	return loc
}

// PrettyDate renders t in the market time zone, e.g. "17 Oct 2026 10:30 BRT".
func PrettyDate(t time.Time) string {
	return t.In(GetMarketLocation()).Format("02 Jan 2006 15:04 MST")
}
