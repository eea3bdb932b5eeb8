package obfuscation

import (
	"strings"

	"github.com/gatehouse/marketplace/internal/validation"
)

const (
	maskedOctets = "xxx.xxx.xxx"
	fullyMasked  = "xxx.xxx.xxx.xxx"
	globalZone   = "Global"
)

// MaskIPAddress keeps only the first IPv4 octet: "41.58.12.9" becomes
// "41.xxx.xxx.xxx". Anything that is not an IPv4 address is fully masked.
func MaskIPAddress(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}
	if !strings.Contains(ip, ":") && validation.IsValidIP(ip) {
		first, _, _ := strings.Cut(ip, ".")
		return first + "." + maskedOctets
	}
	return fullyMasked
}

// regionZones maps canonical region names to datacenter zones
var regionZones = map[string]string{
	"lagos":        "WA-1",
	"abuja":        "WA-2",
	"accra":        "WA-3",
	"nairobi":      "EA-1",
	"johannesburg": "SA-1",
	"cape town":    "SA-2",
	"cairo":        "NA-1",
	"london":       "EU-W1",
	"frankfurt":    "EU-C1",
	"us east":      "US-E1",
	"us west":      "US-W1",
	"singapore":    "AP-SE1",
}

// RegionZone returns the zone for a region, or "Global" if unmapped
func RegionZone(region string) string {
	if zone, ok := regionZones[strings.ToLower(strings.TrimSpace(region))]; ok {
		return zone
	}
	return globalZone
}

// ObfuscateProviderName replaces a provider with a synthesized datacenter
// label built from the region and its zone. The provider name is never used.
func ObfuscateProviderName(_ string, region string) string {
	region = strings.TrimSpace(region)
	zone := RegionZone(region)
	if region == "" || strings.EqualFold(region, globalZone) {
		return brandPrefix + " " + zone
	}
	return brandPrefix + " " + region + " " + zone
}
