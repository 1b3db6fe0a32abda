package nominatim

import "strings"

// PickCity resolves the city-like component of an address, preferring city,
// then town, then village, then municipality, then hamlet.
func PickCity(address Address) string {
	if address.City != "" {
		return address.City
	}
	if address.Town != "" {
		return address.Town
	}
	if address.Village != "" {
		return address.Village
	}
	if address.Municipality != "" {
		return address.Municipality
	}
	return address.Hamlet
}

// MergeAddress flattens a nested address object into OSM-style "addr:*"
// attribute keys on attrs, so downstream consumers see one uniform
// attribute shape regardless of provider. Existing attributes are not
// overwritten and empty fragments are skipped, which also makes the merge
// idempotent.
func MergeAddress(attrs map[string]string, address Address) {
	put := func(key, value string) {
		if value == "" {
			return
		}
		if _, exists := attrs[key]; exists {
			return
		}
		attrs[key] = value
	}

	put("addr:street", address.Road)
	put("addr:housenumber", address.HouseNumber)
	put("addr:city", PickCity(address))
	put("addr:postcode", address.Postcode)
	put("addr:country", address.Country)
	put("addr:state", address.State)
}

func buildSuggestion(raw SearchResult) (AddressSuggestion, bool) {
	if raw.Address.Road == "" {
		return AddressSuggestion{}, false
	}

	city := PickCity(raw.Address)
	if city == "" {
		return AddressSuggestion{}, false
	}

	suggestion := AddressSuggestion{
		Street:      raw.Address.Road,
		HouseNumber: raw.Address.HouseNumber,
		ZipCode:     raw.Address.Postcode,
		City:        city,
		Lat:         raw.Lat,
		Lon:         raw.Lon,
	}

	suggestion.Label = buildLabel(suggestion)

	return suggestion, true
}

func buildLabel(suggestion AddressSuggestion) string {
	parts := []string{suggestion.Street}
	if suggestion.HouseNumber != "" {
		parts = append(parts, suggestion.HouseNumber)
	}
	parts = append(parts, ",")
	if suggestion.ZipCode != "" {
		parts = append(parts, suggestion.ZipCode)
	}
	parts = append(parts, suggestion.City)

	label := strings.Join(parts, " ")
	label = strings.ReplaceAll(label, " ,", ",")
	return strings.TrimSpace(label)
}
