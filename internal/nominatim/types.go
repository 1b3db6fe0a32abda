package nominatim

// Address is the nested address breakdown Nominatim attaches to search and
// reverse results. City-like fields are successive fallbacks: city, then
// town, then village, then municipality, then hamlet.
type Address struct {
	Road         string `json:"road"`
	HouseNumber  string `json:"house_number"`
	Postcode     string `json:"postcode"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Hamlet       string `json:"hamlet"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// SearchResult mirrors the relevant parts of the Nominatim search payload.
type SearchResult struct {
	OSMID       int64             `json:"osm_id"`
	OSMType     string            `json:"osm_type"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     Address           `json:"address"`
	ExtraTags   map[string]string `json:"extratags"`
	BoundingBox []string          `json:"boundingbox"`
}

// ReverseResult is the single candidate returned by a reverse lookup.
type ReverseResult struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     Address `json:"address"`
}

// AddressSuggestion is the normalized autocomplete entry returned to the
// frontend address form.
type AddressSuggestion struct {
	Label       string `json:"label"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	ZipCode     string `json:"zipCode"`
	City        string `json:"city"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}
