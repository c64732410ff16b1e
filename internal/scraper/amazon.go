package scraper

import "strings"

// amazonRules covers product detail pages on the amazon.* storefronts
var amazonRules = map[Field]Rule{
	FieldTitle: {
		ID("productTitle"),
		Meta("meta", "name", "title").Read("content"),
	},
	FieldPrice: {
		ID("priceblock_ourprice"),
		ID("priceblock_dealprice"),
		ID("priceblock_saleprice"),
		CSS("span.a-price.apexPriceToPay span.a-offscreen"),
		CSS("div.a-section.a-spacing-micro span.a-price span.a-offscreen"),
	},
	FieldImage: {
		ID("landingImage").Read("src"),
		CSS("#imgTagWrapperId img").Read("src"),
	},
	FieldBuybox: {
		ID("buybox"),
	},
	FieldSeller: {
		ID("sellerProfileTriggerId"),
		CSS("#merchant-info a"),
	},
	FieldBrand: {
		ID("bylineInfo").Cleaned(stripBrandLabel),
	},
}

// stripBrandLabel turns "Brand: Anker" into "Anker"
func stripBrandLabel(s string) string {
	if _, after, ok := strings.Cut(s, "Brand:"); ok {
		return after
	}
	return s
}
