package scraper

// noonRules covers noon.com product pages. Noon has no buy box or byline.
var noonRules = map[Field]Rule{
	FieldTitle: {
		CSS("span.ProductTitle_title__vjUBn"),
		CSS(`h1[data-qa="pdp-name"]`),
		Meta("meta", "property", "og:title").Read("content"),
	},
	FieldPrice: {
		CSS("span.PriceOfferV2_priceNowText__fk5kK"),
		CSS(`div[data-qa="div-price-now"]`),
	},
	FieldImage: {
		CSS("img.imageMagnify").Read("src"),
		Meta("meta", "property", "og:image").Read("content"),
	},
	FieldSeller: {
		CSS("strong.PartnerRatingsV2_soldBy__IOCr1"),
	},
}
