package catalog

import (
	"fmt"

	"github.com/example/storefront-core/internal/domain"
)

func images(seed string) []string {
	return []string{
		fmt.Sprintf("https://picsum.photos/seed/%s/400/500", seed),
		fmt.Sprintf("https://picsum.photos/seed/%s2/400/500", seed),
		fmt.Sprintf("https://picsum.photos/seed/%s3/400/500", seed),
	}
}

// SampleCatalog returns the built-in catalog used when the backend is
// unreachable. Each call returns fresh slices.
func SampleCatalog() []domain.Product {
	return []domain.Product{
		{ID: "101", Name: "Gulmohar Lawn Suit", Category: "Cotton", Price: 3500, Description: "Pure cotton lawn three-piece with embroidery and a soft dupatta. Ideal for daily wear.", Fabric: "Lawn Cotton", Colors: []string{"Pastel Pink", "Beige", "Mint"}, Sizes: []string{"S", "M", "L", "XL", "Free"}, IsNewArrival: true, Images: images("gulmohar"), DisplayOrder: domain.PinThreshold},
		{ID: "102", Name: "Shalimar Silk Ensemble", Category: "Silk", Price: 6200, Description: "Raw silk suit with delicate zari work for evening occasions.", Fabric: "Raw Silk", Colors: []string{"Maroon", "Gold"}, Sizes: []string{"36", "38", "40", "42"}, IsNewArrival: true, IsTrending: true, Images: images("shalimar"), DisplayOrder: domain.PinThreshold},
		{ID: "103", Name: "Party Princess Georgette", Category: "Party Wear", Price: 7800, Description: "Heavy georgette suit with stone embellishments.", Fabric: "Georgette", Colors: []string{"Royal Blue", "Crimson"}, Sizes: []string{"Free"}, IsTrending: true, OnSale: true, Images: images("georgette"), DisplayOrder: domain.PinThreshold},
		{ID: "104", Name: "Everyday Beige Cotton", Category: "Cotton", Price: 2800, Description: "Simple cotton suit for comfortable daily use.", Fabric: "Cotton", Colors: []string{"Beige", "Lavender"}, Sizes: []string{"38", "40", "42", "44", "46"}, OnSale: true, Images: images("beige"), DisplayOrder: domain.PinThreshold},
		{ID: "105", Name: "Mogra Chiffon", Category: "Party Wear", Price: 5900, Description: "Flowy chiffon with printed motifs and lace detailing.", Fabric: "Chiffon", Colors: []string{"White", "Yellow"}, Sizes: []string{"S", "M", "L"}, IsTrending: true, Images: images("mogra"), DisplayOrder: domain.PinThreshold},
		{ID: "106", Name: "Sapphire Lawn Print", Category: "Cotton", Price: 3200, Description: "Printed lawn suit with a cotton dupatta.", Fabric: "Lawn Cotton", Colors: []string{"Blue", "Green", "White"}, Sizes: []string{"36", "38", "40", "42", "44"}, IsNewArrival: true, Images: images("sapphire"), DisplayOrder: domain.PinThreshold},
		{ID: "107", Name: "Emerald Viscose", Category: "Silk", Price: 5500, Description: "Viscose silk blend with minimalist golden detailing.", Fabric: "Viscose Silk", Colors: []string{"Emerald", "Black"}, Sizes: []string{"M", "L", "XL"}, IsNewArrival: true, IsTrending: true, Images: images("emerald"), DisplayOrder: domain.PinThreshold},
		{ID: "108", Name: "Maharani Velvet", Category: "Party Wear", Price: 9500, Description: "Velvet three-piece with heavy sequin work for festive wear.", Fabric: "Velvet", Colors: []string{"Navy", "Wine Red"}, Sizes: []string{"38", "40", "42", "44", "Free"}, IsNewArrival: true, IsTrending: true, OnSale: true, Images: images("maharani"), DisplayOrder: domain.PinThreshold},
	}
}
