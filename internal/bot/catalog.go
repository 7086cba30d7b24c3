package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is one orderable item in the fixed demo catalog.
type Product struct {
	Name  string
	Price decimal.Decimal
}

func p(name string, price int64) Product {
	return Product{Name: name, Price: decimal.NewFromInt(price)}
}

// Catalog keys match the numbers shown in the localized category menu.
var Catalog = map[string][]Product{
	"1": { // Beverages
		p("Coca-Cola 300ml", 15),
		p("Ambo Water 1L", 20),
		p("Pepsi 500ml", 18),
	},
	"2": { // Snacks
		p("Lays Chips", 25),
		p("Biscuit Pack", 10),
		p("Popcorn Bag", 12),
	},
	"3": { // Household
		p("Soap Bar", 30),
		p("Detergent 500g", 45),
		p("Cooking Oil 1L", 120),
	},
	"4": { // Personal care
		p("Toothpaste", 35),
		p("Shampoo 200ml", 55),
	},
	"5": { // Grains & staples
		p("Teff 1kg", 80),
		p("Rice 1kg", 65),
		p("Sugar 1kg", 50),
	},
}

// Locations and ShopTypes resolve the numeric menu choices used during
// onboarding. Unresolved input is stored verbatim ("4. Other").
var Locations = map[string]string{
	"1": "Mercato",
	"2": "Bole",
	"3": "Piassa",
}

var ShopTypes = map[string]string{
	"1": "Kiosk",
	"2": "Mini market",
	"3": "Wholesale",
}

// renderProducts lists a category's products with 1-based numbers.
func renderProducts(products []Product, footer string) string {
	var sb strings.Builder
	for i, pr := range products {
		fmt.Fprintf(&sb, "%d. %s — ETB %s\n", i+1, pr.Name, pr.Price)
	}
	sb.WriteString("\n")
	sb.WriteString(footer)
	return sb.String()
}
