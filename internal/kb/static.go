package kb

import "time"

// StoreInfo returns the static store policy and information records that are
// merged into every knowledge-base generation. These answer delivery,
// return, and payment questions without touching the catalog.
func StoreInfo(now time.Time) []Record {
	return []Record{
		{
			ID:        "info_about",
			Text:      "Kartwise is an online shopping marketplace with millions of products across electronics, fashion, home, and more.",
			Category:  "info",
			Source:    SourceStatic,
			Timestamp: now,
		},
		{
			ID:        "info_delivery",
			Text:      "Kartwise offers Cash on Delivery (COD), free shipping on eligible products, and delivery within 2-7 business days.",
			Category:  "delivery",
			Source:    SourceStatic,
			Timestamp: now,
		},
		{
			ID:        "info_return",
			Text:      "Easy returns within 7-30 days depending on product category. Return shipping is free. Full refund or replacement guaranteed.",
			Category:  "return_policy",
			Source:    SourceStatic,
			Timestamp: now,
		},
		{
			ID:        "info_payment",
			Text:      "Payment options: Credit/Debit Cards, Net Banking, UPI (GPay, PhonePe, Paytm), Wallets, EMI options, and Cash on Delivery.",
			Category:  "payment",
			Source:    SourceStatic,
			Timestamp: now,
		},
	}
}

// fallbackEntry is the compact form fallback products are declared in.
type fallbackEntry struct {
	id       string
	text     string
	category string
	name     string
	price    string
	discount string
}

// fallbackCatalog is the built-in product set used when the live catalog
// fetch yields too few records. It spans the categories the intent layer
// knows synonyms for, so an offline instance still answers useful queries.
var fallbackCatalog = []fallbackEntry{
	// Smartphones
	{"fb_mobile_1", "Samsung Galaxy M14 5G - Price: ₹12,990 (MRP: ₹16,990) 23% off. 6GB RAM, 128GB storage, 50MP camera. Rating: 4.3/5", "smartphones", "Samsung Galaxy M14 5G", "₹12,990", "23% off"},
	{"fb_mobile_2", "Redmi 12 5G - Price: ₹10,999 (MRP: ₹14,999) 27% off. 4GB RAM, 128GB storage, 50MP camera. Rating: 4.1/5", "smartphones", "Redmi 12 5G", "₹10,999", "27% off"},
	{"fb_mobile_3", "Realme Narzo 60 5G - Price: ₹17,999 (MRP: ₹24,999) 28% off. 8GB RAM, 128GB storage, 64MP camera. Rating: 4.4/5", "smartphones", "Realme Narzo 60 5G", "₹17,999", "28% off"},
	{"fb_mobile_4", "Samsung Galaxy A14 5G - Price: ₹14,490 (MRP: ₹20,990) 31% off. 6GB RAM, 128GB storage, 50MP camera. Rating: 4.2/5", "smartphones", "Samsung Galaxy A14 5G", "₹14,490", "31% off"},
	{"fb_mobile_5", "OnePlus Nord CE 3 Lite 5G - Price: ₹17,499 (MRP: ₹22,999) 24% off. 8GB RAM, 128GB storage, 108MP camera. Rating: 4.4/5", "smartphones", "OnePlus Nord CE 3 Lite 5G", "₹17,499", "24% off"},
	{"fb_mobile_6", "Motorola G54 5G - Price: ₹13,999 (MRP: ₹18,999) 26% off. 12GB RAM, 256GB storage, 50MP OIS camera. Rating: 4.2/5", "smartphones", "Motorola G54 5G", "₹13,999", "26% off"},

	// Laptops
	{"fb_laptop_1", "HP 14s Laptop - Price: ₹32,990 (MRP: ₹45,000) 27% off. Intel Core i3, 8GB RAM, 512GB SSD, Windows 11. Rating: 4.2/5", "laptops", "HP 14s Laptop", "₹32,990", "27% off"},
	{"fb_laptop_2", "Lenovo IdeaPad Slim 3 - Price: ₹29,990 (MRP: ₹42,000) 29% off. Intel Celeron, 8GB RAM, 256GB SSD, Windows 11. Rating: 4.0/5", "laptops", "Lenovo IdeaPad Slim 3", "₹29,990", "29% off"},
	{"fb_laptop_3", "Dell Vostro 3420 - Price: ₹38,990 (MRP: ₹52,000) 25% off. Intel Core i3, 8GB RAM, 512GB SSD, Windows 11 Pro. Rating: 4.3/5", "laptops", "Dell Vostro 3420", "₹38,990", "25% off"},
	{"fb_laptop_4", "ASUS Vivobook 15 - Price: ₹35,990 (MRP: ₹48,000) 25% off. Intel Core i3, 8GB RAM, 512GB SSD, Windows 11. Rating: 4.1/5", "laptops", "ASUS Vivobook 15", "₹35,990", "25% off"},
	{"fb_laptop_5", "HP Pavilion 15 - Price: ₹52,990 (MRP: ₹68,000) 22% off. Intel Core i5, 16GB RAM, 512GB SSD, Windows 11. Rating: 4.4/5", "laptops", "HP Pavilion 15", "₹52,990", "22% off"},

	// Headphones
	{"fb_headphone_1", "boAt Rockerz 450 - Price: ₹1,299 (MRP: ₹2,990) 57% off. Bluetooth headphones, 15hr battery, bass boost. Rating: 4.2/5", "headphones", "boAt Rockerz 450", "₹1,299", "57% off"},
	{"fb_headphone_2", "JBL Tune 510BT - Price: ₹2,999 (MRP: ₹4,999) 40% off. Wireless Bluetooth headphones, 40hr battery, deep bass. Rating: 4.3/5", "headphones", "JBL Tune 510BT", "₹2,999", "40% off"},
	{"fb_headphone_3", "OnePlus Buds Z2 - Price: ₹3,499 (MRP: ₹4,999) 30% off. TWS earbuds, ANC, 38hr battery, fast charging. Rating: 4.3/5", "headphones", "OnePlus Buds Z2", "₹3,499", "30% off"},

	// Smartwatches
	{"fb_watch_1", "Noise ColorFit Icon 2 - Price: ₹1,799 (MRP: ₹4,999) 64% off. 1.8\" AMOLED display, BT calling, 10-day battery. Rating: 4.1/5", "smartwatch", "Noise ColorFit Icon 2", "₹1,799", "64% off"},
	{"fb_watch_2", "Amazfit Bip 3 Pro - Price: ₹3,499 (MRP: ₹5,999) 42% off. 1.69\" display, GPS, 14-day battery, 60+ sports modes. Rating: 4.3/5", "smartwatch", "Amazfit Bip 3 Pro", "₹3,499", "42% off"},

	// Televisions
	{"fb_tv_1", "Mi 43-inch Smart TV 5A - Price: ₹23,999 (MRP: ₹31,999) 25% off. Full HD LED, Android TV, Dolby Audio. Rating: 4.3/5", "television", "Mi Smart TV 5A 43-inch", "₹23,999", "25% off"},
	{"fb_tv_2", "Sony Bravia 55-inch 4K UHD - Price: ₹54,990 (MRP: ₹74,990) 27% off. 4K HDR, Android TV, Google Assistant. Rating: 4.6/5", "television", "Sony Bravia 55-inch 4K UHD", "₹54,990", "27% off"},

	// Shoes
	{"fb_shoes_1", "Nike Revolution 6 - Price: ₹3,295 (MRP: ₹4,995) 34% off. Running shoes, lightweight, breathable mesh. Rating: 4.3/5", "shoes", "Nike Revolution 6", "₹3,295", "34% off"},
	{"fb_shoes_2", "Campus North Plus - Price: ₹999 (MRP: ₹1,999) 50% off. Casual shoes, memory foam, all-day comfort. Rating: 4.0/5", "shoes", "Campus North Plus", "₹999", "50% off"},

	// Fashion
	{"fb_fashion_women_1", "W Women Kurta Set - Price: ₹899 (MRP: ₹2,499) 64% off. Cotton kurta with palazzo, floral print, casual. Rating: 4.3/5", "womens_fashion", "W Women Kurta Set", "₹899", "64% off"},
	{"fb_fashion_men_1", "Levi's Men Slim Fit Jeans - Price: ₹1,799 (MRP: ₹2,999) 40% off. Blue denim, stretch fabric, mid-rise. Rating: 4.4/5", "mens_fashion", "Levi's Men Slim Fit Jeans", "₹1,799", "40% off"},

	// Tablets
	{"fb_tablet_1", "Samsung Galaxy Tab A8 - Price: ₹14,999 (MRP: ₹19,999) 25% off. 10.5\" display, 4GB RAM, 64GB storage. Rating: 4.3/5", "tablet", "Samsung Galaxy Tab A8", "₹14,999", "25% off"},

	// Kitchen
	{"fb_kitchen_1", "Philips Mixer Grinder - Price: ₹3,499 (MRP: ₹6,995) 50% off. 750W, 3 jars, turbo function. Rating: 4.4/5", "kitchen", "Philips Mixer Grinder", "₹3,499", "50% off"},

	// Books
	{"fb_books_1", "Atomic Habits by James Clear - Price: ₹399 (MRP: ₹599) 33% off. Self-help, bestseller, paperback. Rating: 4.8/5", "books", "Atomic Habits", "₹399", "33% off"},
}

// FallbackProducts returns the built-in fallback catalog as records.
func FallbackProducts(now time.Time) []Record {
	out := make([]Record, len(fallbackCatalog))
	for i, e := range fallbackCatalog {
		out[i] = Record{
			ID:          e.id,
			Text:        e.text,
			Category:    e.category,
			ProductName: e.name,
			Price:       e.price,
			Discount:    e.discount,
			Source:      SourceFallback,
			Timestamp:   now,
		}
	}
	return out
}
