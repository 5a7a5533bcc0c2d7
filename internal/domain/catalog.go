package domain

// demoCatalog is the fixed wardrobe used in demo mode. Ids are stable.
var demoCatalog = []ClothingItem{
	{
		ID:           "1",
		Type:         "Top",
		Subtype:      "Shirt",
		PrimaryColor: "Sky Blue",
		Patterns:     "Solid",
		Season:       "Spring/Summer",
		Formality:    7,
		SearchTags:   []string{"shirt", "blue", "office", "casual"},
		Emoji:        "👔",
	},
	{
		ID:           "2",
		Type:         "Bottom",
		Subtype:      "Chino Trousers",
		PrimaryColor: "Beige",
		Patterns:     "Solid",
		Season:       "All year",
		Formality:    6,
		SearchTags:   []string{"chino", "beige", "smart-casual"},
		Emoji:        "👖",
	},
	{
		ID:           "3",
		Type:         "Top",
		Subtype:      "Denim Jacket",
		PrimaryColor: "Dark Blue",
		Patterns:     "Distressed",
		Season:       "Autumn/Winter",
		Formality:    4,
		SearchTags:   []string{"jacket", "denim", "informal"},
		Emoji:        "🧥",
	},
	{
		ID:           "4",
		Type:         "Footwear",
		Subtype:      "White Sneakers",
		PrimaryColor: "White",
		Patterns:     "Solid",
		Season:       "All year",
		Formality:    3,
		SearchTags:   []string{"sneakers", "white", "comfortable"},
		Emoji:        "👟",
	},
	{
		ID:           "5",
		Type:         "Top",
		Subtype:      "T-Shirt",
		PrimaryColor: "Black",
		Patterns:     "Graphic Print",
		Season:       "Summer",
		Formality:    2,
		SearchTags:   []string{"t-shirt", "black", "streetwear"},
		Emoji:        "👕",
	},
}

// DemoCatalog returns a fresh copy of the demo wardrobe.
func DemoCatalog() []ClothingItem {
	return CloneItems(demoCatalog)
}
