package domain

// Category groups menu items, e.g. "Burgers" or "Drinks".
type Category struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Customization is an add-on or variation that can be attached to menu items.
type Customization struct {
	Name  string  `yaml:"name" json:"name"`
	Price float64 `yaml:"price" json:"price"`
	Type  string  `yaml:"type" json:"type"`
}

// MenuItem is a dish on the menu. Category and customizations are referenced
// by name and resolved to backend ids while seeding.
type MenuItem struct {
	Name           string   `yaml:"name" json:"name"`
	Description    string   `yaml:"description" json:"description"`
	ImageURL       string   `yaml:"image_url" json:"image_url"`
	Price          float64  `yaml:"price" json:"price"`
	Rating         float64  `yaml:"rating" json:"rating"`
	Calories       int      `yaml:"calories" json:"calories"`
	Protein        int      `yaml:"protein" json:"protein"`
	CategoryName   string   `yaml:"category_name" json:"category_name"`
	Customizations []string `yaml:"customizations" json:"customizations"`
}

// MenuCustomization links one menu document to one customization document.
type MenuCustomization struct {
	MenuID          string `json:"menu"`
	CustomizationID string `json:"customizations"`
}

// Fixture is the full set of demo data written by a seeding run.
type Fixture struct {
	Categories     []Category      `yaml:"categories"`
	Customizations []Customization `yaml:"customizations"`
	Menu           []MenuItem      `yaml:"menu"`
}
