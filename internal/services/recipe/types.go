package recipe

// Recipe is a generated recipe ready for display. ImageURL is always set on
// recipes returned by Generator.
type Recipe struct {
	Name         string   `json:"recipeName"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	ImageURL     string   `json:"imageUrl"`
}

// Draft is a recipe as returned by the text service, before it has an image.
type Draft struct {
	Name         string   `json:"recipeName"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// WithImage completes the draft with its image reference.
func (d Draft) WithImage(imageURL string) Recipe {
	return Recipe{
		Name:         d.Name,
		Description:  d.Description,
		Ingredients:  d.Ingredients,
		Instructions: d.Instructions,
		ImageURL:     imageURL,
	}
}

// Image is raw image output from the image service.
type Image struct {
	Data     []byte
	MIMEType string
}
