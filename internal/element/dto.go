package element

// ElementDTO is the create/update payload for any catalog kind. All fields
// are optional; absent fields are left untouched on update. Unknown payload
// fields are ignored, by contract.
type ElementDTO struct {
	Name      *string `json:"name"`
	BirthDate *string `json:"birthDate"`
	DeathDate *string `json:"deathDate"`
	ImageURL  *string `json:"imageUrl"`
	WikiURL   *string `json:"wikiUrl"`
}
