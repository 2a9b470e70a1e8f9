package models

type Club struct {
	ID         int     `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	Game       string  `json:"game" db:"game"`
	StarRating float64 `json:"star_rating" db:"star_rating"`
	CrestKey   *string `json:"-" db:"crest_key"`
	CrestURL   *string `json:"crest_url,omitempty" db:"-"`
}
