package models

// Candidate is one nearest-neighbor retrieval result: a book not on any of the
// user's shelves, with its similarity to the taste vector in [-1, 1].
type Candidate struct {
	BookID      string  `json:"bookId"`
	Title       string  `json:"title"`
	Author      *string `json:"author"`
	Genre       *string `json:"genre"`
	Description *string `json:"description"`
	CoverURL    *string `json:"coverUrl"`
	Similarity  float64 `json:"similarity"`
}

// Book returns the candidate's display shape.
func (c Candidate) Book() Book {
	return Book{
		BookID:      c.BookID,
		Title:       c.Title,
		Author:      c.Author,
		Genre:       c.Genre,
		Description: c.Description,
		CoverURL:    c.CoverURL,
	}
}

// Anchor is a positively-rated book (rating >= 3) with a known embedding, used
// as a clustering reference point.
type Anchor struct {
	BookID    string    `json:"bookId"`
	Title     string    `json:"title"`
	Author    *string   `json:"author"`
	Rating    float64   `json:"rating"`
	Embedding []float32 `json:"-"`
}

// Cluster groups the candidates closest to one anchor, with a derived theme label.
type Cluster struct {
	Anchor     Anchor      `json:"anchor"`
	Candidates []Candidate `json:"candidates"`
	Theme      string      `json:"theme"`
}

// SourceBook identifies the rated book a recommendation row was derived from.
type SourceBook struct {
	Title  string  `json:"title"`
	Author *string `json:"author"`
}

// RecommendationRow is one row of the recommendation response: a reason heading
// and up to six books.
type RecommendationRow struct {
	Reason     string      `json:"reason"`
	SourceBook *SourceBook `json:"sourceBook"`
	Books      []Book      `json:"books"`
}
