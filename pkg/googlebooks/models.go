package googlebooks

// Book is one catalog search result with display metadata.
type Book struct {
	BookID        string  `json:"bookId"`
	Title         string  `json:"title"`
	Author        *string `json:"author"`
	Genre         *string `json:"genre"`
	Description   *string `json:"description"`
	CoverURL      *string `json:"coverUrl"`
	PageCount     *int    `json:"pageCount"`
	PublishedDate *string `json:"publishedDate"`
	ISBN          *string `json:"isbn"`
}

// volume mirrors the Google Books API volume resource (fields we use).
type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title               string   `json:"title"`
		Authors             []string `json:"authors"`
		Description         string   `json:"description"`
		PageCount           int      `json:"pageCount"`
		PublishedDate       string   `json:"publishedDate"`
		Categories          []string `json:"categories"`
		ImageLinks          struct {
			Thumbnail      string `json:"thumbnail"`
			SmallThumbnail string `json:"smallThumbnail"`
		} `json:"imageLinks"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
	} `json:"volumeInfo"`
}

// searchResponse mirrors the Google Books volumes search response.
type searchResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}
