package domain

type Film struct {
	ID          ID     `json:"id,omitempty"`
	Title       string `json:"title"`
	Synopsis    string `json:"synopsis,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Director    string `json:"director,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	PosterURL   string `json:"posterUrl,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	SessionIDs  []ID   `json:"sessionIds,omitempty"`
}
