package model

// Verse is the resolved content for one delivery. A soft failure keeps Text
// populated with a human-readable explanation and leaves Reference and
// Translation empty.
type Verse struct {
	Text        string `json:"text"`
	Reference   string `json:"reference"`
	Translation string `json:"translation"`
}

// Failed reports whether this verse carries a fetch-failure explanation
// instead of scripture content.
func (v Verse) Failed() bool {
	return v.Reference == "" && v.Translation == ""
}

// ChapterVerse is one verse row inside a browsed chapter.
type ChapterVerse struct {
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

// Chapter is the read-only browsing result for a whole chapter.
type Chapter struct {
	Text        string         `json:"text"`
	BookName    string         `json:"book_name"`
	Chapter     int            `json:"chapter"`
	Translation string         `json:"translation"`
	Verses      []ChapterVerse `json:"verses"`
}

// Translation is a catalog entry for a scripture edition.
type Translation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Book is a catalog entry with its chapter count.
type Book struct {
	Name     string `json:"name"`
	Chapters int    `json:"chapters"`
}
