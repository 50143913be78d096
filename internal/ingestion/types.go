// Package ingestion defines the article records consumed by the index build
// and the Kafka event schema used to ship whole source documents.
package ingestion

import "time"

// Article is one news item as it appears in a source file.
type Article struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Keywords string `json:"keywords"`
	Body     string `json:"article"`
	Summary  string `json:"summary"`
}

// Document is one source unit: its path and its articles in file order.
// A nil entry in Articles marks an article that was rejected by validation
// and keeps the ordinals of the remaining articles stable.
type Document struct {
	Path     string
	Articles []*Article
}

// DocumentEvent is the Kafka message payload carrying one source document.
type DocumentEvent struct {
	Path        string    `json:"path"`
	Articles    []Article `json:"articles"`
	PublishedAt time.Time `json:"published_at"`
}

// Field names an indexable article field.
type Field struct {
	Name     string
	Tokenize bool
}

// Fields lists every indexable field. Untokenised fields are indexed as a
// single term.
var Fields = []Field{
	{Name: "title", Tokenize: true},
	{Name: "date", Tokenize: false},
	{Name: "keywords", Tokenize: true},
	{Name: "article", Tokenize: true},
	{Name: "summary", Tokenize: true},
}

// BodyField is the field indexed when multi-field indexing is off.
const BodyField = "article"

// IsField reports whether name is one of Fields.
func IsField(name string) bool {
	_, ok := FieldByName(name)
	return ok
}

// FieldByName looks up a field in Fields.
func FieldByName(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Value returns the text of the named field.
func (a *Article) Value(field string) string {
	switch field {
	case "title":
		return a.Title
	case "date":
		return a.Date
	case "keywords":
		return a.Keywords
	case "article":
		return a.Body
	case "summary":
		return a.Summary
	default:
		return ""
	}
}
