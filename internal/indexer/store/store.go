// Package store owns the document and article tables of an index: dense
// document ids mapped to their source path and articles, and dense article
// ids mapped to their parent document, ordinal and cached display fields.
package store

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/postings"
)

// Document is one indexed source unit.
type Document struct {
	ID         int
	Path       string
	ArticleIDs []int
}

// Article is one indexed news item. Ordinal is its position inside the
// source document.
type Article struct {
	ID         int
	DocumentID int
	Ordinal    int
	ingestion.Article
}

// Store holds documents and articles in id order. Ids are assigned densely
// from zero in the order items are added.
type Store struct {
	documents []Document
	articles  []Article
}

func New() *Store {
	return &Store{}
}

// AddDocument registers a document and returns its id.
func (s *Store) AddDocument(path string) int {
	id := len(s.documents)
	s.documents = append(s.documents, Document{ID: id, Path: path})
	return id
}

// AddArticle registers an article of docID found at ordinal and returns its
// id.
func (s *Store) AddArticle(docID, ordinal int, fields ingestion.Article) (int, error) {
	if docID < 0 || docID >= len(s.documents) {
		return 0, fmt.Errorf("unknown document %d", docID)
	}
	id := len(s.articles)
	s.articles = append(s.articles, Article{
		ID:         id,
		DocumentID: docID,
		Ordinal:    ordinal,
		Article:    fields,
	})
	doc := &s.documents[docID]
	doc.ArticleIDs = append(doc.ArticleIDs, id)
	return id, nil
}

// Article returns the article with the given id.
func (s *Store) Article(id int) (Article, bool) {
	if id < 0 || id >= len(s.articles) {
		return Article{}, false
	}
	return s.articles[id], true
}

// Document returns the document with the given id.
func (s *Store) Document(id int) (Document, bool) {
	if id < 0 || id >= len(s.documents) {
		return Document{}, false
	}
	return s.documents[id], true
}

// Universe returns every article id in ascending order.
func (s *Store) Universe() postings.List {
	ids := make(postings.List, len(s.articles))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func (s *Store) DocumentCount() int {
	return len(s.documents)
}

func (s *Store) ArticleCount() int {
	return len(s.articles)
}
