package domain

import "time"

// Category groups titles by medium (books, films, music).
type Category struct {
	ID   string
	Name string
	Slug string
}

// Genre tags titles with a style (drama, rock, ...). Structurally identical
// to Category but stored and addressed independently.
type Genre struct {
	ID   string
	Name string
	Slug string
}

// Title is a reviewable work. Rating is the average review score rounded to
// the nearest integer; nil when the title has no reviews yet.
type Title struct {
	ID          string
	Name        string
	Year        int
	Description string
	Category    *Category
	Genres      []Genre
	Rating      *int
}

// Review is a scored opinion on a title. One review per (title, author).
type Review struct {
	ID             string
	TitleID        string
	AuthorID       string
	AuthorUsername string
	Text           string
	Score          int
	PubDate        time.Time
}

// Comment is a reply to a review.
type Comment struct {
	ID             string
	ReviewID       string
	AuthorID       string
	AuthorUsername string
	Text           string
	PubDate        time.Time
}
