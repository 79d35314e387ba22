package reddit

import (
	"math"
	"time"
)

// Kind is Reddit's type prefix for a thing ("t1" comment, "t3" link).
type Kind string

const (
	KindComment    Kind = "t1"
	KindSubmission Kind = "t3"
)

// Item is a comment or a submission. Only Comment and Submission implement it.
type Item interface {
	Kind() Kind
	Fullname() string
	isItem()
}

// Comment is a comment written by the user.
type Comment struct {
	// ID is the base36 id without the kind prefix
	ID string `json:"id"`

	// Name is the fullname, e.g. "t1_abc123"
	Name string `json:"name"`

	// Body is the raw markdown text
	Body string `json:"body"`

	// Permalink is the path of the comment relative to reddit.com
	Permalink string `json:"permalink"`

	// CreatedUTC is seconds since the epoch, possibly fractional
	CreatedUTC float64 `json:"created_utc"`
}

// Submission is a link or self post.
type Submission struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Selftext   string  `json:"selftext"`
	CreatedUTC float64 `json:"created_utc"`
}

// Kind implements Item.
func (Comment) Kind() Kind { return KindComment }

// Fullname implements Item.
func (c Comment) Fullname() string { return fullname(KindComment, c.Name, c.ID) }

func (Comment) isItem() {}

// Kind implements Item.
func (Submission) Kind() Kind { return KindSubmission }

// Fullname implements Item.
func (s Submission) Fullname() string { return fullname(KindSubmission, s.Name, s.ID) }

func (Submission) isItem() {}

// Created returns the creation instant in UTC.
func (c Comment) Created() time.Time { return unixFloat(c.CreatedUTC) }

// Created returns the creation instant in UTC.
func (s Submission) Created() time.Time { return unixFloat(s.CreatedUTC) }

func fullname(kind Kind, name, id string) string {
	if name != "" {
		return name
	}
	return string(kind) + "_" + id
}

// unixFloat converts fractional epoch seconds, rounding to the microsecond.
func unixFloat(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	usec := math.Round(frac * 1e6)
	return time.Unix(int64(whole), int64(usec)*int64(time.Microsecond)).UTC()
}
