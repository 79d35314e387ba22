package archive

import (
	"fmt"
	"time"

	"github.com/hvariant/shreddit2/internal/reddit"
)

// SummaryChars is the number of characters kept by Summarise.
const SummaryChars = 50

// Ellipsis is appended to text cut by Summarise.
const Ellipsis = "..."

// CommentRecord is the full archive shape of a comment.
type CommentRecord struct {
	Body       string `json:"body"`
	Permalink  string `json:"permalink"`
	CreatedUTC string `json:"created_utc"`
}

// SubmissionRecord is the full archive shape of a submission.
// Permalink carries the submission URL (the link target for link posts).
type SubmissionRecord struct {
	Title      string `json:"title"`
	Permalink  string `json:"permalink"`
	CreatedUTC string `json:"created_utc"`
	Selftext   string `json:"selftext"`
}

// SubmissionSummary is a submission with its selftext summarised.
type SubmissionSummary struct {
	Title           string `json:"title"`
	Permalink       string `json:"permalink"`
	CreatedUTC      string `json:"created_utc"`
	SelftextSummary string `json:"selftext_summary"`
}

// FormatComment keeps the comment body verbatim.
func FormatComment(c reddit.Comment) CommentRecord {
	return CommentRecord{
		Body:       c.Body,
		Permalink:  c.Permalink,
		CreatedUTC: FormatTime(c.Created()),
	}
}

// FormatSubmission keeps the selftext verbatim.
func FormatSubmission(s reddit.Submission) SubmissionRecord {
	return SubmissionRecord{
		Title:      s.Title,
		Permalink:  s.URL,
		CreatedUTC: FormatTime(s.Created()),
		Selftext:   s.Selftext,
	}
}

// FormatCommentSummary is FormatComment with the body summarised.
func FormatCommentSummary(c reddit.Comment) CommentRecord {
	r := FormatComment(c)
	r.Body = Summarise(r.Body)
	return r
}

// FormatSubmissionSummary is FormatSubmission with the selftext summarised.
func FormatSubmissionSummary(s reddit.Submission) SubmissionSummary {
	return SubmissionSummary{
		Title:           s.Title,
		Permalink:       s.URL,
		CreatedUTC:      FormatTime(s.Created()),
		SelftextSummary: Summarise(s.Selftext),
	}
}

// FormatSaved summarises a saved item according to its kind.
func FormatSaved(item reddit.Item) (any, error) {
	switch v := item.(type) {
	case reddit.Comment:
		return FormatCommentSummary(v), nil
	case reddit.Submission:
		return FormatSubmissionSummary(v), nil
	default:
		return nil, fmt.Errorf("unsupported saved item %T", item)
	}
}

// Summarise returns text unchanged if it has at most SummaryChars characters,
// otherwise its first SummaryChars characters followed by Ellipsis.
func Summarise(text string) string {
	count := 0
	for i := range text {
		if count == SummaryChars {
			return text[:i] + Ellipsis
		}
		count++
	}
	return text
}

// FormatTime renders t in UTC as ISO-8601 with a numeric offset,
// adding microseconds only when t has a fractional second.
func FormatTime(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05-07:00")
	}
	return t.Format("2006-01-02T15:04:05.000000-07:00")
}
