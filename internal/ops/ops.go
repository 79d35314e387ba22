package ops

import (
	"context"
	"iter"

	"github.com/hvariant/shreddit2/internal/reddit"
)

// History reads the authenticated user's history streams, newest first.
// *reddit.Client implements it.
type History interface {
	Comments(ctx context.Context, user string) iter.Seq2[reddit.Comment, error]
	Submissions(ctx context.Context, user string) iter.Seq2[reddit.Submission, error]
	Upvoted(ctx context.Context, user string) iter.Seq2[reddit.Submission, error]
	Saved(ctx context.Context, user string) iter.Seq2[reddit.Item, error]
}

// Eraser is a History that can also edit and delete the user's things.
type Eraser interface {
	History
	EditComment(ctx context.Context, fullname, text string) error
	Delete(ctx context.Context, fullname string) error
}

// Ledger records what a shred run deleted. *db.Ledger implements it.
type Ledger interface {
	Start(username string) (string, error)
	Record(runID, fullname, kind, permalink string, createdUTC float64) error
	Finish(runID string, comments, submissions int, runErr error) error
}

// Category is one history stream and its archive directory name.
type Category string

const (
	CategorySubmissions Category = "submissions"
	CategoryComments    Category = "comments"
	CategoryUpvoted     Category = "upvoted"
	CategorySaved       Category = "saved"
)

// Categories lists every category in archive order.
var Categories = []Category{
	CategoryComments,
	CategorySubmissions,
	CategoryUpvoted,
	CategorySaved,
}
