package ops

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hvariant/shreddit2/internal/errors"
	"github.com/hvariant/shreddit2/internal/reddit"
)

// Placeholder replaces a comment body before the comment is deleted.
const Placeholder = "."

// ShredInput contains parameters for the Shred operation.
type ShredInput struct {
	Username string
	Ledger   Ledger // optional
}

// ShredOutput contains the result of the Shred operation.
type ShredOutput struct {
	RunID              string `json:"run_id,omitempty"`
	CommentsDeleted    int    `json:"comments_deleted"`
	SubmissionsDeleted int    `json:"submissions_deleted"`
}

// Shred blanks then deletes every comment, then deletes every submission,
// in stream order. The first failure stops the run and is returned along with
// the counts reached so far.
func Shred(ctx context.Context, logger *slog.Logger, eraser Eraser, input ShredInput) (out *ShredOutput, err error) {
	if input.Username == "" {
		return nil, errors.NewInvalidRequest("username is required")
	}
	user := input.Username
	out = &ShredOutput{}

	if input.Ledger != nil {
		out.RunID, err = input.Ledger.Start(user)
		if err != nil {
			return nil, fmt.Errorf("start ledger run: %w", err)
		}
		defer func() {
			if ferr := input.Ledger.Finish(out.RunID, out.CommentsDeleted, out.SubmissionsDeleted, err); ferr != nil {
				logger.Warn("failed to close ledger run", "run_id", out.RunID, "error", ferr)
			}
		}()
	}

	record := func(item reddit.Item, permalink string, created float64) error {
		logger.Debug("deleted", "fullname", item.Fullname(), "permalink", permalink)
		if input.Ledger == nil {
			return nil
		}
		if err := input.Ledger.Record(out.RunID, item.Fullname(), string(item.Kind()), permalink, created); err != nil {
			return fmt.Errorf("record %s: %w", item.Fullname(), err)
		}
		return nil
	}

	logger.Info("deleting all comments")
	for comment, err := range eraser.Comments(ctx, user) {
		if err != nil {
			return out, err
		}
		if ctx.Err() != nil {
			return out, errors.NewCancelled("shred")
		}
		if err := eraser.EditComment(ctx, comment.Fullname(), Placeholder); err != nil {
			return out, err
		}
		if err := eraser.Delete(ctx, comment.Fullname()); err != nil {
			return out, err
		}
		out.CommentsDeleted++
		if err := record(comment, comment.Permalink, comment.CreatedUTC); err != nil {
			return out, err
		}
	}

	logger.Info("deleting all submissions")
	for submission, err := range eraser.Submissions(ctx, user) {
		if err != nil {
			return out, err
		}
		if ctx.Err() != nil {
			return out, errors.NewCancelled("shred")
		}
		if err := eraser.Delete(ctx, submission.Fullname()); err != nil {
			return out, err
		}
		out.SubmissionsDeleted++
		if err := record(submission, submission.Permalink, submission.CreatedUTC); err != nil {
			return out, err
		}
	}

	logger.Info("shred complete", "comments", out.CommentsDeleted, "submissions", out.SubmissionsDeleted)
	return out, nil
}

var _ Eraser = (*reddit.Client)(nil)
