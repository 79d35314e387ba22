package ops

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/hvariant/shreddit2/internal/archive"
	"github.com/hvariant/shreddit2/internal/errors"
)

// ArchiveInput contains parameters for the Archive operation.
type ArchiveInput struct {
	Username string
	Layout   *Layout
}

// ArchiveFileResult describes one written category file.
type ArchiveFileResult struct {
	Category Category `json:"category"`
	Path     string   `json:"path"`
	Count    int      `json:"count"`
}

// ArchiveOutput contains the result of the Archive operation.
type ArchiveOutput struct {
	Files []ArchiveFileResult `json:"files"`
}

// Archive writes comments, submissions, upvoted and saved items to their
// category files, in that order. The first error stops the run; files already
// written stay on disk.
func Archive(ctx context.Context, logger *slog.Logger, hist History, input ArchiveInput) (*ArchiveOutput, error) {
	if input.Layout == nil {
		return nil, errors.NewInvalidRequest("archive layout is required")
	}
	if input.Username == "" {
		return nil, errors.NewInvalidRequest("username is required")
	}
	user := input.Username

	steps := []struct {
		category Category
		label    string
		save     func(path string) (int, error)
	}{
		{CategoryComments, "comments", func(path string) (int, error) {
			return saveJSON(ctx, path, hist.Comments(ctx, user), plain(archive.FormatComment))
		}},
		{CategorySubmissions, "submissions", func(path string) (int, error) {
			return saveJSON(ctx, path, hist.Submissions(ctx, user), plain(archive.FormatSubmission))
		}},
		{CategoryUpvoted, "upvoted submissions", func(path string) (int, error) {
			return saveJSON(ctx, path, hist.Upvoted(ctx, user), plain(archive.FormatSubmissionSummary))
		}},
		{CategorySaved, "saved posts", func(path string) (int, error) {
			return saveJSON(ctx, path, hist.Saved(ctx, user), archive.FormatSaved)
		}},
	}

	out := &ArchiveOutput{Files: make([]ArchiveFileResult, 0, len(steps))}
	for _, step := range steps {
		path := input.Layout.Path(step.category)
		logger.Info(fmt.Sprintf("saving all %s to %s", step.label, path))

		count, err := step.save(path)
		if err != nil {
			return out, fmt.Errorf("archive %s: %w", step.category, err)
		}
		logger.Debug("archived", "category", step.category, "path", path, "count", count)

		out.Files = append(out.Files, ArchiveFileResult{
			Category: step.category,
			Path:     path,
			Count:    count,
		})
	}

	return out, nil
}

// plain lifts an infallible formatter.
func plain[T, R any](f func(T) R) func(T) (R, error) {
	return func(v T) (R, error) { return f(v), nil }
}

// saveJSON drains seq through format and writes the records as one JSON array.
func saveJSON[T, R any](ctx context.Context, path string, seq iter.Seq2[T, error], format func(T) (R, error)) (int, error) {
	records := []R{}
	for v, err := range seq {
		if err != nil {
			return 0, err
		}
		if ctx.Err() != nil {
			return 0, errors.NewCancelled("archive")
		}
		r, err := format(v)
		if err != nil {
			return 0, err
		}
		records = append(records, r)
	}

	if err := archive.WriteJSON(path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
