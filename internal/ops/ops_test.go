package ops

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/hvariant/shreddit2/internal/reddit"
)

// fakeAccount is an in-memory Eraser. Streams are re-read on every call,
// so deletes are visible to later iterations.
type fakeAccount struct {
	comments    []reddit.Comment
	submissions []reddit.Submission
	upvoted     []reddit.Submission
	saved       []reddit.Item

	// streamErr, if set, is yielded by the named stream after its items.
	streamErr map[string]error

	// failOn makes EditComment/Delete fail for the given fullname.
	failOn map[string]error

	calls []string
	users []string
}

func seqOf[T any](items []T, err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, it := range items {
			if !yield(it, nil) {
				return
			}
		}
		if err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

func (f *fakeAccount) Comments(_ context.Context, user string) iter.Seq2[reddit.Comment, error] {
	f.users = append(f.users, user)
	return seqOf(append([]reddit.Comment(nil), f.comments...), f.streamErr["comments"])
}

func (f *fakeAccount) Submissions(_ context.Context, user string) iter.Seq2[reddit.Submission, error] {
	f.users = append(f.users, user)
	return seqOf(append([]reddit.Submission(nil), f.submissions...), f.streamErr["submissions"])
}

func (f *fakeAccount) Upvoted(_ context.Context, user string) iter.Seq2[reddit.Submission, error] {
	f.users = append(f.users, user)
	return seqOf(f.upvoted, f.streamErr["upvoted"])
}

func (f *fakeAccount) Saved(_ context.Context, user string) iter.Seq2[reddit.Item, error] {
	f.users = append(f.users, user)
	return seqOf(f.saved, f.streamErr["saved"])
}

func (f *fakeAccount) EditComment(_ context.Context, fullname, text string) error {
	f.calls = append(f.calls, fmt.Sprintf("edit %s %q", fullname, text))
	if err := f.failOn["edit "+fullname]; err != nil {
		return err
	}
	for i := range f.comments {
		if f.comments[i].Fullname() == fullname {
			f.comments[i].Body = text
		}
	}
	return nil
}

func (f *fakeAccount) Delete(_ context.Context, fullname string) error {
	f.calls = append(f.calls, "delete "+fullname)
	if err := f.failOn["delete "+fullname]; err != nil {
		return err
	}
	return nil
}

// fakeLedger records calls in memory.
type fakeLedger struct {
	started  []string
	records  []string
	finished []string
	startErr error
}

func (l *fakeLedger) Start(username string) (string, error) {
	if l.startErr != nil {
		return "", l.startErr
	}
	l.started = append(l.started, username)
	return "RUN1", nil
}

func (l *fakeLedger) Record(runID, fullname, kind, permalink string, createdUTC float64) error {
	l.records = append(l.records, fmt.Sprintf("%s %s %s %s %.0f", runID, fullname, kind, permalink, createdUTC))
	return nil
}

func (l *fakeLedger) Finish(runID string, comments, submissions int, runErr error) error {
	l.finished = append(l.finished, fmt.Sprintf("%s %d %d %v", runID, comments, submissions, runErr))
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newComment(id, body string, created float64) reddit.Comment {
	return reddit.Comment{ID: id, Name: "t1_" + id, Body: body, Permalink: "/r/x/comments/p/_/" + id, CreatedUTC: created}
}

func newSubmission(id, title, selftext string, created float64) reddit.Submission {
	return reddit.Submission{
		ID:         id,
		Name:       "t3_" + id,
		Title:      title,
		URL:        "https://example.com/" + id,
		Permalink:  "/r/x/comments/" + id + "/",
		Selftext:   selftext,
		CreatedUTC: created,
	}
}
