package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"net/url"
	"strconv"

	"github.com/hvariant/shreddit2/internal/errors"
)

// PageLimit is the largest page size Reddit serves for listings.
const PageLimit = 100

// thing is a listing child before its data is decoded.
type thing struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

// Comments streams the user's comments, newest first.
func (c *Client) Comments(ctx context.Context, user string) iter.Seq2[Comment, error] {
	return paginate(ctx, c, userPath(user, "comments"), url.Values{"sort": {"new"}}, decodeAs[Comment](KindComment))
}

// Submissions streams the user's submissions, newest first.
func (c *Client) Submissions(ctx context.Context, user string) iter.Seq2[Submission, error] {
	return paginate(ctx, c, userPath(user, "submitted"), url.Values{"sort": {"new"}}, decodeAs[Submission](KindSubmission))
}

// Upvoted streams the submissions the user upvoted.
func (c *Client) Upvoted(ctx context.Context, user string) iter.Seq2[Submission, error] {
	return paginate(ctx, c, userPath(user, "upvoted"), nil, decodeAs[Submission](KindSubmission))
}

// Saved streams the comments and submissions the user saved.
func (c *Client) Saved(ctx context.Context, user string) iter.Seq2[Item, error] {
	return paginate(ctx, c, userPath(user, "saved"), nil, decodeItem)
}

func userPath(user, listing string) string {
	return "/user/" + url.PathEscape(user) + "/" + listing
}

// paginate follows the listing's "after" cursor until it is exhausted.
// The sequence stops after the first error.
func paginate[T any](ctx context.Context, c *Client, path string, base url.Values, decode func(thing) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		after := ""
		for {
			if ctx.Err() != nil {
				yield(zero, errors.NewCancelled("list "+path))
				return
			}

			query := maps.Clone(base)
			if query == nil {
				query = url.Values{}
			}
			query.Set("limit", strconv.Itoa(PageLimit))
			query.Set("raw_json", "1")
			if after != "" {
				query.Set("after", after)
			}

			var page listing
			if err := c.get(ctx, path, query, &page); err != nil {
				yield(zero, fmt.Errorf("list %s: %w", path, err))
				return
			}

			for _, child := range page.Data.Children {
				item, err := decode(child)
				if err != nil {
					yield(zero, fmt.Errorf("list %s: %w", path, err))
					return
				}
				if !yield(item, nil) {
					return
				}
			}

			if page.Data.After == "" || len(page.Data.Children) == 0 {
				return
			}
			after = page.Data.After
		}
	}
}

// decodeAs returns a decoder accepting only things of the given kind.
func decodeAs[T any](kind Kind) func(thing) (T, error) {
	return func(t thing) (T, error) {
		var v T
		if t.Kind != kind {
			return v, fmt.Errorf("unexpected %q in %q listing", t.Kind, kind)
		}
		if err := json.Unmarshal(t.Data, &v); err != nil {
			return v, fmt.Errorf("decode %s: %w", kind, err)
		}
		return v, nil
	}
}

// decodeItem decodes a saved thing into its concrete Item type.
func decodeItem(t thing) (Item, error) {
	switch t.Kind {
	case KindComment:
		c, err := decodeAs[Comment](KindComment)(t)
		if err != nil {
			return nil, err
		}
		return c, nil
	case KindSubmission:
		s, err := decodeAs[Submission](KindSubmission)(t)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unexpected kind %q in saved listing", t.Kind)
	}
}
