package forge

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

const defaultPageSize = 100

// Paginator walks a collection endpoint page by page in scanner style:
//
//	p := client.Paginate(req)
//	for p.Next(ctx) {
//	    batch := p.Batch()
//	}
//	if err := p.Err(); err != nil { ... }
//
// Pages are fetched strictly in order and a paginator is forward-only;
// restarting requires a fresh Paginate call. Each fetch goes through
// the full client retry loop independently, so a failure on page n
// never invalidates batches already handed out.
type Paginator struct {
	client   *Client
	req      Request
	pageSize int

	page     int
	nextPath string
	batch    []json.RawMessage
	done     bool
	err      error
}

// Paginate prepares a traversal of the given endpoint. The request
// query is copied; page and per_page parameters are managed internally.
func (c *Client) Paginate(req Request, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	query := url.Values{}
	for key, values := range req.Query {
		query[key] = values
	}
	req.Query = query

	return &Paginator{
		client:   c,
		req:      req,
		pageSize: pageSize,
		page:     1,
	}
}

// Next fetches the following page. It returns false once the
// collection is exhausted or a fetch failed; Err distinguishes the two.
//
// An empty page body is the sole termination signal. Some endpoints
// omit the Link header inconsistently, so a present "next" link is
// ignored when the body is empty.
func (p *Paginator) Next(ctx context.Context) bool {
	if p == nil || p.done || p.err != nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		p.err = err
		return false
	}

	req := p.req
	if p.nextPath != "" {
		req = Request{Method: p.req.Method, Path: p.nextPath, Accept: p.req.Accept}
	} else {
		req.Query.Set("page", strconv.Itoa(p.page))
		req.Query.Set("per_page", strconv.Itoa(p.pageSize))
	}

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		p.err = err
		return false
	}

	var batch []json.RawMessage
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &batch); err != nil {
			p.err = err
			return false
		}
	}

	if len(batch) == 0 {
		p.done = true
		return false
	}

	p.batch = batch
	p.page++
	p.nextPath = nextLinkPath(resp.Header.Get("Link"))
	return true
}

// Batch returns the records of the page fetched by the last Next call.
func (p *Paginator) Batch() []json.RawMessage {
	if p == nil {
		return nil
	}
	return p.batch
}

// Err returns the first error encountered, if any.
func (p *Paginator) Err() error {
	if p == nil {
		return nil
	}
	return p.err
}

// All drains a paginated endpoint into a flat record slice. Records
// collected before a failure are discarded here; callers that need
// partial results should drive the Paginator directly.
func (c *Client) All(ctx context.Context, req Request, pageSize int) ([]json.RawMessage, error) {
	var records []json.RawMessage

	p := c.Paginate(req, pageSize)
	for p.Next(ctx) {
		records = append(records, p.Batch()...)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// nextLinkPath extracts the path and query of the rel="next" target
// from an RFC 5988 Link header, or "" when absent.
func nextLinkPath(header string) string {
	for _, part := range strings.Split(header, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}

		target := strings.Trim(strings.TrimSpace(section[0]), "<>")
		isNext := false
		for _, param := range section[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				isNext = true
				break
			}
		}
		if !isNext {
			continue
		}

		parsed, err := url.Parse(target)
		if err != nil {
			return ""
		}
		if parsed.RawQuery != "" {
			return parsed.Path + "?" + parsed.RawQuery
		}
		return parsed.Path
	}
	return ""
}
