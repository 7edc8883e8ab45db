package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// EntryService handles append and query operations.
type EntryService struct {
	c *Client
}

// queryResponse wraps the paginated query response.
type queryResponse struct {
	Data    []Entry `json:"data"`
	HasMore bool    `json:"has_more"`
}

// historyResponse wraps the per-resource and per-actor views.
type historyResponse struct {
	Data []Entry `json:"data"`
}

// Append seals a fully caller-specified entry.
func (s *EntryService) Append(ctx context.Context, req *AppendRequest) (*Entry, error) {
	var entry Entry
	if err := s.c.post(ctx, "/api/v1/entries", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// LogAccess records a read-style action against a resource.
func (s *EntryService) LogAccess(ctx context.Context, req *AppendRequest) (*Entry, error) {
	var entry Entry
	if err := s.c.post(ctx, "/api/v1/entries/access", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// LogModification records a write-style action against a resource.
func (s *EntryService) LogModification(ctx context.Context, req *ModificationRequest) (*Entry, error) {
	var entry Entry
	if err := s.c.post(ctx, "/api/v1/entries/modification", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// LogConsent records a consent grant or revocation.
func (s *EntryService) LogConsent(ctx context.Context, req *ConsentRequest) (*Entry, error) {
	var entry Entry
	if err := s.c.post(ctx, "/api/v1/entries/consent", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Get returns a single entry by chain sequence.
func (s *EntryService) Get(ctx context.Context, sequence uint64) (*Entry, error) {
	var entry Entry
	if err := s.c.get(ctx, "/api/v1/entries/"+strconv.FormatUint(sequence, 10), nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Query returns entries matching the given options plus a has-more flag.
func (s *EntryService) Query(ctx context.Context, opts *QueryOptions) ([]Entry, bool, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Actor != "" {
			params.Set("actor", opts.Actor)
		}
		if opts.ResourceType != "" {
			params.Set("resource_type", opts.ResourceType)
		}
		if opts.ResourceID != "" {
			params.Set("resource_id", opts.ResourceID)
		}
		if opts.Action != "" {
			params.Set("action", opts.Action)
		}
		if opts.Since != nil {
			params.Set("since", opts.Since.Format(time.RFC3339))
		}
		if opts.Until != nil {
			params.Set("until", opts.Until.Format(time.RFC3339))
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			params.Set("offset", strconv.Itoa(opts.Offset))
		}
	}
	var resp queryResponse
	if err := s.c.get(ctx, "/api/v1/entries", params, &resp); err != nil {
		return nil, false, err
	}
	return resp.Data, resp.HasMore, nil
}

// ResourceHistory returns every entry touching one resource, oldest first.
func (s *EntryService) ResourceHistory(ctx context.Context, resourceType, resourceID string) ([]Entry, error) {
	path := "/api/v1/resources/" + url.PathEscape(resourceType) + "/" + url.PathEscape(resourceID) + "/history"
	var resp historyResponse
	if err := s.c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ActorActivity returns every entry recorded for one actor, oldest first.
func (s *EntryService) ActorActivity(ctx context.Context, actor string) ([]Entry, error) {
	path := "/api/v1/actors/" + url.PathEscape(actor) + "/activity"
	var resp historyResponse
	if err := s.c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
