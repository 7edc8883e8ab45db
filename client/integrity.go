package client

import (
	"context"
	"net/url"
	"strconv"
)

// IntegrityService handles chain verification and export.
type IntegrityService struct {
	c *Client
}

// Verify runs a chain verification. A nil opts (or zero FromSequence)
// walks the whole chain from genesis.
func (s *IntegrityService) Verify(ctx context.Context, opts *VerifyOptions) (*VerificationReport, error) {
	params := url.Values{}
	if opts != nil && opts.FromSequence > 0 {
		params.Set("from_sequence", strconv.FormatUint(opts.FromSequence, 10))
		params.Set("previous_digest", opts.PreviousDigest)
	}

	var report VerificationReport
	if err := s.c.get(ctx, "/api/v1/verify", params, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Export downloads the full portable export envelope.
func (s *IntegrityService) Export(ctx context.Context) (*Export, error) {
	var export Export
	if err := s.c.get(ctx, "/api/v1/export", nil, &export); err != nil {
		return nil, err
	}
	return &export, nil
}
