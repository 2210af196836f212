package api

import (
	"context"

	"eventdesk/pkg/types"
)

func (c *Client) ListSupportTickets(ctx context.Context, userID int64) ([]*types.SupportTicket, error) {
	var resp struct {
		Envelope
		Tickets []*types.SupportTicket `json:"tickets"`
	}
	if err := c.get(ctx, pathGetSupportTickets, userQuery(userID), &resp); err != nil {
		return nil, err
	}
	if err := requireSuccess(resp.Envelope, "Failed to fetch tickets"); err != nil {
		return nil, err
	}
	return resp.Tickets, nil
}

func (c *Client) SubmitSupportTicket(ctx context.Context, in *types.SupportTicketInput) error {
	var resp Envelope
	if err := c.post(ctx, pathSubmitSupport, in, &resp); err != nil {
		return err
	}
	return requireSuccess(resp, "Failed to submit issue")
}

func (c *Client) TokenMetrics(ctx context.Context, userID int64) (*types.TokenMetrics, error) {
	var resp struct {
		Envelope
		Metrics *types.TokenMetrics `json:"metrics"`
	}
	if err := c.get(ctx, pathGetTokenMetrics, userQuery(userID), &resp); err != nil {
		return nil, err
	}
	if err := requireSuccess(resp.Envelope, "Failed to fetch token metrics"); err != nil {
		return nil, err
	}
	if resp.Metrics == nil {
		return &types.TokenMetrics{}, nil
	}
	return resp.Metrics, nil
}

func (c *Client) TokenHistory(ctx context.Context, userID int64) ([]*types.PurchaseRecord, error) {
	var resp struct {
		Envelope
		History []*types.PurchaseRecord `json:"history"`
	}
	if err := c.get(ctx, pathGetTokenHistory, userQuery(userID), &resp); err != nil {
		return nil, err
	}
	if err := requireSuccess(resp.Envelope, "Failed to fetch purchase history"); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// PurchaseTokens records a token purchase and returns the purchase id.
func (c *Client) PurchaseTokens(ctx context.Context, in *types.TokenPurchase) (int64, error) {
	var resp struct {
		Envelope
		PurchaseID int64 `json:"purchase_id"`
	}
	if err := c.post(ctx, pathAddTokens, in, &resp); err != nil {
		return 0, err
	}
	if err := requireSuccess(resp.Envelope, "Purchase failed"); err != nil {
		return 0, err
	}
	return resp.PurchaseID, nil
}

func (c *Client) UpdateUser(ctx context.Context, user *types.User) error {
	var resp Envelope
	if err := c.post(ctx, pathUpdateUser, user, &resp); err != nil {
		return err
	}
	return requireSuccess(resp, "Failed to update profile")
}
