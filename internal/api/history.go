package api

import (
	"context"
	"fmt"
	"net/url"
)

// History retrieves the user's past query/answer pairs, in the order the
// backend returns them.
func (c *Client) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	var resp historyResponse
	path := "/history/get?user_id=" + url.QueryEscape(userID)
	if err := c.makeRequest(ctx, "GET", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return resp.History, nil
}
