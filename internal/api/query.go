package api

import (
	"context"
	"fmt"
)

// Ask submits a question to the backend and returns the grounded answer.
//
// Parameters:
//   - ctx: Context for the request
//   - userID: Authenticated user issuing the query
//   - query: The question text
//
// Returns:
//   - Answer: Generated answer plus the document sources it was grounded on
//   - error: If the request fails
//
// The call blocks until the backend has finished retrieval and generation;
// callers run it off the UI loop and render a progress indicator meanwhile.
func (c *Client) Ask(ctx context.Context, userID, query string) (Answer, error) {
	req := struct {
		Query  string `json:"query"`
		UserID string `json:"user_id"`
	}{Query: query, UserID: userID}

	var answer Answer
	if err := c.makeRequest(ctx, "POST", "/query", req, &answer); err != nil {
		return Answer{}, fmt.Errorf("query: %w", err)
	}

	c.logger.Debug("query answered",
		"user_id", userID,
		"answer_len", len(answer.Answer),
		"sources", len(answer.Sources))
	return answer, nil
}
