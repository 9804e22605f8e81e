// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// PredictResponse is returned by the classifier endpoint. Scores are
// ordered best-first.
type PredictResponse struct {
	Scores []PredictScore `json:"scores"`
}

// PredictScore is a single classification label.
type PredictScore struct {
	Key string `json:"key"`
}

// Predict runs the sentiment classifier over the given text and
// returns the scored labels, best first. The classifier is advisory:
// callers that cannot reach it fall back to an untagged task rather
// than failing the creation.
func (c *Client) Predict(ctx context.Context, content string) (*PredictResponse, error) {
	query := url.Values{"content": {content}}
	body, err := c.doRequest(ctx, http.MethodGet, "/api/predict/", nil, query)
	if err != nil {
		return nil, fmt.Errorf("board: classifying text: %w", err)
	}

	var response PredictResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("board: parsing classifier response: %w", err)
	}
	return &response, nil
}

// TagFromScores joins the top two classification labels into the tag
// stored on a new task. Fewer than two scores joins what exists; no
// scores produces an empty tag.
func TagFromScores(scores []PredictScore) string {
	switch {
	case len(scores) >= 2:
		return scores[0].Key + "," + scores[1].Key
	case len(scores) == 1:
		return scores[0].Key
	default:
		return ""
	}
}
