package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/pkg/errors"
)

// timestampLayout matches the millisecond precision ISO form browsers emit.
const timestampLayout = "2006-01-02T15:04:05.000Z"

type MessageRequest struct {
	Content           string             `json:"content"`
	SessionID         string             `json:"session_id"`
	ConversationState conversation.State `json:"conversation_state"`
	Timestamp         string             `json:"timestamp"`
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

// SendMessage posts one user turn together with the state label last
// received from the server.
func (c *Client) SendMessage(ctx context.Context, content string, state conversation.State) (*conversation.Envelope, error) {
	req := MessageRequest{
		Content:           content,
		SessionID:         c.sessionID,
		ConversationState: state,
		Timestamp:         c.now().UTC().Format(timestampLayout),
	}
	ret := &conversation.Envelope{}
	if err := c.Do(ctx, http.MethodPost, "/chat/message", req, nil, ret); err != nil {
		return nil, errors.Wrap(err, "send message")
	}
	return ret, nil
}

// ResetConversation asks the server to drop the session. The session id is
// sent both in the body and as a query parameter.
func (c *Client) ResetConversation(ctx context.Context) (*conversation.ResetResult, error) {
	path := "/chat/reset?session_id=" + url.QueryEscape(c.sessionID)
	ret := &conversation.ResetResult{}
	if err := c.Do(ctx, http.MethodPost, path, resetRequest{SessionID: c.sessionID}, nil, ret); err != nil {
		return nil, errors.Wrap(err, "reset conversation")
	}
	return ret, nil
}

func (c *Client) SessionData(ctx context.Context) (*conversation.SessionData, error) {
	ret := &conversation.SessionData{}
	if err := c.Do(ctx, http.MethodGet, "/chat/session/"+url.PathEscape(c.sessionID), nil, nil, ret); err != nil {
		return nil, errors.Wrap(err, "get session data")
	}
	return ret, nil
}

// FormatTimestamp is exposed for tests and transcript records.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
