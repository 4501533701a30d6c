package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/pkg/errors"
)

type ConfirmRequest struct {
	SessionID   string                   `json:"session_id"`
	BookingData conversation.BookingData `json:"booking_data"`
}

func (c *Client) ConfirmBooking(ctx context.Context, data conversation.BookingData) (*conversation.Confirmation, error) {
	if data == nil {
		data = conversation.BookingData{}
	}
	ret := &conversation.Confirmation{}
	req := ConfirmRequest{SessionID: c.sessionID, BookingData: data}
	if err := c.Do(ctx, http.MethodPost, "/booking/confirm", req, nil, ret); err != nil {
		return nil, errors.Wrap(err, "confirm booking")
	}
	return ret, nil
}

func (c *Client) BookingSummary(ctx context.Context, bookingID string) (*conversation.BookingSummary, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, errors.New("empty booking id")
	}
	ret := &conversation.BookingSummary{}
	if err := c.Do(ctx, http.MethodGet, "/booking/summary/"+url.PathEscape(bookingID), nil, nil, ret); err != nil {
		return nil, errors.Wrapf(err, "get booking summary %s", bookingID)
	}
	return ret, nil
}

// BookingAnalytics returns the analytics document as-is; its shape is owned
// by the server.
func (c *Client) BookingAnalytics(ctx context.Context) (map[string]any, error) {
	ret := map[string]any{}
	if err := c.Do(ctx, http.MethodGet, "/booking/analytics", nil, nil, &ret); err != nil {
		return nil, errors.Wrap(err, "get booking analytics")
	}
	return ret, nil
}

func (c *Client) FormatBookingSummary(ctx context.Context, data conversation.BookingData) (*conversation.FormattedSummary, error) {
	if data == nil {
		data = conversation.BookingData{}
	}
	ret := &conversation.FormattedSummary{}
	if err := c.Do(ctx, http.MethodPost, "/booking/format-summary", data, nil, ret); err != nil {
		return nil, errors.Wrap(err, "format booking summary")
	}
	return ret, nil
}
