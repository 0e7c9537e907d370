package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cinetick/ticketing/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *TicketingSuite) TestPurchaseLifecycle() {
	start := time.Date(2030, 4, 5, 20, 0, 0, 0, time.UTC)

	res, body := s.doJSON(http.MethodPost, "/showtimes", map[string]any{
		"movieId":         s.app.MovieID,
		"theaterIds":      []int{s.app.TheaterID},
		"startTimes":      []time.Time{start},
		"durationMinutes": 120,
		"basePrice":       "15.00",
	})
	require.Equal(s.T(), http.StatusAccepted, res.StatusCode, string(body))

	var receipt api.CreateShowtimesResponse
	require.NoError(s.T(), json.Unmarshal(body, &receipt))

	var tickets api.TicketListResponse
	ok := eventually(s.T(), 20*time.Second, func() bool {
		res, body := s.doJSON(http.MethodGet, "/tickets?batchId="+receipt.BatchId, nil)
		if res.StatusCode != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(body, &tickets); err != nil {
			return false
		}
		return len(tickets.Tickets) == 3
	})
	require.True(s.T(), ok, "tickets were not materialized in time")

	s.app.Mailer.Reset()
	chargesBefore := len(s.app.Provider.Charges())

	ticket := tickets.Tickets[0]

	res, body = s.doJSON(http.MethodPost, "/purchases", api.CreatePurchaseRequest{
		CustomerId: s.app.CustomerID,
		TicketIds:  []int{ticket.ID},
	})
	require.Equal(s.T(), http.StatusCreated, res.StatusCode, string(body))

	var paymentResp api.PaymentResponse
	require.NoError(s.T(), json.Unmarshal(body, &paymentResp))
	assert.Equal(s.T(), s.app.CustomerID, paymentResp.CustomerId)
	assert.Equal(s.T(), "completed", paymentResp.Status)
	assert.Equal(s.T(), []int{ticket.ID}, paymentResp.TicketIds)
	assert.True(s.T(), paymentResp.Amount.Equal(decimalFromString(s.T(), "15.00")))
	assert.NotEmpty(s.T(), paymentResp.ProviderRef)

	require.Len(s.T(), s.app.Provider.Charges(), chargesBefore+1)
	assert.Empty(s.T(), s.app.Provider.Refunded())

	// The receipt email goes out in the background after the response.
	ok = eventually(s.T(), 10*time.Second, func() bool {
		return len(s.app.Mailer.SentEmails()) == 1
	})
	require.True(s.T(), ok, "receipt email was not sent in time")
	assert.Equal(s.T(), "ada@example.com", s.app.Mailer.SentEmails()[0].Recipient)

	// A second attempt on the same ticket must fail without another charge.
	res, body = s.doJSON(http.MethodPost, "/purchases", api.CreatePurchaseRequest{
		CustomerId: s.app.CustomerID,
		TicketIds:  []int{ticket.ID},
	})
	require.Equal(s.T(), http.StatusConflict, res.StatusCode, string(body))
	assert.Len(s.T(), s.app.Provider.Charges(), chargesBefore+1)

	salesURL := fmt.Sprintf("/showtimes/sales?ids=%d", ticket.ShowtimeID)
	res, body = s.doJSON(http.MethodGet, salesURL, nil)
	require.Equal(s.T(), http.StatusOK, res.StatusCode)

	var sales api.ShowtimeSalesResponse
	require.NoError(s.T(), json.Unmarshal(body, &sales))
	require.Len(s.T(), sales.Sales, 1)
	assert.Equal(s.T(), 3, sales.Sales[0].Total)
	assert.Equal(s.T(), 1, sales.Sales[0].Sold)
	assert.Equal(s.T(), 2, sales.Sales[0].Available)
}
