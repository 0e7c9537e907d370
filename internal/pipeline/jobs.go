package pipeline

import (
	"github.com/cinetick/ticketing/internal/domain"
	"github.com/shopspring/decimal"
)

// JobPersistShowtimes is the durable unit of work the scheduler enqueues for
// every batch. It carries only the accepted candidates; conflicts were already
// reported synchronously.
const JobPersistShowtimes = "showtimes.persist"

type PersistShowtimesJob struct {
	BatchID   string                     `json:"batchId"`
	MovieID   int                        `json:"movieId"`
	BasePrice decimal.Decimal            `json:"basePrice"`
	Accepted  []domain.ScheduleCandidate `json:"accepted"`
}
