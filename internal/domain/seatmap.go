package domain

import "iter"

// UnusableSeat marks a position in a seat row that cannot be sold
// (stairs, gaps, broken seats). It is skipped during expansion but still
// counts toward seat numbering.
const UnusableSeat = 'X'

type SeatMap []SeatBlock

type SeatBlock struct {
	Name string    `json:"name"`
	Rows []SeatRow `json:"rows"`
}

type SeatRow struct {
	Name  string `json:"name"`
	Seats string `json:"seats"`
}

type Seat struct {
	Block  string `json:"block"`
	Row    string `json:"row"`
	Number int    `json:"number"`
}

// Seats yields every sellable seat in canonical order: blocks in map order,
// rows in block order, positions left to right. Seat numbers are 1-based raw
// positions within the row string, so a row with unusable positions produces
// non-contiguous seat numbers. The sequence is restartable.
func (m SeatMap) Seats() iter.Seq[Seat] {
	return func(yield func(Seat) bool) {
		for _, block := range m {
			for _, row := range block.Rows {
				for i := 0; i < len(row.Seats); i++ {
					if row.Seats[i] == UnusableSeat {
						continue
					}

					seat := Seat{
						Block:  block.Name,
						Row:    row.Name,
						Number: i + 1,
					}

					if !yield(seat) {
						return
					}
				}
			}
		}
	}
}

// SeatCount reports the number of sellable seats in the map.
func (m SeatMap) SeatCount() int {
	count := 0
	for range m.Seats() {
		count++
	}

	return count
}
