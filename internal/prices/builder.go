package prices

import (
	"sort"
	"time"

	"tradewind/internal/domain"
	"tradewind/internal/frame"
)

// PanelFromBars builds a Panel with Open and Close fields from daily bars.
// The date index is the sorted union of bar dates (normalized to UTC
// midnight); securities keep the order of the master slice, so downstream
// row ordering follows it. Dates a security did not trade stay NaN.
func PanelFromBars(securities []domain.Security, bars []domain.Bar) (*Panel, error) {
	dateSet := make(map[time.Time]struct{})
	for _, b := range bars {
		dateSet[day(b.Timestamp)] = struct{}{}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rowIdx := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		rowIdx[d] = i
	}

	conIDs := make([]int64, len(securities))
	for i, sec := range securities {
		conIDs[i] = sec.ConID
	}

	open := frame.New(dates, conIDs)
	close_ := frame.New(dates, conIDs)
	for _, b := range bars {
		row, ok := rowIdx[day(b.Timestamp)]
		if !ok {
			continue
		}
		open.Set(b.ConID, row, b.Open)
		close_.Set(b.ConID, row, b.Close)
	}

	return NewPanel(securities, map[string]*frame.Frame{
		FieldOpen:  open,
		FieldClose: close_,
	})
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
