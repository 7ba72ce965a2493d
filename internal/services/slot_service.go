package services

import (
	"strings"

	"boatbooking/internal/domain"
)

type SlotCatalog interface {
	ForDate(date string) ([]string, error)
	All() (map[string][]string, error)
	Set(date string, times []string) error
}

// SlotService exposes the departure-time catalog. Slots are advisory only;
// bookings are never checked against them.
type SlotService struct {
	Catalog SlotCatalog
}

func (s SlotService) ForDate(date string) ([]string, error) {
	return s.Catalog.ForDate(strings.TrimSpace(date))
}

func (s SlotService) All() (map[string][]string, error) {
	return s.Catalog.All()
}

// Replace overwrites the times for one date. Blank entries are dropped.
func (s SlotService) Replace(date string, times []string) ([]string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, domain.ValidationError{Field: "date", Msg: "date required"}
	}
	clean := make([]string, 0, len(times))
	for _, t := range times {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	if err := s.Catalog.Set(date, clean); err != nil {
		return nil, domain.InternalError{Msg: "could not save slots", Err: err}
	}
	return clean, nil
}
