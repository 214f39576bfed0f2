package salon

import (
	"fmt"
	"sort"
)

// Business window: one bookable slot per hour, first at 09:00, last at 16:00.
const (
	FirstSlotHour = 9
	LastSlotHour  = 16
)

type Availability struct {
	Date           string   `json:"date"`
	StylistName    string   `json:"stylist_name"`
	BookedSlots    []string `json:"booked_slots"`
	AvailableSlots []string `json:"available_slots"`
}

// Slots returns the fixed daily slot universe in TimeLayout, ascending.
func Slots() []string {
	slots := make([]string, 0, LastSlotHour-FirstSlotHour+1)
	for h := FirstSlotHour; h <= LastSlotHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00:00", h))
	}
	return slots
}

// ComputeAvailability splits the slot universe into booked and free start
// times. A booking only occupies its own start slot regardless of duration.
func ComputeAvailability(date, stylist string, scheduled []Reservation) Availability {
	taken := make(map[string]struct{}, len(scheduled))
	booked := make([]string, 0, len(scheduled))
	for _, r := range scheduled {
		if _, ok := taken[r.Time]; ok {
			continue
		}
		taken[r.Time] = struct{}{}
		booked = append(booked, r.Time)
	}
	sort.Strings(booked)

	available := make([]string, 0, LastSlotHour-FirstSlotHour+1)
	for _, slot := range Slots() {
		if _, ok := taken[slot]; !ok {
			available = append(available, slot)
		}
	}

	return Availability{
		Date:           date,
		StylistName:    stylist,
		BookedSlots:    booked,
		AvailableSlots: available,
	}
}
