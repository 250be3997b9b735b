package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/infra/slotcache"
)

type GetOccupiedSlots struct {
	repo  domain.Repository
	cache *slotcache.Cache
	loc   *time.Location
}

func NewGetOccupiedSlots(
	repo domain.Repository,
	cache *slotcache.Cache,
	loc *time.Location,
) *GetOccupiedSlots {
	return &GetOccupiedSlots{
		repo:  repo,
		cache: cache,
		loc:   loc,
	}
}

// Execute returns the occupied HH:MM slot labels for a calendar day,
// serving from the cache when it holds a fresh set.
func (uc *GetOccupiedSlots) Execute(
	ctx context.Context,
	date time.Time,
) ([]string, error) {

	day := date.In(uc.loc)
	dayKey := day.Format("2006-01-02")

	if slots, ok := uc.cache.Get(ctx, dayKey); ok {
		return slots, nil
	}

	dayStart, dayEnd := domain.DayWindow(day)

	appointments, err := uc.repo.ListActiveOnDay(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	slots := domain.OccupiedSlots(appointments, uc.loc)

	uc.cache.Set(ctx, dayKey, slots)

	return slots, nil
}
