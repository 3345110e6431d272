package service

import (
	"context"
	"errors"
	"time"

	"github.com/festpass/ticketing/internal/model"
	"github.com/festpass/ticketing/internal/monitoring"
	"github.com/festpass/ticketing/internal/queue"
	"github.com/festpass/ticketing/internal/repository"
)

// StatusUpdater is the capability the mass-update handler consumes.
type StatusUpdater interface {
	UpdateEventStatus(ctx context.Context, requestorID, eventID, newStatus string) (int, error)
}

// StatusService transitions every wristband and unit of an event to a new
// lifecycle status, guarded by company association and by the sold-unit
// safety gate on withdrawals.
type StatusService struct {
	catalog    CatalogStore
	wristbands WristbandStore
	publisher  Publisher
	now        func() time.Time
}

// NewStatusService wires a StatusService; publisher may be nil.
func NewStatusService(catalog CatalogStore, wristbands WristbandStore, publisher Publisher) *StatusService {
	if catalog == nil || wristbands == nil {
		panic("nil dependency passed to NewStatusService")
	}
	return &StatusService{
		catalog:    catalog,
		wristbands: wristbands,
		publisher:  publisher,
		now:        time.Now,
	}
}

// UpdateEventStatus applies the mass update. The requestor must hold a
// role with the event's company (repository.ErrForbidden otherwise). When
// the target status is a withdrawal, the whole operation is refused with
// ErrSoldUnitsPresent if any unit of the event is already assigned to a
// buyer; the store evaluates that gate inside the update transaction, so
// nothing is changed in that case even under concurrent settlements. On
// pass, every wristband and every unit of the event reaches the new
// status before the call returns. The number of affected wristbands is
// returned.
func (s *StatusService) UpdateEventStatus(ctx context.Context, requestorID, eventID, newStatus string) (int, error) {
	if requestorID == "" || eventID == "" {
		return 0, ErrInvalidRequest
	}
	if !model.ValidWristbandStatus(newStatus) {
		return 0, ErrInvalidStatus
	}

	ev, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	ok, err := s.catalog.UserHasCompanyRole(ctx, requestorID, ev.CompanyID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, repository.ErrForbidden
	}

	count, err := s.wristbands.UpdateStatusByEvent(ctx, eventID, ev.CompanyID, newStatus, model.WithdrawalStatus(newStatus))
	if err != nil {
		if errors.Is(err, repository.ErrUnitsAssigned) {
			return 0, ErrSoldUnitsPresent
		}
		return 0, err
	}
	monitoring.MassStatusUpdatesTotal.WithLabelValues(newStatus).Inc()

	if s.publisher != nil && count > 0 {
		_ = s.publisher.PublishStatusUpdated(ctx, queue.WristbandStatusUpdatedEvent{
			EventID:    eventID,
			CompanyID:  ev.CompanyID,
			NewStatus:  newStatus,
			Wristbands: count,
			UpdatedAt:  s.now().UTC().Format(time.RFC3339),
		})
	}
	return count, nil
}
