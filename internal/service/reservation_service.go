package service

import (
	"context"
	"plate-rescue/internal/database"
	"plate-rescue/internal/metrics"
	"plate-rescue/internal/model"
	"plate-rescue/internal/queue"
	"plate-rescue/internal/repository"
	apperrors "plate-rescue/pkg/app_errors"
	"plate-rescue/pkg/logger"
	"plate-rescue/pkg/pickupcode"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const publishTimeout = 3 * time.Second

type ReservationService interface {
	// Reserve places a HELD reservation. Inventory is not touched.
	Reserve(ctx context.Context, actor model.Actor, req model.CreateReservationRequest) (*model.Reservation, error)
	// Confirm pays for a HELD reservation. Customers get a pickup code;
	// donors turn the reservation into free stock for needy users.
	Confirm(ctx context.Context, actor model.Actor, reservationID int) (*model.ConfirmResult, error)
	Cancel(ctx context.Context, actor model.Actor, reservationID int) (*model.Reservation, error)
	// Claim takes qty units out of a DONATED reservation, splitting it when qty is smaller.
	Claim(ctx context.Context, actor model.Actor, reservationID int, qty int) (*model.Reservation, error)
	// ClaimBatch claims every item or none of them.
	ClaimBatch(ctx context.Context, actor model.Actor, items []model.ClaimItem) ([]*model.Reservation, error)
	PickUp(ctx context.Context, actor model.Actor, reservationID int, code string) (*model.Reservation, error)

	GetByID(ctx context.Context, actor model.Actor, reservationID int) (*model.Reservation, error)
	ListMine(ctx context.Context, actor model.Actor) ([]*model.Reservation, error)
	ListDonated(ctx context.Context, actor model.Actor) ([]*model.Reservation, error)
	QuotaStatus(ctx context.Context, actor model.Actor) (*model.QuotaStatus, error)
}

type ReservationServiceImpl struct {
	db                    database.TxBeginner
	plateRepository       repository.PlateRepository
	reservationRepository repository.ReservationRepository
	transactionRepository repository.TransactionRepository
	quota                 *ClaimQuotaTracker
	eventQueue            queue.EventQueue
	metrics               *metrics.EngineMetrics
	now                   func() time.Time
	newPickupCode         func() (string, error)
}

type ReservationServiceOption func(*ReservationServiceImpl)

func WithClock(now func() time.Time) ReservationServiceOption {
	return func(s *ReservationServiceImpl) {
		s.now = now
	}
}

func WithPickupCodeGenerator(gen func() (string, error)) ReservationServiceOption {
	return func(s *ReservationServiceImpl) {
		s.newPickupCode = gen
	}
}

// NewReservationService wires the engine. eventQueue and engineMetrics may be nil.
func NewReservationService(
	db database.TxBeginner,
	plateRepository repository.PlateRepository,
	reservationRepository repository.ReservationRepository,
	transactionRepository repository.TransactionRepository,
	quota *ClaimQuotaTracker,
	eventQueue queue.EventQueue,
	engineMetrics *metrics.EngineMetrics,
	opts ...ReservationServiceOption,
) ReservationService {
	s := &ReservationServiceImpl{
		db:                    db,
		plateRepository:       plateRepository,
		reservationRepository: reservationRepository,
		transactionRepository: transactionRepository,
		quota:                 quota,
		eventQueue:            eventQueue,
		metrics:               engineMetrics,
		now:                   time.Now,
		newPickupCode:         pickupcode.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReservationServiceImpl) Reserve(ctx context.Context, actor model.Actor, req model.CreateReservationRequest) (_ *model.Reservation, err error) {
	defer s.observe("reserve", time.Now(), &err)

	if !actor.Is(model.RoleCustomer, model.RoleDonor) {
		return nil, apperrors.ErrRoleNotAllowed
	}
	if req.Quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}

	now := s.now()
	var created *model.Reservation
	err = database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		plate, err := s.plateRepository.FindByID(ctx, req.PlateID)
		if err != nil {
			return err
		}
		if err := checkPlate(plate, req.Quantity, now); err != nil {
			return err
		}

		userID := actor.UserID
		created, err = s.reservationRepository.Create(ctx, tx, &model.Reservation{
			UserID:   &userID,
			PlateID:  plate.ID,
			Quantity: req.Quantity,
			Status:   model.ReservationStatusHeld,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, newEvent(model.EventReserved, created, actor.UserID, created.Quantity, now))
	return created, nil
}

func (s *ReservationServiceImpl) Confirm(ctx context.Context, actor model.Actor, reservationID int) (_ *model.ConfirmResult, err error) {
	defer s.observe("confirm", time.Now(), &err)

	if !actor.Is(model.RoleCustomer, model.RoleDonor) {
		return nil, apperrors.ErrRoleNotAllowed
	}

	now := s.now()
	donating := actor.Is(model.RoleDonor)
	result := &model.ConfirmResult{}
	err = database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		reservation, err := s.lockHeldReservation(ctx, tx, actor, reservationID)
		if err != nil {
			return err
		}

		plate, err := s.plateRepository.FindByIDWithLock(ctx, tx, reservation.PlateID)
		if err != nil {
			return err
		}
		if err := checkPlate(plate, reservation.Quantity, now); err != nil {
			return err
		}
		if err := s.plateRepository.DecrementStock(ctx, tx, plate.ID, reservation.Quantity); err != nil {
			return err
		}

		txType := model.TransactionTypeCustomerPurchase
		if donating {
			txType = model.TransactionTypeDonationPurchase
			reservation, err = s.reservationRepository.MarkDonated(ctx, tx, reservation.ID, actor.UserID, now)
		} else {
			var code string
			code, err = s.newPickupCode()
			if err != nil {
				return err
			}
			reservation, err = s.reservationRepository.MarkConfirmed(ctx, tx, reservation.ID, code, now)
		}
		if err != nil {
			return err
		}

		transaction, err := s.transactionRepository.Create(ctx, tx, &model.Transaction{
			PayerUserID:       actor.UserID,
			PayeeRestaurantID: plate.RestaurantID,
			ReservationID:     reservation.ID,
			Amount:            plate.Amount(reservation.Quantity),
			Type:              txType,
		})
		if err != nil {
			return err
		}

		result.Reservation = reservation
		result.Transaction = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := model.EventConfirmed
	if donating {
		eventType = model.EventDonated
	}
	s.publish(ctx, newEvent(eventType, result.Reservation, actor.UserID, result.Reservation.Quantity, now))
	return result, nil
}

func (s *ReservationServiceImpl) Cancel(ctx context.Context, actor model.Actor, reservationID int) (_ *model.Reservation, err error) {
	defer s.observe("cancel", time.Now(), &err)

	if !actor.Is(model.RoleCustomer, model.RoleDonor) {
		return nil, apperrors.ErrRoleNotAllowed
	}

	var cancelled *model.Reservation
	err = database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		reservation, err := s.lockHeldReservation(ctx, tx, actor, reservationID)
		if err != nil {
			return err
		}

		// HELD never touched inventory, so there is nothing to give back
		cancelled, err = s.reservationRepository.MarkCancelled(ctx, tx, reservation.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, newEvent(model.EventCancelled, cancelled, actor.UserID, cancelled.Quantity, s.now()))
	return cancelled, nil
}

func (s *ReservationServiceImpl) Claim(ctx context.Context, actor model.Actor, reservationID int, qty int) (_ *model.Reservation, err error) {
	defer s.observe("claim", time.Now(), &err)

	claimed, err := s.claim(ctx, actor, []model.ClaimItem{{ReservationID: reservationID, Quantity: qty}})
	if err != nil {
		return nil, err
	}
	return claimed[0], nil
}

func (s *ReservationServiceImpl) ClaimBatch(ctx context.Context, actor model.Actor, items []model.ClaimItem) (_ []*model.Reservation, err error) {
	defer s.observe("claim_batch", time.Now(), &err)

	if len(items) == 0 {
		return nil, apperrors.ErrInvalidInput
	}
	return s.claim(ctx, actor, items)
}

// claim runs every item in one transaction. Lock order is the user row,
// then reservation rows by ascending id.
func (s *ReservationServiceImpl) claim(ctx context.Context, actor model.Actor, items []model.ClaimItem) ([]*model.Reservation, error) {
	if !actor.Is(model.RoleNeedy) {
		return nil, apperrors.ErrRoleNotAllowed
	}

	total := 0
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperrors.ErrInvalidQuantity
		}
		total += item.Quantity
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].ReservationID < items[order[b]].ReservationID
	})

	now := s.now()
	results := make([]*model.Reservation, len(items))
	err := database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := s.quota.CheckAndReserve(ctx, tx, actor.UserID, total, now); err != nil {
			return err
		}

		for _, i := range order {
			claimed, err := s.claimOne(ctx, tx, actor.UserID, items[i], now)
			if err != nil {
				return err
			}
			results[i] = claimed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := make([]*model.ReservationEvent, 0, len(results))
	for _, r := range results {
		events = append(events, newEvent(model.EventClaimed, r, actor.UserID, r.Quantity, now))
	}
	s.publish(ctx, events...)
	return results, nil
}

func (s *ReservationServiceImpl) claimOne(ctx context.Context, tx pgx.Tx, userID int, item model.ClaimItem, now time.Time) (*model.Reservation, error) {
	reservation, err := s.reservationRepository.FindByIDWithLock(ctx, tx, item.ReservationID)
	if err != nil {
		return nil, err
	}
	if !reservation.Status.CanTransitionTo(model.ReservationStatusClaimed) {
		return nil, apperrors.ErrWrongState
	}
	if item.Quantity > reservation.Quantity {
		return nil, apperrors.ErrInsufficientStock
	}

	code, err := s.newPickupCode()
	if err != nil {
		return nil, err
	}

	if item.Quantity == reservation.Quantity {
		return s.reservationRepository.MarkClaimed(ctx, tx, reservation.ID, userID, code, now)
	}

	// split: the donated row keeps its id with the remainder
	if _, err := s.reservationRepository.ReduceDonatedQuantity(ctx, tx, reservation.ID, item.Quantity); err != nil {
		return nil, err
	}

	claimedAt := now.UTC()
	return s.reservationRepository.Create(ctx, tx, &model.Reservation{
		UserID:      &userID,
		DonorID:     reservation.DonorID,
		PlateID:     reservation.PlateID,
		Quantity:    item.Quantity,
		Status:      model.ReservationStatusClaimed,
		PickupCode:  &code,
		ConfirmedAt: &claimedAt,
		ClaimedAt:   &claimedAt,
	})
}

func (s *ReservationServiceImpl) PickUp(ctx context.Context, actor model.Actor, reservationID int, code string) (_ *model.Reservation, err error) {
	defer s.observe("pickup", time.Now(), &err)

	if !actor.Is(model.RoleRestaurant) {
		return nil, apperrors.ErrRoleNotAllowed
	}
	if !pickupcode.Valid(code) {
		return nil, apperrors.ErrInvalidPickupCode
	}

	now := s.now()
	var pickedUp *model.Reservation
	err = database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		reservation, err := s.reservationRepository.FindByIDWithLock(ctx, tx, reservationID)
		if err != nil {
			return err
		}

		plate, err := s.plateRepository.FindByID(ctx, reservation.PlateID)
		if err != nil {
			return err
		}
		if plate.RestaurantID != actor.UserID {
			return apperrors.ErrNotOwner
		}

		if !reservation.Status.CanTransitionTo(model.ReservationStatusPickedUp) || reservation.PickupCode == nil {
			return apperrors.ErrWrongState
		}
		if !pickupcode.Equal(*reservation.PickupCode, code) {
			return apperrors.ErrInvalidPickupCode
		}

		pickedUp, err = s.reservationRepository.MarkPickedUp(ctx, tx, reservation.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, newEvent(model.EventPickedUp, pickedUp, actor.UserID, pickedUp.Quantity, now))
	return pickedUp, nil
}

func (s *ReservationServiceImpl) GetByID(ctx context.Context, actor model.Actor, reservationID int) (*model.Reservation, error) {
	reservation, err := s.reservationRepository.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.Is(model.RoleAdmin),
		reservation.IsOwnedBy(actor.UserID),
		reservation.DonorID != nil && *reservation.DonorID == actor.UserID,
		actor.Is(model.RoleNeedy) && reservation.Status == model.ReservationStatusDonated:
		return reservation, nil
	case actor.Is(model.RoleRestaurant):
		plate, err := s.plateRepository.FindByID(ctx, reservation.PlateID)
		if err != nil {
			return nil, err
		}
		if plate.RestaurantID == actor.UserID {
			return reservation, nil
		}
	}

	return nil, apperrors.ErrNotOwner
}

func (s *ReservationServiceImpl) ListMine(ctx context.Context, actor model.Actor) ([]*model.Reservation, error) {
	return s.reservationRepository.ListByUserID(ctx, actor.UserID)
}

func (s *ReservationServiceImpl) ListDonated(ctx context.Context, actor model.Actor) ([]*model.Reservation, error) {
	if !actor.Is(model.RoleNeedy, model.RoleAdmin) {
		return nil, apperrors.ErrRoleNotAllowed
	}
	return s.reservationRepository.ListDonated(ctx, s.now())
}

func (s *ReservationServiceImpl) QuotaStatus(ctx context.Context, actor model.Actor) (*model.QuotaStatus, error) {
	if !actor.Is(model.RoleNeedy) {
		return nil, apperrors.ErrRoleNotAllowed
	}

	used, err := s.quota.UsedToday(ctx, actor.UserID, s.now())
	if err != nil {
		return nil, err
	}

	return &model.QuotaStatus{
		UserID:    actor.UserID,
		UsedToday: used,
		Limit:     s.quota.Limit(),
		Remaining: max(s.quota.Limit()-used, 0),
	}, nil
}

func (s *ReservationServiceImpl) observe(operation string, started time.Time, err *error) {
	s.metrics.Observe(operation, *err, started)
}

// lockHeldReservation locks a reservation the actor holds and checks it is still HELD.
func (s *ReservationServiceImpl) lockHeldReservation(ctx context.Context, tx pgx.Tx, actor model.Actor, reservationID int) (*model.Reservation, error) {
	reservation, err := s.reservationRepository.FindByIDWithLock(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if !reservation.IsOwnedBy(actor.UserID) {
		return nil, apperrors.ErrNotOwner
	}
	if reservation.Status != model.ReservationStatusHeld {
		return nil, apperrors.ErrWrongState
	}
	return reservation, nil
}

// checkPlate validates a plate for taking qty units at now.
func checkPlate(plate *model.Plate, qty int, now time.Time) error {
	if !plate.IsActive {
		return apperrors.ErrPlateNotFound
	}
	if !plate.InWindow(now) {
		return apperrors.ErrOutsideWindow
	}
	if plate.QuantityAvailable < qty {
		return apperrors.ErrInsufficientStock
	}
	return nil
}

func newEvent(eventType model.ReservationEventType, r *model.Reservation, actorID int, qty int, at time.Time) *model.ReservationEvent {
	return &model.ReservationEvent{
		EventID:       uuid.New().String(),
		Type:          eventType,
		ReservationID: r.ID,
		PlateID:       r.PlateID,
		ActorID:       actorID,
		Quantity:      qty,
		OccurredAt:    at.UTC(),
	}
}

// publish runs after commit. A failure here is logged and never undoes
// the committed state.
func (s *ReservationServiceImpl) publish(ctx context.Context, events ...*model.ReservationEvent) {
	if s.eventQueue == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for _, event := range events {
		if err := s.eventQueue.Publish(pubCtx, event); err != nil {
			s.metrics.IncEvent(string(event.Type), "publish_failed")
			logger.WithComponent("service").Warn("failed to publish reservation event",
				zap.String("event_id", event.EventID),
				zap.String("type", string(event.Type)),
				zap.Int("reservation_id", event.ReservationID),
				zap.Error(err),
			)
			continue
		}
		s.metrics.IncEvent(string(event.Type), "published")
	}
}
