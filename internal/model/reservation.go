package model

import "time"

// ReservationStatus 預訂狀態類型
type ReservationStatus string

const (
	ReservationStatusHeld      ReservationStatus = "HELD"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusDonated   ReservationStatus = "DONATED"
	ReservationStatusClaimed   ReservationStatus = "CLAIMED"
	ReservationStatusPickedUp  ReservationStatus = "PICKED_UP"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusHeld:      {ReservationStatusConfirmed, ReservationStatusDonated, ReservationStatusCancelled},
	ReservationStatusDonated:   {ReservationStatusClaimed},
	ReservationStatusConfirmed: {ReservationStatusPickedUp},
	ReservationStatusClaimed:   {ReservationStatusPickedUp},
	ReservationStatusPickedUp:  {},
	ReservationStatusCancelled: {},
}

// IsValid 驗證狀態是否有效
func (s ReservationStatus) IsValid() bool {
	_, ok := reservationTransitions[s]
	return ok
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, status := range reservationTransitions[s] {
		if status == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s ReservationStatus) IsTerminal() bool {
	return s.IsValid() && len(reservationTransitions[s]) == 0
}

// HoldsInventory reports whether reservations in this status account for
// units already removed from the plate counter.
func (s ReservationStatus) HoldsInventory() bool {
	switch s {
	case ReservationStatusConfirmed, ReservationStatusDonated, ReservationStatusClaimed, ReservationStatusPickedUp:
		return true
	}
	return false
}

// CountsTowardQuota reports whether a needy user's reservation in this status uses daily quota.
func (s ReservationStatus) CountsTowardQuota() bool {
	return s == ReservationStatusClaimed || s == ReservationStatusPickedUp
}

// Reservation 預訂模型
type Reservation struct {
	ID          int               `json:"id" db:"id"`
	UserID      *int              `json:"user_id,omitempty" db:"user_id"`
	DonorID     *int              `json:"donor_id,omitempty" db:"donor_id"`
	PlateID     int               `json:"plate_id" db:"plate_id"`
	Quantity    int               `json:"qty" db:"qty"`
	Status      ReservationStatus `json:"status" db:"status"`
	PickupCode  *string           `json:"pickup_code,omitempty" db:"pickup_code"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	ConfirmedAt *time.Time        `json:"confirmed_at,omitempty" db:"confirmed_at"`
	ClaimedAt   *time.Time        `json:"claimed_at,omitempty" db:"claimed_at"`
	PickedUpAt  *time.Time        `json:"picked_up_at,omitempty" db:"picked_up_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// IsOwnedBy reports whether userID is the current beneficiary.
func (r *Reservation) IsOwnedBy(userID int) bool {
	return r.UserID != nil && *r.UserID == userID
}

// CreateReservationRequest 建立預訂請求
type CreateReservationRequest struct {
	PlateID  int `json:"plate_id" binding:"required"`
	Quantity int `json:"qty" binding:"required,min=1"`
}

// ClaimRequest 認領請求
type ClaimRequest struct {
	Quantity int `json:"qty" binding:"required,min=1"`
}

// ClaimItem is one line of a batch claim.
type ClaimItem struct {
	ReservationID int `json:"reservation_id" binding:"required"`
	Quantity      int `json:"qty" binding:"required,min=1"`
}

// ClaimBatchRequest 批次認領請求
type ClaimBatchRequest struct {
	Items []ClaimItem `json:"items" binding:"required,min=1,dive"`
}

// PickUpRequest 取餐核銷請求
type PickUpRequest struct {
	PickupCode string `json:"pickup_code" binding:"required,len=8,numeric"`
}

// QuotaStatus is a needy user's free-plate usage for the current day.
type QuotaStatus struct {
	UserID    int `json:"user_id"`
	UsedToday int `json:"used_today"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// ConfirmResult carries the confirmed (or donated) reservation and the ledger row it produced.
type ConfirmResult struct {
	Reservation *Reservation `json:"reservation"`
	Transaction *Transaction `json:"transaction"`
}
