package check_availability

import (
	"context"
	"fmt"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/pkg/ptr"
)

// UseCase use case для проверки доступности услуги на диапазон дат
//
// Результат является снимком на момент запроса и не резервирует слоты:
// гарантию дает только атомарное резервирование при создании бронирования.
type UseCase struct {
	ledgerRepo LedgerRepository
	txManager  TransactionManager
	catalog    domain.Catalog
	logger     Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	ledgerRepo LedgerRepository,
	txManager TransactionManager,
	catalog domain.Catalog,
	logger Logger,
) *UseCase {
	return &UseCase{
		ledgerRepo: ledgerRepo,
		txManager:  txManager,
		catalog:    catalog,
		logger:     logger,
	}
}

// Execute выполняет use case проверки доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckAvailability: service=%s, dates=[%s, %s)",
		req.ServiceID, req.StartDate, req.EndDate)

	if req.ServiceID == "" {
		return nil, fmt.Errorf("%w: serviceID is required", ErrInvalidInput)
	}
	if req.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: startDate is required", ErrInvalidInput)
	}

	entry, err := uc.catalog.Get(req.ServiceID)
	if err != nil {
		uc.logger.Warn("CheckAvailability: service %q not found in catalog", req.ServiceID)
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, req.ServiceID)
	}

	endDate, err := domain.ValidateRange(entry, req.StartDate, req.EndDate)
	if err != nil {
		uc.logger.Warn("CheckAvailability: invalid date range: %v", err)
		return nil, err
	}

	dates := domain.OccupiedDates(req.StartDate, endDate)

	resp := &Response{
		ServiceID: entry.ServiceID,
		StartDate: req.StartDate,
		EndDate:   endDate,
		Days:      make([]DayAvailability, 0, len(dates)),
	}

	// Безлимитные услуги доступны всегда, журнал не читаем
	if entry.IsUnlimited() {
		resp.Available = true
		resp.Unlimited = true
		for _, date := range dates {
			resp.Days = append(resp.Days, DayAvailability{Date: date, Available: true})
		}
		return resp, nil
	}

	var counts domain.DayCounts

	// Read-only транзакция дает согласованный снимок журнала
	err = uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		counts, err = uc.ledgerRepo.CountByDays(txCtx, entry.ServiceID, dates, nil)
		return err
	})
	if err != nil {
		uc.logger.Error("CheckAvailability: failed to count ledger slots: %v", err)
		return nil, fmt.Errorf("%w: failed to count ledger slots: %v", ErrInternal, err)
	}

	eval, err := domain.EvaluateAvailability(entry, req.StartDate, endDate, counts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to evaluate availability: %v", ErrInternal, err)
	}

	resp.Available = eval.Available
	resp.RemainingMin = ptr.Ptr(eval.RemainingMin)

	for _, date := range dates {
		occupied := counts[date]
		remaining := entry.CapacityPerDay - occupied
		if remaining < 0 {
			remaining = 0
		}
		resp.Days = append(resp.Days, DayAvailability{
			Date:      date,
			Occupied:  occupied,
			Remaining: ptr.Ptr(remaining),
			Available: remaining > 0,
		})
	}

	return resp, nil
}
