package server

import (
	"log/slog"

	"orderdesk/internal/config"
	infraRepo "orderdesk/internal/infra/repository"
	"orderdesk/internal/repository"
	"orderdesk/internal/usecase"
	"orderdesk/internal/validator"

	"gorm.io/gorm"
)

// Container はHTTPとCLIで共有する組み立て済みの部品
type Container struct {
	DB    *gorm.DB
	Users repository.UserRepository

	Orders       *usecase.OrderUsecase
	Reservations *usecase.ReservationUsecase
	Carts        *usecase.CartUsecase
	Tables       *usecase.TableUsecase
	TimeSlots    *usecase.TimeSlotCatalog
	Addresses    *usecase.AddressUsecase
	AdminOrders  *usecase.AdminOrderUsecase
}

func NewContainer(cfg config.Config, gdb *gorm.DB, events usecase.EventPublisher, log *slog.Logger) *Container {
	clock := usecase.SystemClock{}

	//Repository（GORM実装）
	userRepo := infraRepo.NewUserGormRepository(gdb)
	addressRepo := infraRepo.NewAddressGormRepository(gdb)
	auditRepo := infraRepo.NewAuditLogGormRepository(gdb)
	cartRepo := infraRepo.NewCartGormRepository(gdb)
	catalogRepo := infraRepo.NewCatalogGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	tableRepo := infraRepo.NewTableGormRepository(gdb)
	slotRepo := infraRepo.NewTimeSlotGormRepository(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb)

	orderValidator := validator.NewOrderValidator(cfg.Location)
	slots := usecase.NewTimeSlotCatalog(slotRepo, log)

	return &Container{
		DB:    gdb,
		Users: userRepo,
		Orders: usecase.NewOrderUsecase(usecase.OrderUsecaseDeps{
			Tx:        txm,
			Addresses: addressRepo,
			TimeSlots: slots,
			Validator: orderValidator,
			Numbers:   usecase.NewOrderNumberGenerator(cfg.Location),
			Events:    events,
			Clock:     clock,
			Location:  cfg.Location,
			Log:       log,
		}),
		Reservations: usecase.NewReservationUsecase(txm, events, clock, cfg.SweepBatchSize, log),
		Carts:        usecase.NewCartUsecase(txm, cartRepo, cartRepo, catalogRepo, validator.NewCartValidator(), log),
		Tables:       usecase.NewTableUsecase(tableRepo, orderRepo, slots, orderValidator, cfg.Location, log),
		TimeSlots:    slots,
		Addresses:    usecase.NewAddressUsecase(addressRepo, clock, log),
		AdminOrders:  usecase.NewAdminOrderUsecase(txm, auditRepo, log),
	}
}
