package cli

import (
	"context"
	"fmt"
	"math/rand"

	"orderdesk/internal/domain/model"
	"orderdesk/internal/infra/db"
	infraRepo "orderdesk/internal/infra/repository"

	"github.com/jaswdr/faker"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	seedValue  int64
	seedUsers  int
	seedDishes int
	seedTables int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo users, menu, tables and time slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.Connect(cfg)
		if err != nil {
			return err
		}
		if err := db.Migrate(gdb); err != nil {
			return err
		}

		s := newSeeder(gdb, seedValue)
		return s.run(commandContext(cmd), seedUsers, seedDishes, seedTables)
	},
}

func init() {
	seedCmd.Flags().Int64Var(&seedValue, "seed", 42, "random seed")
	seedCmd.Flags().IntVar(&seedUsers, "users", 5, "number of customers (one admin is always added)")
	seedCmd.Flags().IntVar(&seedDishes, "dishes", 12, "number of dishes")
	seedCmd.Flags().IntVar(&seedTables, "tables", 8, "number of tables")
}

// 営業時間の時間枠
var defaultTimeSlots = [][2]string{
	{"11:00", "12:00"},
	{"12:00", "13:00"},
	{"13:00", "14:00"},
	{"17:00", "18:00"},
	{"18:00", "19:00"},
	{"19:00", "20:00"},
	{"20:00", "21:00"},
}

type seeder struct {
	gdb  *gorm.DB
	fake faker.Faker
}

func newSeeder(gdb *gorm.DB, seed int64) *seeder {
	return &seeder{gdb: gdb, fake: faker.NewWithSeed(rand.NewSource(seed))}
}

func (s *seeder) run(ctx context.Context, users, dishes, tables int) error {
	userRepo := infraRepo.NewUserGormRepository(s.gdb)
	addressRepo := infraRepo.NewAddressGormRepository(s.gdb)
	catalog := infraRepo.NewCatalogGormRepository(s.gdb)
	tableRepo := infraRepo.NewTableGormRepository(s.gdb)
	slotRepo := infraRepo.NewTimeSlotGormRepository(s.gdb)

	admin := &model.User{Email: "admin+" + s.fake.Lorem().Word() + "@orderdesk.local", Role: model.RoleAdmin, IsActive: true}
	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	for i := 0; i < users; i++ {
		u := &model.User{Email: s.fake.Internet().Email(), Role: model.RoleUser, IsActive: true}
		if err := userRepo.Create(ctx, u); err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		if _, err := addressRepo.Create(ctx, model.Address{
			UserID:      u.ID,
			Name:        s.fake.Person().Name(),
			Phone:       s.fake.Phone().Number(),
			AddressLine: s.fake.Address().Address(),
			Building:    s.fake.Company().Name(),
			IsDefault:   true,
		}); err != nil {
			return fmt.Errorf("seed address: %w", err)
		}
	}

	created := make([]model.Dish, 0, dishes)
	for i := 0; i < dishes; i++ {
		d, err := catalog.CreateDish(ctx, s.dish())
		if err != nil {
			return fmt.Errorf("seed dish: %w", err)
		}
		created = append(created, d)
	}

	//2品ずつのセット
	for i := 0; i+1 < len(created); i += 4 {
		p := model.Package{
			Name:        "Set " + s.fake.Lorem().Word(),
			Description: s.fake.Lorem().Sentence(8),
			BasePrice:   s.price(20, 60),
			IsActive:    true,
			Dishes: []model.PackageEntry{
				{DishID: created[i].ID, Quantity: 1},
				{DishID: created[i+1].ID, Quantity: 1},
			},
		}
		if _, err := catalog.CreatePackage(ctx, p); err != nil {
			return fmt.Errorf("seed package: %w", err)
		}
	}

	locations := []string{"window", "terrace", "hall", "private room"}
	for i := 0; i < tables; i++ {
		if _, err := tableRepo.Create(ctx, model.Table{
			Code:     fmt.Sprintf("T%02d", i+1),
			Capacity: 2 + 2*s.fake.IntBetween(0, 3),
			Location: locations[i%len(locations)],
		}); err != nil {
			return fmt.Errorf("seed table: %w", err)
		}
	}

	for _, r := range defaultTimeSlots {
		if _, err := slotRepo.Create(ctx, model.TimeSlot{StartTime: r[0], EndTime: r[1]}); err != nil {
			return fmt.Errorf("seed time slot: %w", err)
		}
	}

	log.Info("seed finished",
		"admin_user_id", admin.ID,
		"users", users,
		"dishes", len(created),
		"tables", tables,
	)
	return nil
}

func (s *seeder) dish() model.Dish {
	d := model.Dish{
		Name:        s.fake.Lorem().Word() + " " + s.fake.Lorem().Word(),
		Description: s.fake.Lorem().Sentence(10),
		BasePrice:   s.price(5, 30),
		IsActive:    true,
	}
	//4品に1品はプロモ価格
	if s.fake.IntBetween(0, 3) == 0 {
		d.PromotionalPrice = decimal.NewNullDecimal(d.BasePrice.Mul(decimal.RequireFromString("0.8")).Round(2))
	}
	for j := 0; j < s.fake.IntBetween(0, 3); j++ {
		d.Addons = append(d.Addons, model.DishAddon{Name: "extra " + s.fake.Lorem().Word(), Price: s.price(1, 5)})
	}
	d.Variants = []model.DishVariant{
		{Name: "regular", PriceModifier: decimal.Zero},
		{Name: "large", PriceModifier: s.price(2, 6)},
		{Name: "small", PriceModifier: s.price(1, 3).Neg()},
	}
	return d
}

// min〜maxの0.50刻み
func (s *seeder) price(min, max int) decimal.Decimal {
	halves := s.fake.IntBetween(min*2, max*2)
	return decimal.New(int64(halves)*5, -1)
}
