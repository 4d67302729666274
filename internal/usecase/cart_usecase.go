package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"orderdesk/internal/domain/model"
	"orderdesk/internal/domain/pricing"
	repo "orderdesk/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 追加時点のカタログ値（名前・価格・addon/variant）をカートに写す。
type CartUsecase struct {
	tx           repo.TransactionManager
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	catalog      repo.CatalogRepository
	validator    CartValidator
	log          *slog.Logger
}

func NewCartUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	catalog repo.CatalogRepository,
	validator CartValidator,
	log *slog.Logger,
) *CartUsecase {
	return &CartUsecase{
		tx:           tx,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		catalog:      catalog,
		validator:    validator,
		log:          log,
	}
}

type CartItemResponse struct {
	ID               int64               `json:"id"`
	DishID           int64               `json:"dish_id"`
	Name             string              `json:"name"`
	BasePrice        decimal.NullDecimal `json:"base_price"`
	PromotionalPrice decimal.NullDecimal `json:"promotional_price"`
	Quantity         int64               `json:"quantity"`
	Addons           model.Modifiers     `json:"addons"`
	Variants         model.Modifiers     `json:"variants"`
	LineTotal        decimal.Decimal     `json:"line_total"`
}

type CartPackageResponse struct {
	ID               int64               `json:"id"`
	PackageID        int64               `json:"package_id"`
	Name             string              `json:"name"`
	BasePrice        decimal.NullDecimal `json:"base_price"`
	PromotionalPrice decimal.NullDecimal `json:"promotional_price"`
	Quantity         int64               `json:"quantity"`
	Dishes           model.PackageDishes `json:"dishes"`
	LineTotal        decimal.Decimal     `json:"line_total"`
}

// Subtotalは確定時に送るべき小計
type CartResponse struct {
	CartID   int64                 `json:"cart_id"`
	Items    []CartItemResponse    `json:"items"`
	Packages []CartPackageResponse `json:"packages"`
	Subtotal decimal.Decimal       `json:"subtotal"`
}

type AddCartItemInput struct {
	DishID     int64
	Quantity   int64
	AddonIDs   []int64
	VariantIDs []int64
}

// パッケージ内の1品の選択
type PackageSelection struct {
	DishID     int64
	AddonIDs   []int64
	VariantIDs []int64
}

type AddCartPackageInput struct {
	PackageID  int64
	Quantity   int64
	Selections []PackageSelection
}

// GetCart はカート取得（無ければACTIVEを作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, actor Actor) (CartResponse, error) {
	if err := requireActor(actor); err != nil {
		return CartResponse{}, err
	}
	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, actor.UserID)
	if err != nil {
		return CartResponse{}, u.dbError(ctx, "get cart", err)
	}
	return u.buildCartResponse(ctx, cart.ID)
}

func (u *CartUsecase) AddItem(ctx context.Context, actor Actor, in AddCartItemInput) (CartResponse, error) {
	if err := requireActor(actor); err != nil {
		return CartResponse{}, err
	}
	if err := u.validator.ValidateAddItem(in); err != nil {
		return CartResponse{}, err
	}

	dish, err := u.catalog.FindDish(ctx, in.DishID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewError(ErrNotFound, "dish not found")
	}
	if err != nil {
		return CartResponse{}, u.dbError(ctx, "find dish", err)
	}

	addons, variants, err := pickModifiers(dish, in.AddonIDs, in.VariantIDs)
	if err != nil {
		return CartResponse{}, err
	}

	cartID, err := u.withActiveCart(ctx, actor, func(r repo.TxRepos, cart model.Cart) error {
		_, err := r.CartItems().AddItem(ctx, model.CartItem{
			CartID:           cart.ID,
			DishID:           dish.ID,
			Name:             dish.Name,
			Description:      dish.Description,
			BasePrice:        decimal.NewNullDecimal(dish.BasePrice),
			PromotionalPrice: dish.PromotionalPrice,
			Quantity:         in.Quantity,
			Addons:           addons,
			Variants:         variants,
		})
		if err != nil {
			return u.dbError(ctx, "add cart item", err)
		}
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}
	return u.buildCartResponse(ctx, cartID)
}

func (u *CartUsecase) AddPackage(ctx context.Context, actor Actor, in AddCartPackageInput) (CartResponse, error) {
	if err := requireActor(actor); err != nil {
		return CartResponse{}, err
	}
	if err := u.validator.ValidateAddPackage(in); err != nil {
		return CartResponse{}, err
	}

	pkg, err := u.catalog.FindPackage(ctx, in.PackageID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewError(ErrNotFound, "package not found")
	}
	if err != nil {
		return CartResponse{}, u.dbError(ctx, "find package", err)
	}

	selections := make(map[int64]PackageSelection, len(in.Selections))
	for _, s := range in.Selections {
		selections[s.DishID] = s
	}

	dishes := make(model.PackageDishes, 0, len(pkg.Dishes))
	for _, entry := range pkg.Dishes {
		sel := selections[entry.DishID]
		delete(selections, entry.DishID)

		addons, variants, err := pickModifiers(entry.Dish, sel.AddonIDs, sel.VariantIDs)
		if err != nil {
			return CartResponse{}, err
		}
		dishes = append(dishes, model.PackageDish{
			DishID:   entry.DishID,
			Name:     entry.Dish.Name,
			Quantity: entry.Quantity,
			Addons:   addons,
			Variants: variants,
		})
	}
	//パッケージに無い料理の選択
	if len(selections) > 0 {
		ids := make([]string, 0, len(selections))
		for dishID := range selections {
			ids = append(ids, strconv.FormatInt(dishID, 10))
		}
		sort.Strings(ids)
		return CartResponse{}, NewValidationError(map[string]string{
			"selections": "dishes not part of the package: " + strings.Join(ids, ","),
		})
	}

	cartID, err := u.withActiveCart(ctx, actor, func(r repo.TxRepos, cart model.Cart) error {
		_, err := r.CartItems().AddPackage(ctx, model.CartPackageItem{
			CartID:           cart.ID,
			PackageID:        pkg.ID,
			Name:             pkg.Name,
			Description:      pkg.Description,
			BasePrice:        decimal.NewNullDecimal(pkg.BasePrice),
			PromotionalPrice: pkg.PromotionalPrice,
			Quantity:         in.Quantity,
			Dishes:           dishes,
		})
		if err != nil {
			return u.dbError(ctx, "add cart package", err)
		}
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}
	return u.buildCartResponse(ctx, cartID)
}

// ACTIVEカートを行ロックしたTx内でfnを実行する。
// 確定と競合した場合は確定後の新しいACTIVEカートに入る。
func (u *CartUsecase) withActiveCart(ctx context.Context, actor Actor, fn func(r repo.TxRepos, cart model.Cart) error) (int64, error) {
	var cartID int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateActiveByUserID(ctx, actor.UserID)
		if err != nil {
			return u.dbError(ctx, "get cart", err)
		}
		if err := fn(r, cart); err != nil {
			return err
		}
		cartID = cart.ID
		return nil
	})
	return cartID, err
}

// 明細削除（自分のACTIVEカートの明細のみ）
func (u *CartUsecase) RemoveItem(ctx context.Context, actor Actor, cartItemID int64) (CartResponse, error) {
	return u.remove(ctx, actor, cartItemID, repo.CartItemRepository.DeleteItem)
}

func (u *CartUsecase) RemovePackage(ctx context.Context, actor Actor, cartPackageItemID int64) (CartResponse, error) {
	return u.remove(ctx, actor, cartPackageItemID, repo.CartItemRepository.DeletePackage)
}

type deleteLine func(r repo.CartItemRepository, ctx context.Context, cartID, id int64) error

func (u *CartUsecase) remove(ctx context.Context, actor Actor, id int64, del deleteLine) (CartResponse, error) {
	if err := requireActor(actor); err != nil {
		return CartResponse{}, err
	}
	if id <= 0 {
		return CartResponse{}, NewValidationError(map[string]string{"id": "must be positive"})
	}

	var cartID int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().LockActiveByUserID(ctx, actor.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(ErrNotFound, "cart item not found")
		}
		if err != nil {
			return u.dbError(ctx, "lock cart", err)
		}

		if err := del(r.CartItems(), ctx, cart.ID, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewError(ErrNotFound, "cart item not found")
			}
			return u.dbError(ctx, "delete cart line", err)
		}
		cartID = cart.ID
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}
	return u.buildCartResponse(ctx, cartID)
}

// cartIDの明細をまとめてCartResponseを作る。金額は確定時と同じ計算。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, u.dbError(ctx, "list cart items", err)
	}
	pkgs, err := u.cartItemRepo.ListPackagesByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, u.dbError(ctx, "list cart packages", err)
	}

	resp := CartResponse{
		CartID:   cartID,
		Items:    make([]CartItemResponse, 0, len(items)),
		Packages: make([]CartPackageResponse, 0, len(pkgs)),
		Subtotal: decimal.Zero,
	}

	for _, it := range items {
		oi, err := pricing.SnapshotItem(it)
		if err != nil {
			return CartResponse{}, NewError(ErrInvalidCartState, err.Error())
		}
		resp.Items = append(resp.Items, CartItemResponse{
			ID:               it.ID,
			DishID:           it.DishID,
			Name:             it.Name,
			BasePrice:        it.BasePrice,
			PromotionalPrice: it.PromotionalPrice,
			Quantity:         it.Quantity,
			Addons:           it.Addons,
			Variants:         it.Variants,
			LineTotal:        oi.LineTotal,
		})
		resp.Subtotal = resp.Subtotal.Add(oi.LineTotal)
	}
	for _, p := range pkgs {
		op, err := pricing.SnapshotPackage(p)
		if err != nil {
			return CartResponse{}, NewError(ErrInvalidCartState, err.Error())
		}
		resp.Packages = append(resp.Packages, CartPackageResponse{
			ID:               p.ID,
			PackageID:        p.PackageID,
			Name:             p.Name,
			BasePrice:        p.BasePrice,
			PromotionalPrice: p.PromotionalPrice,
			Quantity:         p.Quantity,
			Dishes:           p.Dishes,
			LineTotal:        op.LineTotal,
		})
		resp.Subtotal = resp.Subtotal.Add(op.LineTotal)
	}
	return resp, nil
}

func (u *CartUsecase) dbError(ctx context.Context, step string, err error) error {
	u.log.ErrorContext(ctx, "cart db error", slog.String("step", step), slog.Any("error", err))
	return NewError(ErrTransactionFailed, "db error")
}

// 料理に属するaddon/variantだけを値として写す
func pickModifiers(dish model.Dish, addonIDs, variantIDs []int64) (model.Modifiers, model.Modifiers, error) {
	addonByID := make(map[int64]model.DishAddon, len(dish.Addons))
	for _, a := range dish.Addons {
		addonByID[a.ID] = a
	}
	variantByID := make(map[int64]model.DishVariant, len(dish.Variants))
	for _, v := range dish.Variants {
		variantByID[v.ID] = v
	}

	addons := make(model.Modifiers, 0, len(addonIDs))
	for _, id := range addonIDs {
		a, ok := addonByID[id]
		if !ok {
			return nil, nil, NewValidationError(map[string]string{
				"addon_ids": "addon " + strconv.FormatInt(id, 10) + " does not belong to " + dish.Name,
			})
		}
		addons = append(addons, model.Modifier{Kind: model.ModifierAddon, ID: a.ID, Name: a.Name, Price: a.Price})
	}

	variants := make(model.Modifiers, 0, len(variantIDs))
	for _, id := range variantIDs {
		v, ok := variantByID[id]
		if !ok {
			return nil, nil, NewValidationError(map[string]string{
				"variant_ids": "variant " + strconv.FormatInt(id, 10) + " does not belong to " + dish.Name,
			})
		}
		variants = append(variants, model.Modifier{Kind: model.ModifierVariant, ID: v.ID, Name: v.Name, Price: v.PriceModifier})
	}
	return addons, variants, nil
}
