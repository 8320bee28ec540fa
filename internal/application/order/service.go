package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sellpoint/api/internal/domain"
	"github.com/sellpoint/api/internal/pkg/id"
)

// ItemRequest is one requested basket line.
type ItemRequest struct {
	ProductInfoID string `json:"product_info" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,gt=0"`
}

type Service interface {
	Basket(ctx context.Context, userID string) (*domain.Order, error)
	SetBasket(ctx context.Context, userID string, items []ItemRequest) (*domain.Order, error)
	List(ctx context.Context, userID, stateToken string) ([]domain.Order, error)
	Get(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error)
	Confirm(ctx context.Context, userID, orderID, contactID string) (*domain.Order, error)
	SetState(ctx context.Context, actorID, orderID, stateToken string) (*domain.Order, error)
	PartnerOrders(ctx context.Context, actorID string) ([]domain.Order, error)
}

type orderStore interface {
	Put(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID, state string) ([]domain.Order, error)
	Basket(ctx context.Context, customerID string) (*domain.Order, error)
	ListPlaced(ctx context.Context) ([]domain.Order, error)
	Update(ctx context.Context, orderID string, updates map[string]interface{}) error
}

type productInfoStore interface {
	Get(ctx context.Context, productInfoID string) (*domain.ProductInfo, error)
	ListByShop(ctx context.Context, shopID string) ([]domain.ProductInfo, error)
}

type shopStore interface {
	ManagedBy(ctx context.Context, userID string) (*domain.Shop, error)
}

type contactStore interface {
	Get(ctx context.Context, contactID string) (*domain.Contact, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	orders   orderStore
	infos    productInfoStore
	contacts contactStore
	users    userStore
	shops    shopStore
	mailer   mailer
	sms      smsSender
}

type ServiceDeps struct {
	OrderRepo       orderStore
	ProductInfoRepo productInfoStore
	ContactRepo     contactStore
	UserRepo        userStore
	ShopRepo        shopStore
	Mailer          mailer
	SMSSender       smsSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		orders:   deps.OrderRepo,
		infos:    deps.ProductInfoRepo,
		contacts: deps.ContactRepo,
		users:    deps.UserRepo,
		shops:    deps.ShopRepo,
		mailer:   deps.Mailer,
		sms:      deps.SMSSender,
	}
}

func (s *service) Basket(ctx context.Context, userID string) (*domain.Order, error) {
	return s.orders.Basket(ctx, userID)
}

// SetBasket replaces the basket contents. Each line is priced from the
// shop's current offer and checked against stock.
func (s *service) SetBasket(ctx context.Context, userID string, items []ItemRequest) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("items are required: %w", domain.ErrBadRequest)
	}
	lines := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		pi, err := s.infos.Get(ctx, it.ProductInfoID)
		if err != nil {
			return nil, fmt.Errorf("offer %s not found: %w", it.ProductInfoID, domain.ErrNotFound)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrBadRequest)
		}
		if it.Quantity > pi.Quantity {
			return nil, fmt.Errorf("only %d of %s in stock: %w", pi.Quantity, pi.Model, domain.ErrBadRequest)
		}
		lines = append(lines, domain.OrderItem{
			ProductInfoID: pi.ProductInfoID,
			Quantity:      it.Quantity,
			Price:         pi.Price,
		})
	}

	now := time.Now().UTC()
	basket, err := s.orders.Basket(ctx, userID)
	if err != nil {
		basket = &domain.Order{
			OrderID:    id.New(),
			CustomerID: userID,
			State:      domain.OrderBasket,
			CreatedAt:  now,
		}
	}
	basket.Items = lines
	basket.Sum = basket.Total()
	basket.UpdatedAt = now
	if err := s.orders.Put(ctx, basket); err != nil {
		return nil, err
	}
	return basket, nil
}

func (s *service) List(ctx context.Context, userID, stateToken string) ([]domain.Order, error) {
	state := ""
	if stateToken != "" {
		coerced, err := domain.OrderStateEnum.Coerce(stateToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", err, domain.ErrBadRequest)
		}
		state = coerced
	}
	return s.orders.ListByCustomer(ctx, userID, state)
}

func (s *service) Get(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", domain.ErrNotFound)
	}
	if o.CustomerID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("not your order: %w", domain.ErrForbidden)
	}
	return o, nil
}

// Confirm places the basket: it becomes a new order bound to the delivery
// contact, and the customer is notified.
func (s *service) Confirm(ctx context.Context, userID, orderID, contactID string) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", domain.ErrNotFound)
	}
	if o.CustomerID != userID {
		return nil, fmt.Errorf("not your order: %w", domain.ErrForbidden)
	}
	if o.State != domain.OrderBasket {
		return nil, fmt.Errorf("only a basket can be placed: %w", domain.ErrBadRequest)
	}
	if len(o.Items) == 0 {
		return nil, fmt.Errorf("basket is empty: %w", domain.ErrBadRequest)
	}
	c, err := s.contacts.Get(ctx, contactID)
	if err != nil || c.UserID != userID {
		return nil, fmt.Errorf("contact not found: %w", domain.ErrNotFound)
	}

	updates := map[string]interface{}{
		"state":      domain.OrderNew,
		"contact_id": contactID,
		"sum":        o.Total(),
	}
	if err := s.orders.Update(ctx, orderID, updates); err != nil {
		return nil, err
	}
	o.State = domain.OrderNew
	o.ContactID = contactID
	o.Sum = o.Total()

	s.notify(ctx, o, c)
	return o, nil
}

// SetState moves an order along its lifecycle. Administrators and shop
// managers handle orders past the basket stage; the customer may only
// cancel or acknowledge receipt. The actor is loaded fresh so the position
// check reflects the current record, not stale token claims.
func (s *service) SetState(ctx context.Context, actorID, orderID, stateToken string) (*domain.Order, error) {
	state, err := domain.OrderStateEnum.Coerce(stateToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, domain.ErrBadRequest)
	}
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", domain.ErrNotFound)
	}
	customerMove := o.CustomerID == actor.UserID &&
		(state == domain.OrderCanceled || state == domain.OrderReceived)
	if !actor.IsAdmin() && actor.Position == "" && !customerMove {
		return nil, fmt.Errorf("not allowed to move this order: %w", domain.ErrForbidden)
	}
	if o.State == state {
		return nil, fmt.Errorf("order already in that state: %w", domain.ErrBadRequest)
	}
	if err := s.orders.Update(ctx, orderID, map[string]interface{}{"state": state}); err != nil {
		return nil, err
	}
	o.State = state

	var c *domain.Contact
	if o.ContactID != "" {
		if got, err := s.contacts.Get(ctx, o.ContactID); err == nil {
			c = got
		}
	}
	s.notify(ctx, o, c)
	return o, nil
}

// PartnerOrders lists placed orders containing goods offered by the shop
// the actor manages. Lines from other shops are trimmed per order.
func (s *service) PartnerOrders(ctx context.Context, actorID string) ([]domain.Order, error) {
	sh, err := s.shops.ManagedBy(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("you do not manage a shop: %w", domain.ErrForbidden)
	}
	offers, err := s.infos.ListByShop(ctx, sh.ShopID)
	if err != nil {
		return nil, err
	}
	ours := make(map[string]bool, len(offers))
	for _, pi := range offers {
		ours[pi.ProductInfoID] = true
	}

	placed, err := s.orders.ListPlaced(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Order, 0, len(placed))
	for _, o := range placed {
		items := make([]domain.OrderItem, 0, len(o.Items))
		for _, it := range o.Items {
			if ours[it.ProductInfoID] {
				items = append(items, it)
			}
		}
		if len(items) == 0 {
			continue
		}
		o.Items = items
		o.Sum = o.Total()
		result = append(result, o)
	}
	return result, nil
}

// notify tells the customer about the order's new state by email and, when
// the delivery contact carries a phone number, by SMS. Notification
// failures are logged, never surfaced: the state change already happened.
func (s *service) notify(ctx context.Context, o *domain.Order, c *domain.Contact) {
	u, err := s.users.Get(ctx, o.CustomerID)
	if err != nil {
		slog.Warn("could not load customer for notification", "order_id", o.OrderID, "err", err)
		return
	}
	subject := "Order status update"
	body := fmt.Sprintf("Order %s is now %q. Total: %d.", o.OrderID, stateLabel(o.State), o.Sum)
	if err := s.mailer.SendEmail(u.Email, subject, body); err != nil {
		slog.Warn("could not send order email", "order_id", o.OrderID, "err", err)
	}
	if c != nil && c.Phone != "" {
		if err := s.sms.SendSMS(ctx, c.Phone, body); err != nil {
			slog.Warn("could not send order SMS", "order_id", o.OrderID, "err", err)
		}
	}
}

func stateLabel(state string) string {
	labels := map[string]string{
		domain.OrderBasket:    "Basket",
		domain.OrderNew:       "New",
		domain.OrderConfirmed: "Confirmed",
		domain.OrderAssembled: "Assembled",
		domain.OrderSent:      "Sent",
		domain.OrderCanceled:  "Canceled",
		domain.OrderReceived:  "Received",
	}
	if l, ok := labels[state]; ok {
		return l
	}
	return state
}
