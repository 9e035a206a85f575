// Package order owns the ordering session: the cart, the meal being
// composed and the builder -> checkout -> confirmed lifecycle.
package order

import (
	"context"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marmitaria/internal/catalog"
	"marmitaria/internal/composition"
	"marmitaria/internal/models"
	"marmitaria/internal/pricing"
)

type State string

const (
	StateBuilding  State = "building"
	StateCheckout  State = "checkout"
	StateConfirmed State = "confirmed"
)

// Dispatcher hands a confirmed order to the notification and print
// collaborators. Implementations must tolerate being called again with the
// same order id.
type Dispatcher interface {
	Dispatch(ctx context.Context, order models.OrderDetails) error
}

// OrderStore persists confirmed orders.
type OrderStore interface {
	Save(ctx context.Context, order models.OrderDetails) error
}

type Options struct {
	Dispatcher Dispatcher
	Store      OrderStore
	Logger     *zap.Logger
	Now        func() time.Time
}

var validate = newValidator()

// newValidator lets decimal amounts take numeric tags such as gt=0.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Session is one customer's ordering flow. All methods are safe for
// concurrent use.
type Session struct {
	id      string
	catalog *catalog.Live
	opts    Options

	mu          sync.Mutex
	state       State
	cartID      string
	cart        []models.MarmitaItem
	size        models.Size
	ingredients []string
	extras      []string
	observation string
	order       *models.OrderDetails
	lastSeen    time.Time
}

func NewSession(live *catalog.Live, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Session{
		id:      newID(),
		catalog: live,
		opts:    opts,
	}
	s.reset()
	return s
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// reset starts a fresh cart with a new identity. Callers hold mu.
func (s *Session) reset() {
	s.state = StateBuilding
	s.cartID = newID()
	s.cart = nil
	s.size = models.SizeMedium
	s.ingredients = nil
	s.extras = nil
	s.observation = ""
	s.order = nil
	s.lastSeen = s.opts.Now()
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastSeen is the time of the last operation on the session.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch() { s.lastSeen = s.opts.Now() }

func (s *Session) requireState(op string, want State) error {
	if s.state != want {
		return &TransitionError{Op: op, State: s.state}
	}
	return nil
}

func (s *Session) SelectSize(size models.Size) error {
	if !slices.Contains(models.Sizes(), size) {
		return ErrUnknownSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireState("select size", StateBuilding); err != nil {
		return err
	}
	s.size = size
	return nil
}

// ToggleIngredient selects or deselects an ingredient for the meal being
// composed. Deselecting always succeeds.
func (s *Session) ToggleIngredient(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireState("toggle ingredient", StateBuilding); err != nil {
		return err
	}
	snap := s.catalog.Snapshot()
	s.dropInactive(snap)
	next, err := composition.Toggle(id, s.ingredients, snap)
	if err != nil {
		return err
	}
	s.ingredients = next
	return nil
}

// dropInactive removes picks deactivated since they were made, so a later
// reactivation cannot push a category past its limit. Callers hold mu.
func (s *Session) dropInactive(snap *catalog.Catalog) {
	s.ingredients = slices.DeleteFunc(slices.Clone(s.ingredients), func(id string) bool {
		_, ok := snap.ActiveIngredient(id)
		return !ok
	})
}

func (s *Session) ToggleExtra(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireState("toggle extra", StateBuilding); err != nil {
		return err
	}
	if i := slices.Index(s.extras, id); i >= 0 {
		s.extras = slices.Delete(slices.Clone(s.extras), i, i+1)
		return nil
	}
	extra, ok := s.catalog.Snapshot().Extra(id)
	if !ok || !extra.Active {
		return ErrExtraUnavailable
	}
	s.extras = append(slices.Clone(s.extras), id)
	return nil
}

func (s *Session) SetObservation(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireState("set observation", StateBuilding); err != nil {
		return err
	}
	s.observation = strings.TrimSpace(text)
	return nil
}

// AddMarmita commits the meal being composed to the cart and starts a new
// one at the default size. Ingredients or extras deactivated since they were
// picked are dropped from the committed meal.
func (s *Session) AddMarmita() (models.MarmitaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireState("add marmita", StateBuilding); err != nil {
		return models.MarmitaItem{}, err
	}

	snap := s.catalog.Snapshot()
	s.dropInactive(snap)
	if err := composition.Validate(s.ingredients, snap); err != nil {
		return models.MarmitaItem{}, err
	}

	item := models.MarmitaItem{
		ID:          newID(),
		Size:        s.size,
		Ingredients: slices.Clone(s.ingredients),
		Extras:      make([]string, 0, len(s.extras)),
	}
	for _, id := range s.extras {
		if extra, ok := snap.Extra(id); ok && extra.Active {
			item.Extras = append(item.Extras, id)
		}
	}

	s.cart = append(s.cart, item)
	s.size = models.SizeMedium
	s.ingredients = nil
	s.extras = nil
	return item.Clone(), nil
}

func (s *Session) RemoveMarmita(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireState("remove marmita", StateBuilding); err != nil {
		return err
	}
	i := slices.IndexFunc(s.cart, func(m models.MarmitaItem) bool { return m.ID == id })
	if i < 0 {
		return ErrMarmitaNotFound
	}
	s.cart = slices.Delete(slices.Clone(s.cart), i, i+1)
	return nil
}

// ProceedToCheckout moves to checkout. With an empty cart it returns
// ErrEmptyCart and the session stays in the builder.
func (s *Session) ProceedToCheckout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireState("checkout", StateBuilding); err != nil {
		return err
	}
	if len(s.cart) == 0 {
		return ErrEmptyCart
	}
	s.state = StateCheckout
	return nil
}

func (s *Session) BackToBuilder() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireState("back to builder", StateCheckout); err != nil {
		return err
	}
	s.state = StateBuilding
	return nil
}

// NewOrder discards the confirmed order and starts over with an empty cart.
func (s *Session) NewOrder() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireState("new order", StateConfirmed); err != nil {
		return err
	}
	s.reset()
	return nil
}

// CheckoutInput is what the customer fills in on the checkout form.
type CheckoutInput struct {
	CustomerName   string                `json:"customerName" validate:"required"`
	Phone          string                `json:"phone" validate:"required,numeric"`
	DeliveryMethod models.DeliveryMethod `json:"deliveryMethod" validate:"required,oneof=delivery pickup"`
	PaymentMethod  models.PaymentMethod  `json:"paymentMethod" validate:"required,oneof=pix credit debit cash"`
	Address        *models.Address       `json:"address" validate:"required_if=DeliveryMethod delivery"`
	ChangeFor      *decimal.Decimal      `json:"changeFor" validate:"omitempty,gt=0"`
}

// normalize trims free text, keeps only the digits of the phone and drops
// fields that do not apply to the chosen methods.
func (in CheckoutInput) normalize() CheckoutInput {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Phone = digitsOnly(in.Phone)
	if in.DeliveryMethod != models.DeliveryMethodDelivery {
		in.Address = nil
	}
	if in.Address != nil {
		addr := models.Address{
			Street:       strings.TrimSpace(in.Address.Street),
			Number:       strings.TrimSpace(in.Address.Number),
			Complement:   strings.TrimSpace(in.Address.Complement),
			Neighborhood: strings.TrimSpace(in.Address.Neighborhood),
			City:         strings.TrimSpace(in.Address.City),
		}
		in.Address = &addr
	}
	if in.PaymentMethod != models.PaymentCash {
		in.ChangeFor = nil
	}
	if in.ChangeFor != nil {
		change := *in.ChangeFor
		in.ChangeFor = &change
	}
	return in
}

func (in CheckoutInput) neighborhood() string {
	if in.Address == nil {
		return ""
	}
	return in.Address.Neighborhood
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Confirmation is the result of Complete. Warnings are non-fatal problems
// the customer should see; the order is placed regardless.
type Confirmation struct {
	Order    models.OrderDetails `json:"order"`
	Warnings []string            `json:"warnings,omitempty"`
}

// Complete confirms the order. The delivery fee and estimated time are
// computed here from the submitted method and neighborhood. Once the session
// is confirmed, persistence and dispatch run best effort; their failures
// become warnings and never move the session back to checkout.
func (s *Session) Complete(ctx context.Context, input CheckoutInput) (Confirmation, error) {
	input = input.normalize()
	if err := validate.Struct(input); err != nil {
		return Confirmation{}, err
	}

	order, warnings, err := s.confirm(input)
	if err != nil {
		return Confirmation{}, err
	}
	log := s.opts.Logger.With(zap.String("session", s.id), zap.String("order", order.ID))

	if s.opts.Store != nil {
		if err := s.opts.Store.Save(ctx, order.Clone()); err != nil {
			log.Warn("persist order failed", zap.Error(err))
			warnings = append(warnings, "order could not be saved: "+err.Error())
		}
	}
	if s.opts.Dispatcher != nil {
		if err := s.opts.Dispatcher.Dispatch(ctx, order.Clone()); err != nil {
			log.Warn("dispatch order failed", zap.Error(err))
			warnings = append(warnings, "order notification failed: "+err.Error())
		}
	}
	log.Info("order confirmed",
		zap.String("total", order.TotalPrice.String()),
		zap.Int("marmitas", len(order.Marmitas)),
		zap.Int("warnings", len(warnings)))

	return Confirmation{Order: order, Warnings: warnings}, nil
}

// confirm performs the checkout -> confirmed transition under the lock, so
// at most one confirmation runs per cart.
func (s *Session) confirm(input CheckoutInput) (models.OrderDetails, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireState("complete", StateCheckout); err != nil {
		return models.OrderDetails{}, nil, err
	}
	if len(s.cart) == 0 {
		return models.OrderDetails{}, nil, ErrEmptyCart
	}

	snap := s.catalog.Snapshot()
	hood := input.neighborhood()
	quote := pricing.NewQuote(snap, s.cart, input.DeliveryMethod, hood)
	eta := quote.EstimatedTime

	marmitas := make([]models.MarmitaItem, len(s.cart))
	for i, m := range s.cart {
		marmitas[i] = m.Clone()
	}
	order := models.OrderDetails{
		ID:             s.cartID,
		SessionID:      s.id,
		Marmitas:       marmitas,
		DeliveryMethod: input.DeliveryMethod,
		Address:        input.Address,
		PaymentMethod:  input.PaymentMethod,
		CustomerName:   input.CustomerName,
		Phone:          input.Phone,
		Observation:    s.observation,
		Subtotal:       quote.Subtotal,
		TotalPrice:     quote.Total,
		ChangeFor:      input.ChangeFor,
		EstimatedTime:  &eta,
		CreatedAt:      s.opts.Now().UTC(),
	}
	if input.DeliveryMethod == models.DeliveryMethodDelivery {
		fee := quote.DeliveryFee
		order.DeliveryFee = &fee
	}

	var warnings []string
	if !quote.ZoneMatched {
		warnings = append(warnings, ErrUnknownNeighborhood.Error())
	}
	if err := pricing.CheckChange(input.PaymentMethod, input.ChangeFor, quote.Total); err != nil {
		warnings = append(warnings, err.Error())
	}

	s.order = &order
	s.state = StateConfirmed
	return order.Clone(), warnings, nil
}

// Order returns the confirmed order, if any.
func (s *Session) Order() (models.OrderDetails, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return models.OrderDetails{}, false
	}
	return s.order.Clone(), true
}

// QuoteView is the checkout summary for a tentative delivery choice.
type QuoteView struct {
	pricing.Quote
	Warnings []string `json:"warnings,omitempty"`
}

// Quote prices the current cart for the given method and neighborhood
// without changing the session.
func (s *Session) Quote(method models.DeliveryMethod, neighborhood string, changeFor *decimal.Decimal) QuoteView {
	s.mu.Lock()
	cart := s.cart
	s.touch()
	s.mu.Unlock()

	q := pricing.NewQuote(s.catalog.Snapshot(), cart, method, neighborhood)
	view := QuoteView{Quote: q}
	if method == models.DeliveryMethodDelivery && neighborhood != "" && !q.ZoneMatched {
		view.Warnings = append(view.Warnings, ErrUnknownNeighborhood.Error())
	}
	if err := pricing.CheckChange(models.PaymentCash, changeFor, q.Total); err != nil {
		view.Warnings = append(view.Warnings, err.Error())
	}
	return view
}
