package order

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"marmitaria/internal/catalog"
	"marmitaria/internal/composition"
	"marmitaria/internal/models"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	orders []models.OrderDetails
	err    error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, order models.OrderDetails) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orders = append(d.orders, order)
	return d.err
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.orders)
}

type failingStore struct{ calls atomic.Int32 }

func (f *failingStore) Save(context.Context, models.OrderDetails) error {
	f.calls.Add(1)
	return errors.New("store offline")
}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	return NewSession(catalog.NewLive(catalog.MustNew(catalog.Defaults())), opts)
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// addMeal commits a marmita with rice and one meat plus the given extras.
func addMeal(t *testing.T, s *Session, size models.Size, extras ...string) models.MarmitaItem {
	t.Helper()
	mustDo(t, s.SelectSize(size))
	mustDo(t, s.ToggleIngredient("rice-1"))
	mustDo(t, s.ToggleIngredient("meat-1"))
	for _, id := range extras {
		mustDo(t, s.ToggleExtra(id))
	}
	item, err := s.AddMarmita()
	mustDo(t, err)
	return item
}

func deliveryInput() CheckoutInput {
	return CheckoutInput{
		CustomerName:   " Maria ",
		Phone:          "(62) 99999-1234",
		DeliveryMethod: models.DeliveryMethodDelivery,
		PaymentMethod:  models.PaymentPix,
		Address: &models.Address{
			Street:       "Rua 1",
			Number:       "10",
			Neighborhood: "Jd. Olímpico",
			City:         "Goiânia",
		},
	}
}

func TestAddMarmitaCommitsAndResetsDraft(t *testing.T) {
	s := newTestSession(t, Options{})
	item := addMeal(t, s, models.SizeLarge, "extra-1")

	if item.ID == "" || item.Size != models.SizeLarge {
		t.Fatalf("unexpected item %+v", item)
	}
	if len(item.Ingredients) != 2 || len(item.Extras) != 1 {
		t.Fatalf("expected 2 ingredients and 1 extra, got %+v", item)
	}

	v := s.View()
	if len(v.Cart) != 1 || !v.Cart[0].Price.Equal(decimal.NewFromInt(24)) {
		t.Fatalf("unexpected cart %+v", v.Cart)
	}
	if v.Draft.Size != models.SizeMedium || len(v.Draft.Ingredients) != 0 || len(v.Draft.Extras) != 0 {
		t.Fatalf("expected draft reset to medium and empty, got %+v", v.Draft)
	}
}

func TestAddMarmitaRejectsIncompleteMeal(t *testing.T) {
	s := newTestSession(t, Options{})
	mustDo(t, s.ToggleIngredient("meat-1"))

	if _, err := s.AddMarmita(); !errors.Is(err, composition.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	v := s.View()
	if len(v.Cart) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(v.Cart))
	}
	if len(v.Draft.Ingredients) != 1 {
		t.Fatalf("expected draft to keep its selection, got %v", v.Draft.Ingredients)
	}
}

func TestThirdMeatBlockedUntilOneRemoved(t *testing.T) {
	s := newTestSession(t, Options{})
	mustDo(t, s.ToggleIngredient("rice-1"))
	mustDo(t, s.ToggleIngredient("meat-1"))
	mustDo(t, s.ToggleIngredient("meat-2"))

	if err := s.ToggleIngredient("meat-3"); !errors.Is(err, composition.ErrNotSelectable) {
		t.Fatalf("expected third meat refused, got %v", err)
	}
	mustDo(t, s.ToggleIngredient("meat-2"))
	mustDo(t, s.ToggleIngredient("meat-3"))
	if _, err := s.AddMarmita(); err != nil {
		t.Fatalf("expected commit after swap, got %v", err)
	}
}

func TestToggleExtraRefusesUnknownExtra(t *testing.T) {
	s := newTestSession(t, Options{})
	if err := s.ToggleExtra("extra-404"); !errors.Is(err, ErrExtraUnavailable) {
		t.Fatalf("expected ErrExtraUnavailable, got %v", err)
	}
	mustDo(t, s.ToggleExtra("extra-2"))
	mustDo(t, s.ToggleExtra("extra-2"))
	if got := s.View().Draft.Extras; len(got) != 0 {
		t.Fatalf("expected extra toggled off, got %v", got)
	}
}

func TestSelectSizeRejectsUnknownSize(t *testing.T) {
	s := newTestSession(t, Options{})
	if err := s.SelectSize("huge"); !errors.Is(err, ErrUnknownSize) {
		t.Fatalf("expected ErrUnknownSize, got %v", err)
	}
}

func TestRemoveMarmita(t *testing.T) {
	s := newTestSession(t, Options{})
	first := addMeal(t, s, models.SizeSmall)
	second := addMeal(t, s, models.SizeMedium)

	mustDo(t, s.RemoveMarmita(first.ID))
	v := s.View()
	if len(v.Cart) != 1 || v.Cart[0].ID != second.ID {
		t.Fatalf("expected only second meal left, got %+v", v.Cart)
	}
	if err := s.RemoveMarmita(first.ID); !errors.Is(err, ErrMarmitaNotFound) {
		t.Fatalf("expected ErrMarmitaNotFound, got %v", err)
	}
}

func TestCheckoutWithEmptyCartIsNoop(t *testing.T) {
	s := newTestSession(t, Options{})
	if err := s.ProceedToCheckout(); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if s.State() != StateBuilding {
		t.Fatalf("expected building, got %s", s.State())
	}
}

func TestBackToBuilderOnlyFromCheckout(t *testing.T) {
	s := newTestSession(t, Options{})
	if err := s.BackToBuilder(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	addMeal(t, s, models.SizeSmall)
	mustDo(t, s.ProceedToCheckout())
	if err := s.ToggleIngredient("rice-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected builder ops refused during checkout, got %v", err)
	}
	mustDo(t, s.BackToBuilder())
	if s.State() != StateBuilding || len(s.View().Cart) != 1 {
		t.Fatal("expected back in builder with the cart intact")
	}
}

func TestCompleteDeliveryOrder(t *testing.T) {
	d := &recordingDispatcher{}
	s := newTestSession(t, Options{Dispatcher: d})
	addMeal(t, s, models.SizeMedium, "extra-1")
	addMeal(t, s, models.SizeSmall)
	mustDo(t, s.SetObservation("sem cebola"))
	mustDo(t, s.ProceedToCheckout())

	conf, err := s.Complete(context.Background(), deliveryInput())
	mustDo(t, err)

	o := conf.Order
	if !o.TotalPrice.Equal(decimal.NewFromInt(37)) || !o.Subtotal.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("expected subtotal 35 and total 37, got %s and %s", o.Subtotal, o.TotalPrice)
	}
	if o.DeliveryFee == nil || !o.DeliveryFee.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected delivery fee 2, got %v", o.DeliveryFee)
	}
	if o.EstimatedTime == nil || *o.EstimatedTime != (models.EstimatedTime{Min: 60, Max: 90}) {
		t.Fatalf("unexpected estimated time %v", o.EstimatedTime)
	}
	if o.Phone != "62999991234" || o.CustomerName != "Maria" || o.Observation != "sem cebola" {
		t.Fatalf("unexpected customer fields %+v", o)
	}
	if len(conf.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", conf.Warnings)
	}
	if s.State() != StateConfirmed || d.count() != 1 {
		t.Fatalf("expected confirmed and one dispatch, got %s and %d", s.State(), d.count())
	}
}

func TestCompletePickupDropsAddress(t *testing.T) {
	s := newTestSession(t, Options{})
	addMeal(t, s, models.SizeLarge)
	mustDo(t, s.ProceedToCheckout())

	in := deliveryInput()
	in.DeliveryMethod = models.DeliveryMethodPickup
	in.Address.Street = ""
	conf, err := s.Complete(context.Background(), in)
	mustDo(t, err)

	if conf.Order.Address != nil || conf.Order.DeliveryFee != nil {
		t.Fatalf("expected pickup order without address or fee, got %+v", conf.Order)
	}
	if !conf.Order.TotalPrice.Equal(decimal.NewFromInt(22)) {
		t.Fatalf("expected total 22, got %s", conf.Order.TotalPrice)
	}
	if *conf.Order.EstimatedTime != (models.EstimatedTime{Min: 20, Max: 20}) {
		t.Fatalf("unexpected pickup time %v", conf.Order.EstimatedTime)
	}
}

func TestCompleteValidatesCheckoutFields(t *testing.T) {
	s := newTestSession(t, Options{})
	addMeal(t, s, models.SizeSmall)
	mustDo(t, s.ProceedToCheckout())

	in := deliveryInput()
	in.Address = nil
	in.Phone = "---"
	_, err := s.Complete(context.Background(), in)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	fields := map[string]bool{}
	for _, fe := range verrs {
		fields[fe.Field()] = true
	}
	if !fields["Address"] || !fields["Phone"] {
		t.Fatalf("expected address and phone errors, got %v", verrs)
	}
	if s.State() != StateCheckout {
		t.Fatalf("expected to stay in checkout, got %s", s.State())
	}
}

func TestCompleteRejectsNonPositiveChange(t *testing.T) {
	for _, raw := range []string{"0", "-5.00"} {
		s := newTestSession(t, Options{})
		addMeal(t, s, models.SizeSmall)
		mustDo(t, s.ProceedToCheckout())

		in := deliveryInput()
		in.PaymentMethod = models.PaymentCash
		amount := decimal.RequireFromString(raw)
		in.ChangeFor = &amount

		_, err := s.Complete(context.Background(), in)
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || verrs[0].Field() != "ChangeFor" {
			t.Fatalf("changeFor %s: expected a ChangeFor validation error, got %v", raw, err)
		}
		if s.State() != StateCheckout {
			t.Fatalf("changeFor %s: expected to stay in checkout, got %s", raw, s.State())
		}
	}
}

func TestCompleteFlagsChangeBelowTotalWithoutBlocking(t *testing.T) {
	s := newTestSession(t, Options{})
	addMeal(t, s, models.SizeMedium, "extra-1")
	addMeal(t, s, models.SizeSmall)
	mustDo(t, s.ProceedToCheckout())

	in := deliveryInput()
	in.PaymentMethod = models.PaymentCash
	ten := decimal.RequireFromString("10.00")
	in.ChangeFor = &ten

	conf, err := s.Complete(context.Background(), in)
	mustDo(t, err)
	if len(conf.Warnings) != 1 || conf.Warnings[0] != "change for R$ 10.00 is less than the total R$ 37.00" {
		t.Fatalf("expected change warning, got %v", conf.Warnings)
	}
	if conf.Order.ChangeFor == nil || !conf.Order.ChangeFor.Equal(ten) {
		t.Fatalf("expected change amount kept on the order, got %v", conf.Order.ChangeFor)
	}
}

func TestCompleteWarnsOnUnknownNeighborhood(t *testing.T) {
	s := newTestSession(t, Options{})
	addMeal(t, s, models.SizeSmall)
	mustDo(t, s.ProceedToCheckout())

	in := deliveryInput()
	in.Address.Neighborhood = "Centro"
	conf, err := s.Complete(context.Background(), in)
	mustDo(t, err)

	if !conf.Order.DeliveryFee.IsZero() || len(conf.Warnings) != 1 || conf.Warnings[0] != ErrUnknownNeighborhood.Error() {
		t.Fatalf("expected free delivery with warning, got fee %v warnings %v", conf.Order.DeliveryFee, conf.Warnings)
	}
}

func TestCollaboratorFailuresDoNotRollBack(t *testing.T) {
	d := &recordingDispatcher{err: errors.New("evolution api down")}
	store := &failingStore{}
	s := newTestSession(t, Options{Dispatcher: d, Store: store})
	addMeal(t, s, models.SizeSmall)
	mustDo(t, s.ProceedToCheckout())

	conf, err := s.Complete(context.Background(), deliveryInput())
	mustDo(t, err)

	if s.State() != StateConfirmed {
		t.Fatalf("expected confirmed, got %s", s.State())
	}
	if len(conf.Warnings) != 2 || store.calls.Load() != 1 || d.count() != 1 {
		t.Fatalf("expected two warnings after one save and one dispatch, got %v", conf.Warnings)
	}
}

func TestCompleteRunsAtMostOncePerCart(t *testing.T) {
	d := &recordingDispatcher{}
	s := newTestSession(t, Options{Dispatcher: d})
	addMeal(t, s, models.SizeSmall)
	mustDo(t, s.ProceedToCheckout())

	var wg sync.WaitGroup
	var ok atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Complete(context.Background(), deliveryInput()); err == nil {
				ok.Add(1)
			} else if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || d.count() != 1 {
		t.Fatalf("expected one confirmation and one dispatch, got %d and %d", ok.Load(), d.count())
	}
}

func TestConfirmedOrderIsFrozen(t *testing.T) {
	s := newTestSession(t, Options{})
	addMeal(t, s, models.SizeSmall)
	mustDo(t, s.ProceedToCheckout())
	conf, err := s.Complete(context.Background(), deliveryInput())
	mustDo(t, err)

	conf.Order.Marmitas[0].Ingredients[0] = "tampered"
	conf.Order.Address.Street = "tampered"

	stored, ok := s.Order()
	if !ok {
		t.Fatal("expected confirmed order")
	}
	if stored.Marmitas[0].Ingredients[0] != "rice-1" || stored.Address.Street != "Rua 1" {
		t.Fatalf("confirmed order was mutated through the returned copy: %+v", stored)
	}
}

func TestNewOrderStartsFreshCart(t *testing.T) {
	s := newTestSession(t, Options{})
	addMeal(t, s, models.SizeLarge, "extra-3")
	mustDo(t, s.SetObservation("bem passado"))
	mustDo(t, s.ToggleIngredient("rice-1"))
	mustDo(t, s.SelectSize(models.SizeSmall))
	mustDo(t, s.ProceedToCheckout())

	if err := s.NewOrder(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected new order refused before confirmation, got %v", err)
	}

	before := s.View()
	_, err := s.Complete(context.Background(), deliveryInput())
	mustDo(t, err)
	mustDo(t, s.NewOrder())

	after := s.View()
	if after.State != StateBuilding || after.Order != nil {
		t.Fatalf("expected building without order, got %+v", after)
	}
	if len(after.Cart) != 0 || after.Observation != "" {
		t.Fatalf("expected empty cart and observation, got %+v", after)
	}
	if after.Draft.Size != models.SizeMedium || len(after.Draft.Ingredients) != 0 || len(after.Draft.Extras) != 0 {
		t.Fatalf("expected empty draft, got %+v", after.Draft)
	}
	if after.CartID == before.CartID {
		t.Fatal("expected a new cart identity")
	}
}

func TestQuoteFlagsProblemsWithoutChangingState(t *testing.T) {
	s := newTestSession(t, Options{})
	addMeal(t, s, models.SizeMedium, "extra-1")
	addMeal(t, s, models.SizeSmall)

	ten := decimal.NewFromInt(10)
	q := s.Quote(models.DeliveryMethodDelivery, "Jd. Olímpico", &ten)
	if !q.Total.Equal(decimal.NewFromInt(37)) || len(q.Warnings) != 1 {
		t.Fatalf("unexpected quote %+v", q)
	}

	q = s.Quote(models.DeliveryMethodDelivery, "Centro", nil)
	if !q.DeliveryFee.IsZero() || len(q.Warnings) != 1 {
		t.Fatalf("expected unmatched neighborhood warning, got %+v", q)
	}
	if s.State() != StateBuilding {
		t.Fatalf("quote changed state to %s", s.State())
	}
}

func TestExtrasRepricedFromLiveCatalog(t *testing.T) {
	live := catalog.NewLive(catalog.MustNew(catalog.Defaults()))
	s := NewSession(live, Options{})
	addMeal(t, s, models.SizeMedium, "extra-1")

	data := catalog.Defaults()
	data.Extras[0].Price = decimal.NewFromInt(5)
	live.Replace(catalog.MustNew(data))

	if got := s.View().Subtotal; !got.Equal(decimal.NewFromInt(23)) {
		t.Fatalf("expected extra repriced to 5, got subtotal %s", got)
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestRegistrySweepsIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(catalog.NewLive(catalog.MustNew(catalog.Defaults())), Options{Now: clock.Now})

	stale := r.Create()
	clock.Advance(20 * time.Minute)
	fresh := r.Create()
	clock.Advance(15 * time.Minute)
	mustDo(t, fresh.SetObservation("still here"))

	if n := r.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("expected one session swept, got %d", n)
	}
	if _, err := r.Get(stale.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected stale session gone, got %v", err)
	}
	if _, err := r.Get(fresh.ID()); err != nil {
		t.Fatalf("expected fresh session kept, got %v", err)
	}
	if !r.Delete(fresh.ID()) || r.Len() != 0 {
		t.Fatal("expected delete to empty the registry")
	}
}

func TestDeactivatedPickDoesNotOpenItsSlot(t *testing.T) {
	data := catalog.Defaults()
	data.Ingredients = append(data.Ingredients,
		models.Ingredient{ID: "rice-2", Name: "Arroz Integral", Category: models.CategoryRice, Active: true})
	live := catalog.NewLive(catalog.MustNew(data))
	s := NewSession(live, Options{})

	setActive := func(id string, active bool) {
		for i := range data.Ingredients {
			if data.Ingredients[i].ID == id {
				data.Ingredients[i].Active = active
			}
		}
		live.Replace(catalog.MustNew(data))
	}

	mustDo(t, s.ToggleIngredient("rice-1"))
	mustDo(t, s.ToggleIngredient("meat-1"))
	setActive("rice-1", false)
	mustDo(t, s.ToggleIngredient("rice-2"))
	setActive("rice-1", true)

	draft := s.View().Draft
	if !slices.Equal(draft.Ingredients, []string{"meat-1", "rice-2"}) {
		t.Fatalf("expected the deactivated rice to be dropped, got %v", draft.Ingredients)
	}
	if !draft.Complete {
		t.Fatal("expected one rice and one meat to be complete")
	}

	item, err := s.AddMarmita()
	mustDo(t, err)
	if !slices.Equal(item.Ingredients, []string{"meat-1", "rice-2"}) {
		t.Fatalf("unexpected committed ingredients %v", item.Ingredients)
	}
}

func TestAddMarmitaValidatesWithoutDeactivatedPicks(t *testing.T) {
	data := catalog.Defaults()
	live := catalog.NewLive(catalog.MustNew(data))
	s := NewSession(live, Options{})

	mustDo(t, s.ToggleIngredient("rice-1"))
	mustDo(t, s.ToggleIngredient("meat-1"))
	mustDo(t, s.ToggleIngredient("meat-2"))
	for i := range data.Ingredients {
		if data.Ingredients[i].ID == "meat-1" {
			data.Ingredients[i].Active = false
		}
	}
	live.Replace(catalog.MustNew(data))

	item, err := s.AddMarmita()
	mustDo(t, err)
	if !slices.Equal(item.Ingredients, []string{"rice-1", "meat-2"}) {
		t.Fatalf("unexpected committed ingredients %v", item.Ingredients)
	}
}
