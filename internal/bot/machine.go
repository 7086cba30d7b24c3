package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"souksync/internal/domain/model"
	"souksync/internal/domain/ports/adapter"
	"souksync/internal/domain/ports/repository"
	"souksync/internal/infra/i18n"
	"souksync/internal/infra/logging"
	"souksync/internal/infra/metrics"
)

const startCommand = "/start"

const deliveryWindow = "Tomorrow 8AM-12PM"

// Machine interprets one inbound text or callback payload for one chat and
// produces outbound messages plus a state transition. Events for the same
// chat are serialized by the Store; sends happen inside that critical
// section so replies leave in order.
type Machine struct {
	store  repository.ConversationStore
	copy   *i18n.Copy
	msg    adapter.Messenger
	orders repository.OrderRepository
	log    *zerolog.Logger
}

func NewMachine(store repository.ConversationStore, copy *i18n.Copy, msg adapter.Messenger, orders repository.OrderRepository, log *zerolog.Logger) *Machine {
	return &Machine{store: store, copy: copy, msg: msg, orders: orders, log: log}
}

// HandleText processes one typed message for a chat.
func (m *Machine) HandleText(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	ctx = logging.WithChatID(ctx, chatID)
	m.store.Mutate(chatID, func(st *model.ConversationState) {
		m.dispatch(ctx, chatID, st, text)
	})
}

// HandleCallback acknowledges the callback first, then treats its data
// payload exactly like typed text.
func (m *Machine) HandleCallback(ctx context.Context, chatID int64, callbackID, data string) {
	if err := m.msg.AnswerCallback(ctx, callbackID); err != nil {
		logging.With(ctx, m.log).Warn().Err(err).Msg("answer callback failed")
	}
	m.HandleText(ctx, chatID, data)
}

func (m *Machine) dispatch(ctx context.Context, chatID int64, st *model.ConversationState, text string) {
	lower := strings.ToLower(text)

	if lower == startCommand || st.Step == model.StepNew {
		st.Step = model.StepAwaitingLanguage
		m.send(ctx, chatID, m.copy.Render("welcome", "en", nil))
		return
	}

	switch st.Step {
	case model.StepAwaitingLanguage:
		m.setLanguage(ctx, chatID, st, text)
		return
	case model.StepAwaitingShopName:
		m.setShopName(ctx, chatID, st, text)
		return
	case model.StepAwaitingLocation:
		m.setLocation(ctx, chatID, st, text)
		return
	case model.StepAwaitingShopType:
		m.setShopType(ctx, chatID, st, text)
		return
	case model.StepBrowsingCategories:
		m.browseCategory(ctx, chatID, st, text)
		return
	case model.StepBrowsingProducts:
		m.addToCart(ctx, chatID, st, text)
		return
	case model.StepCartReview:
		m.cartAction(ctx, chatID, st, lower)
		return
	case model.StepAwaitingPaymentChoice:
		m.paymentChoice(ctx, chatID, st, text)
		return
	}

	switch matchIntent(lower) {
	case IntentHelp:
		m.send(ctx, chatID, m.copy.Render("help", st.Language, nil))
	case IntentOrder:
		m.startOrder(ctx, chatID, st)
	case IntentCredit:
		m.send(ctx, chatID, m.copy.Render("credit_soon", st.Language, nil))
	default:
		m.send(ctx, chatID, m.copy.Render("unknown", st.Language, nil))
	}
}

var langChoices = map[string]string{"1": "am", "2": "om", "3": "en"}

func (m *Machine) setLanguage(ctx context.Context, chatID int64, st *model.ConversationState, text string) {
	lang, ok := langChoices[strings.TrimSpace(text)]
	if !ok {
		m.send(ctx, chatID, m.copy.Render("lang_reprompt", st.Language, nil))
		return
	}
	st.Language = lang
	st.Step = model.StepAwaitingShopName
	m.send(ctx, chatID, m.copy.Render("lang_set", lang, nil))
	m.send(ctx, chatID, m.copy.Render("ask_shop_name", lang, nil))
}

func (m *Machine) setShopName(ctx context.Context, chatID int64, st *model.ConversationState, text string) {
	st.ShopName = text
	st.Step = model.StepAwaitingLocation
	ack := m.copy.Render("shop_name_ack", st.Language, map[string]string{"shop_name": text})
	m.send(ctx, chatID, ack+"\n\n"+m.copy.Render("ask_location", st.Language, nil))
}

func (m *Machine) setLocation(ctx context.Context, chatID int64, st *model.ConversationState, text string) {
	if named, ok := Locations[strings.TrimSpace(text)]; ok {
		st.Location = named
	} else {
		st.Location = text
	}
	st.Step = model.StepAwaitingShopType
	m.send(ctx, chatID, m.copy.Render("ask_shop_type", st.Language, nil))
}

func (m *Machine) setShopType(ctx context.Context, chatID int64, st *model.ConversationState, text string) {
	if named, ok := ShopTypes[strings.TrimSpace(text)]; ok {
		st.ShopType = named
	} else {
		st.ShopType = text
	}
	st.Step = model.StepRegistered
	m.send(ctx, chatID, m.copy.Render("registration_complete", st.Language, map[string]string{
		"shop_name": st.ShopName,
		"location":  st.Location,
		"shop_type": st.ShopType,
	}))
}

func (m *Machine) startOrder(ctx context.Context, chatID int64, st *model.ConversationState) {
	st.Step = model.StepBrowsingCategories
	st.ResetCart()
	m.send(ctx, chatID, m.copy.Render("categories", st.Language, nil))
}

func (m *Machine) browseCategory(ctx context.Context, chatID int64, st *model.ConversationState, text string) {
	key := strings.TrimSpace(text)
	products, ok := Catalog[key]
	if !ok {
		m.send(ctx, chatID, m.copy.Render("categories", st.Language, nil))
		return
	}
	st.CurrentCategory = key
	st.Step = model.StepBrowsingProducts
	m.send(ctx, chatID, renderProducts(products, m.copy.Render("products_footer", st.Language, nil)))
}

func (m *Machine) addToCart(ctx context.Context, chatID int64, st *model.ConversationState, text string) {
	lower := strings.ToLower(strings.TrimSpace(text))

	if lower == "back" {
		st.Step = model.StepBrowsingCategories
		m.send(ctx, chatID, m.copy.Render("categories", st.Language, nil))
		return
	}
	if isAny(lower, cartWords) {
		m.showCart(ctx, chatID, st)
		return
	}

	products := Catalog[st.CurrentCategory]
	if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil && n >= 1 && n <= len(products) {
		pr := products[n-1]
		st.Cart = append(st.Cart, model.CartLine{Name: pr.Name, UnitPrice: pr.Price, Quantity: 1})
		m.send(ctx, chatID, m.copy.Render("cart_added", st.Language, map[string]string{
			"name":  pr.Name,
			"price": pr.Price.String(),
			"count": strconv.Itoa(len(st.Cart)),
		}))
		return
	}

	if containsAny(lower, checkoutKeywords) {
		m.showCart(ctx, chatID, st)
		return
	}

	m.send(ctx, chatID, m.copy.Render("products_hint", st.Language, nil))
}

// showCart renders the current cart and moves the chat to cart review. An
// empty cart instead falls back to the category menu.
func (m *Machine) showCart(ctx context.Context, chatID int64, st *model.ConversationState) {
	if len(st.Cart) == 0 {
		m.send(ctx, chatID, m.copy.Render("cart_empty", st.Language, nil))
		st.Step = model.StepBrowsingCategories
		m.send(ctx, chatID, m.copy.Render("categories", st.Language, nil))
		return
	}

	var sb strings.Builder
	for i, l := range st.Cart {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("  • " + l.Name + " x" + strconv.Itoa(l.Quantity) + " — ETB " + l.UnitPrice.String())
	}
	st.Step = model.StepCartReview
	m.send(ctx, chatID, m.copy.Render("cart_summary", st.Language, map[string]string{
		"items": sb.String(),
		"total": st.CartTotal().String(),
	}))
}

func (m *Machine) cartAction(ctx context.Context, chatID int64, st *model.ConversationState, lower string) {
	if containsAny(lower, checkoutKeywords) || isAny(lower, affirmativeWords) {
		st.Step = model.StepAwaitingPaymentChoice
		m.send(ctx, chatID, m.copy.Render("payment_choice", st.Language, nil))
		return
	}
	if containsAny(lower, cancelKeywords) {
		st.ResetCart()
		st.Step = model.StepRegistered
		m.send(ctx, chatID, m.copy.Render("cart_cleared", st.Language, nil))
		return
	}
	if isAny(lower, editWords) {
		st.ResetCart()
		st.Step = model.StepBrowsingCategories
		m.send(ctx, chatID, m.copy.Render("cart_edit_cleared", st.Language, nil)+"\n"+m.copy.Render("categories", st.Language, nil))
		return
	}
	m.showCart(ctx, chatID, st)
}

func (m *Machine) paymentChoice(ctx context.Context, chatID int64, st *model.ConversationState, text string) {
	choice := strings.TrimSpace(text)
	if choice != "1" && choice != "2" {
		m.send(ctx, chatID, m.copy.Render("payment_reprompt", st.Language, nil))
		return
	}

	method := model.PaymentPayNow
	if choice == "2" {
		method = model.PaymentBNPL
	}

	order := model.NewOrder(chatID, st.Cart, method)
	logging.With(ctx, m.log).Info().
		Str("order_id", order.ID).
		Int("items", len(order.Lines)).
		Str("total", order.Total.String()).
		Str("payment", string(order.PaymentMethod)).
		Msg("order_created")
	metrics.IncOrderPlaced(string(order.PaymentMethod))

	if m.orders != nil {
		if err := m.orders.Save(ctx, repository.NoTX, order); err != nil {
			logging.With(ctx, m.log).Warn().Err(err).Str("order_id", order.ID).Msg("order persist failed")
		}
	}

	// The confirmed marker is visible only within this handler; the chat
	// lands back in the idle state before the next event is observed.
	st.Step = model.StepOrderConfirmed
	m.send(ctx, chatID, m.copy.Render("order_confirmed", st.Language, map[string]string{
		"order_id": order.ID,
		"window":   deliveryWindow,
	}))

	st.ResetCart()
	st.Step = model.StepRegistered
}

// send delivers a reply and swallows failures; delivery problems are the
// messenger's to log.
func (m *Machine) send(ctx context.Context, chatID int64, text string) {
	_ = m.msg.SendMessage(ctx, chatID, text)
}
