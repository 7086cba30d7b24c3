package model

import "github.com/shopspring/decimal"

// Step is the discrete position of one chat in the bot's conversation flow.
// It fully determines which inputs are legal next.
type Step string

const (
	StepNew                   Step = "new"
	StepAwaitingLanguage      Step = "awaiting_language"
	StepAwaitingShopName      Step = "awaiting_shop_name"
	StepAwaitingLocation      Step = "awaiting_location"
	StepAwaitingShopType      Step = "awaiting_shop_type"
	StepRegistered            Step = "registered"
	StepBrowsingCategories    Step = "browsing_categories"
	StepBrowsingProducts      Step = "browsing_products"
	StepCartReview            Step = "cart_review"
	StepAwaitingPaymentChoice Step = "awaiting_payment_choice"
	StepOrderConfirmed        Step = "order_confirmed"
)

// InFlow reports whether the step is part of the guided onboarding/ordering
// flow, where per-step handlers take priority over global keyword intents.
func (s Step) InFlow() bool {
	switch s {
	case StepAwaitingLanguage, StepAwaitingShopName, StepAwaitingLocation,
		StepAwaitingShopType, StepBrowsingCategories, StepBrowsingProducts,
		StepCartReview, StepAwaitingPaymentChoice:
		return true
	}
	return false
}

// CartLine is one add-to-cart action. Repeated selections of the same
// product append separate lines; quantities are never merged.
type CartLine struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ConversationState is everything the bot remembers about one chat. It is
// created lazily on first contact and lives for the process lifetime unless
// explicitly reset. Only the state machine mutates it.
type ConversationState struct {
	Step            Step
	Language        string
	ShopName        string
	Location        string
	ShopType        string
	Cart            []CartLine
	CurrentCategory string
}

func NewConversationState() *ConversationState {
	return &ConversationState{Step: StepNew, Language: "en"}
}

func (s *ConversationState) ResetCart() {
	s.Cart = nil
	s.CurrentCategory = ""
}

// CartTotal sums line subtotals with exact decimal arithmetic.
func (s *ConversationState) CartTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Cart {
		total = total.Add(l.Subtotal())
	}
	return total
}
