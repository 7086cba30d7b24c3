//go:build !integration

package bot_test

import (
	"sync"
	"testing"

	"souksync/internal/bot"
	"souksync/internal/domain/model"
)

func TestStore_FreshStateDefaults(t *testing.T) {
	store := bot.NewStore()

	st := store.Get(1)
	if st.Step != model.StepNew {
		t.Errorf("expected step %q, got %q", model.StepNew, st.Step)
	}
	if st.Language != "en" {
		t.Errorf("expected default language en, got %q", st.Language)
	}
	if len(st.Cart) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(st.Cart))
	}
}

func TestStore_MutationsPersist(t *testing.T) {
	store := bot.NewStore()

	store.Mutate(2, func(st *model.ConversationState) {
		st.Step = model.StepRegistered
		st.ShopName = "Corner Kiosk"
	})

	st := store.Get(2)
	if st.Step != model.StepRegistered || st.ShopName != "Corner Kiosk" {
		t.Errorf("mutation lost: %q / %q", st.Step, st.ShopName)
	}
}

func TestStore_ChatsAreIsolated(t *testing.T) {
	store := bot.NewStore()

	store.Mutate(3, func(st *model.ConversationState) { st.Language = "am" })
	store.Mutate(4, func(st *model.ConversationState) { st.Language = "om" })

	if got := store.Get(3).Language; got != "am" {
		t.Errorf("chat 3 expected am, got %q", got)
	}
	if got := store.Get(4).Language; got != "om" {
		t.Errorf("chat 4 expected om, got %q", got)
	}
}

func TestStore_Reset(t *testing.T) {
	store := bot.NewStore()
	store.Mutate(5, func(st *model.ConversationState) { st.Step = model.StepRegistered })

	store.Reset(5)

	if got := store.Get(5).Step; got != model.StepNew {
		t.Errorf("reset chat should start fresh, got %q", got)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := bot.NewStore()
	store.Mutate(6, func(st *model.ConversationState) {
		st.Cart = append(st.Cart, model.CartLine{Name: "Soap Bar", Quantity: 1})
	})

	st := store.Get(6)
	st.Cart[0].Name = "tampered"
	st.Step = model.StepCartReview

	fresh := store.Get(6)
	if fresh.Cart[0].Name != "Soap Bar" {
		t.Errorf("cart line mutated through copy: %q", fresh.Cart[0].Name)
	}
	if fresh.Step != model.StepNew {
		t.Errorf("step mutated through copy: %q", fresh.Step)
	}
}

func TestStore_ConcurrentMutations(t *testing.T) {
	store := bot.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Mutate(7, func(st *model.ConversationState) {
				st.Cart = append(st.Cart, model.CartLine{Name: "Biscuit Pack", Quantity: 1})
			})
		}()
	}
	wg.Wait()

	if got := len(store.Get(7).Cart); got != 50 {
		t.Errorf("expected 50 cart lines, got %d", got)
	}
}
