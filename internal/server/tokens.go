package server

import (
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"eventdesk/internal/api"
	"eventdesk/internal/billing"
	"eventdesk/pkg/types"
)

type tokensPageData struct {
	types.BasePageData
	Metrics     *types.TokenMetrics
	History     []*types.PurchaseRecord
	Quote       *billing.Quote
	UnitPrice   float64
	GSTPercent  string
	TokensInput string
	FieldErrors map[string]string
}

type tokenPurchaseInput struct {
	Tokens string `form:"tokens"`
	Action string `form:"action"`
}

func (s *Service) handleGetTokens(w http.ResponseWriter, r *http.Request) {
	data := s.newTokensPage(flash(r))
	s.renderTokens(w, r, data)
}

func (s *Service) newTokensPage(base types.BasePageData) *tokensPageData {
	data := &tokensPageData{
		BasePageData: base,
		UnitPrice:    s.rates.TokenUnitPrice,
		GSTPercent:   billing.Percent(s.rates.GST),
	}
	data.Title = "Tokens"
	return data
}

// renderTokens loads the balance and purchase history side by side. A failing
// call leaves only its own section empty.
func (s *Service) renderTokens(w http.ResponseWriter, r *http.Request, data *tokensPageData) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("user not found in context")
		s.redirectWithError(w, r, "/login", "Please log in again.")
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	var (
		metrics *types.TokenMetrics
		history []*types.PurchaseRecord
	)

	// no shared cancellation, so one failing call keeps the other's section
	var g errgroup.Group
	g.Go(func() error {
		var err error
		metrics, err = s.api.TokenMetrics(ctx, user.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.api.TokenHistory(ctx, user.UserID)
		return err
	})
	err = g.Wait()
	if s.sessionRejected(w, r, err) {
		return
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.UserID).Error("failed to fetch token details")
		if data.Error == "" {
			data.Error = api.UserMessage(err)
		}
	}

	data.Metrics = metrics
	data.History = history

	s.render(w, r, "page.tokens", data)
}

func (s *Service) handlePostTokens(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("user not found in context")
		s.redirectWithError(w, r, "/login", "Please log in again.")
		return
	}

	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		s.internalServerError(w)
		return
	}

	var input tokenPurchaseInput
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		s.internalServerError(w)
		return
	}

	data := s.newTokensPage(types.BasePageData{})
	data.TokensInput = input.Tokens

	tokens, err := billing.ParseTokenCount(input.Tokens)
	if err != nil {
		data.FieldErrors = map[string]string{"tokens": "Please enter a positive integer"}
		s.renderTokens(w, r, data)
		return
	}

	quote, err := s.rates.TokenQuote(tokens)
	if err != nil {
		data.FieldErrors = map[string]string{"tokens": "Please enter a positive integer"}
		s.renderTokens(w, r, data)
		return
	}

	if input.Action == "quote" {
		data.Quote = &quote
		s.renderTokens(w, r, data)
		return
	}

	ctx, cancel := s.backendContext(r)
	defer cancel()

	id, err := s.api.PurchaseTokens(ctx, quote.Purchase(user.UserID))
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.UserID).Error("failed to purchase tokens")
		data.Quote = &quote
		data.Error = api.UserMessage(err)
		s.renderTokens(w, r, data)
		return
	}

	s.logger.WithField("user_id", user.UserID).WithField("purchase_id", id).WithField("tokens", tokens).Info("tokens purchased")
	s.redirectWithNotice(w, r, "/tokens", fmt.Sprintf("Successfully purchased %d tokens!", tokens))
}
