// Package billing prices paid registration forms and token purchases from the
// rates the operator configures.
package billing

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"eventdesk/internal/utils"
	"eventdesk/pkg/types"
)

var ErrInvalidTokenCount = errors.New("token count must be a positive integer")

type Rates struct {
	GST            float64
	ProcessingFee  float64
	TokenUnitPrice float64
}

func RatesFromConfig(config *types.Config) Rates {
	return Rates{
		GST:            config.GSTRate,
		ProcessingFee:  config.ProcessingFeeRate,
		TokenUnitPrice: config.TokenUnitPrice,
	}
}

// Breakdown is what a registrant pays for a paid form.
type Breakdown struct {
	Base          float64
	GST           float64
	ProcessingFee float64
	Total         float64
}

func (r Rates) FormPrice(base float64) Breakdown {
	if base <= 0 {
		return Breakdown{}
	}
	gst := round2(base * r.GST)
	fee := round2(base * r.ProcessingFee)
	return Breakdown{
		Base:          base,
		GST:           gst,
		ProcessingFee: fee,
		Total:         round2(base + gst + fee),
	}
}

type Quote struct {
	Tokens   int
	Subtotal float64
	GST      float64
	Total    float64
}

// ParseTokenCount accepts only positive whole numbers.
func ParseTokenCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, ErrInvalidTokenCount
	}
	return n, nil
}

func (r Rates) TokenQuote(tokens int) (Quote, error) {
	if tokens < 1 {
		return Quote{}, ErrInvalidTokenCount
	}
	subtotal := round2(float64(tokens) * r.TokenUnitPrice)
	gst := round2(subtotal * r.GST)
	return Quote{
		Tokens:   tokens,
		Subtotal: subtotal,
		GST:      gst,
		Total:    round2(subtotal + gst),
	}, nil
}

func (q Quote) Purchase(userID int64) *types.TokenPurchase {
	return &types.TokenPurchase{
		UserID:   userID,
		Tokens:   q.Tokens,
		Subtotal: q.Subtotal,
		GST:      q.GST,
		Total:    q.Total,
	}
}

// Percent renders a rate such as 0.18 as "18%".
func Percent(rate float64) string {
	return strconv.FormatFloat(round2(rate*100), 'f', -1, 64) + "%"
}

var printer = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders an amount in rupees with Indian digit grouping.
func FormatINR(amount float64) string {
	return printer.Sprint(currency.Symbol(currency.INR.Amount(amount)))
}

func round2(v float64) float64 {
	return utils.RoundFloat64(v, 2)
}
