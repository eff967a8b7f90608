package services

import (
	"context"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/arzan03/FitnexFitness/internal/db"
	"github.com/arzan03/FitnexFitness/internal/logger"
	"github.com/arzan03/FitnexFitness/internal/models"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// IntentCurrency is the only currency the site charges in.
const IntentCurrency = "usd"

// IntentCreator creates a hosted payment intent and returns its client secret.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
}

// StripeIntents creates payment intents through the Stripe API.
type StripeIntents struct {
	client *paymentintent.Client
}

func NewStripeIntents(secretKey string) *StripeIntents {
	return &StripeIntents{
		client: &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (s *StripeIntents) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := s.client.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}

// decimalLiteral is a plain decimal number with an optional short exponent.
// big.Rat alone would also take fractions, hex and digit separators.
var decimalLiteral = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]{1,3})?$`)

// ToMinorUnits converts a decimal price into cents, truncating any fraction
// of a cent. The literal is evaluated exactly, so 29.99 is 2999 and 10.005 is 1000.
func ToMinorUnits(price models.Price) (int64, error) {
	literal := strings.TrimSpace(string(price))
	if !decimalLiteral.MatchString(literal) {
		return 0, fmt.Errorf("invalid price %q: %w", string(price), ErrBadRequest)
	}
	r, ok := new(big.Rat).SetString(literal)
	if !ok {
		return 0, fmt.Errorf("invalid price %q: %w", string(price), ErrBadRequest)
	}
	if r.Sign() < 0 {
		return 0, fmt.Errorf("negative price %q: %w", string(price), ErrBadRequest)
	}
	r.Mul(r, big.NewRat(100, 1))
	cents := new(big.Int).Quo(r.Num(), r.Denom())
	if !cents.IsInt64() {
		return 0, fmt.Errorf("price %q out of range: %w", string(price), ErrBadRequest)
	}
	return cents.Int64(), nil
}

// PaymentService bridges the payment provider and the payments collection.
type PaymentService struct {
	store   db.Store
	intents IntentCreator
}

func NewPaymentService(store db.Store, intents IntentCreator) *PaymentService {
	return &PaymentService{store: store, intents: intents}
}

// CreateIntent requests an intent for price and returns its client secret.
func (s *PaymentService) CreateIntent(ctx context.Context, price models.Price) (string, error) {
	amount, err := ToMinorUnits(price)
	if err != nil {
		return "", err
	}
	secret, err := s.intents.CreateIntent(ctx, amount, IntentCurrency)
	if err != nil {
		logger.Get().Error("payment intent creation failed", zap.Int64("amount", amount), zap.Error(err))
		return "", fmt.Errorf("create intent: %v: %w", err, ErrPaymentProvider)
	}
	return secret, nil
}

// RecordResult is the response of RecordPayment.
type RecordResult struct {
	PaymentResult *InsertAck `json:"paymentResult"`
	DeleteResult  *DeleteAck `json:"deleteResult"`
}

// RecordPayment stores the payment, then removes the paid cart entries.
// Cart entries live in the payments collection itself; the two steps are not
// transactional and a failed cleanup leaves the inserted payment in place.
func (s *PaymentService) RecordPayment(ctx context.Context, payment models.Document) (*RecordResult, error) {
	payments := s.store.Collection(db.PaymentsCollection)

	res, err := payments.InsertOne(ctx, payment.Without("_id"))
	if err != nil {
		return nil, fmt.Errorf("insert payment: %v: %w", err, ErrStore)
	}
	result := &RecordResult{PaymentResult: insertAck(res), DeleteResult: &DeleteAck{Acknowledged: true}}

	cartIDs := payment.Strings("cartIds")
	ids := make([]primitive.ObjectID, 0, len(cartIDs))
	for _, id := range cartIDs {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			logger.Get().Warn("skipping malformed cart id", zap.String("cart_id", id))
			continue
		}
		ids = append(ids, objID)
	}
	if len(ids) == 0 {
		return result, nil
	}

	del, err := payments.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		logger.Get().Error("cart cleanup failed after payment insert",
			zap.Any("payment_id", res.InsertedID), zap.Error(err))
		return nil, fmt.Errorf("delete cart items: %v: %w", err, ErrStore)
	}
	result.DeleteResult = deleteAck(del)
	return result, nil
}

// History lists payments recorded for an email.
func (s *PaymentService) History(ctx context.Context, email string) ([]bson.M, error) {
	cursor, err := s.store.Collection(db.PaymentsCollection).Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("find payments: %v: %w", err, ErrStore)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode payments: %v: %w", err, ErrStore)
	}
	return docs, nil
}
