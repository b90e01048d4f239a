package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"pagamentos_xpto/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/sony/gobreaker"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
var ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")

// MercadoPagoGateway creates checkouts and polls payment status at Mercado
// Pago. All provider calls go through a circuit breaker so a provider outage
// fails fast instead of tying up workflow activity retries.

type MercadoPagoGateway struct {
	prefClient      preference.Client
	payClient       payment.Client
	breaker         *gobreaker.CircuitBreaker
	notificationURL string
	backURL         string
	mockMode        bool
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	g := &MercadoPagoGateway{
		notificationURL: os.Getenv("MERCADOPAGO_NOTIFICATION_URL"),
		backURL:         os.Getenv("MERCADOPAGO_BACK_URL"),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "mercadopago",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("[payment][gateway] breaker %s state %s -> %s", name, from, to)
			},
		}),
	}

	if isPaymentGatewayMockEnabled() {
		log.Printf("[payment][gateway] mock mode enabled")
		g.mockMode = true
		return g, nil
	}

	if accessToken == "" {
		log.Printf("[payment][gateway] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		log.Printf("[payment][gateway] failed creating sdk config err=%v", err)
		return nil, err
	}
	g.prefClient = preference.NewClient(cfg)
	g.payClient = payment.NewClient(cfg)
	log.Printf("[payment][gateway] Mercado Pago client initialized")
	return g, nil
}

// CreateCheckout creates a checkout preference keyed by the internal payment
// id, so provider notifications carry a reference we can resolve directly.
func (g *MercadoPagoGateway) CreateCheckout(ctx context.Context, req interfaces.CheckoutRequest) (interfaces.CheckoutResult, error) {
	if g.mockMode {
		log.Printf("[payment][gateway] mock checkout created payment_id=%s amount=%.2f", req.PaymentID, req.Amount)
		return interfaces.CheckoutResult{
			ExternalID:  "mock-" + req.PaymentID,
			CheckoutURL: "https://checkout.local/mock/" + req.PaymentID,
		}, nil
	}
	if g.prefClient == nil {
		return interfaces.CheckoutResult{}, ErrMercadoPagoGatewayNotConfigured
	}
	log.Printf("[payment][gateway] checkout create start payment_id=%s amount=%.2f", req.PaymentID, req.Amount)

	prefReq := preference.Request{
		ExternalReference: req.PaymentID,
		NotificationURL:   g.notificationURL,
		Items: []preference.ItemRequest{
			{
				ID:          req.PaymentID,
				Title:       req.Title,
				Description: req.Description,
				Quantity:    1,
				UnitPrice:   req.Amount,
			},
		},
	}
	if g.backURL != "" {
		prefReq.BackURLs = &preference.BackURLsRequest{
			Success: g.backURL,
			Pending: g.backURL,
			Failure: g.backURL,
		}
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.prefClient.Create(ctx, prefReq)
	})
	if err != nil {
		log.Printf("[payment][gateway] checkout create failed payment_id=%s err=%v", req.PaymentID, err)
		return interfaces.CheckoutResult{}, err
	}
	resp := out.(*preference.Response)
	log.Printf("[payment][gateway] checkout created payment_id=%s preference_id=%s", req.PaymentID, resp.ID)

	return interfaces.CheckoutResult{ExternalID: resp.ID, CheckoutURL: resp.InitPoint}, nil
}

// GetStatus fetches the provider-side status of a payment. The raw provider
// status string is returned; callers normalize it.
func (g *MercadoPagoGateway) GetStatus(ctx context.Context, externalID string) (string, error) {
	if g.mockMode {
		status := getenvDefault("PAYMENT_GATEWAY_MOCK_STATUS", "approved")
		log.Printf("[payment][gateway] mock status lookup external_id=%s status=%s", externalID, status)
		return status, nil
	}
	if g.payClient == nil {
		return "", ErrMercadoPagoGatewayNotConfigured
	}

	id, err := strconv.Atoi(externalID)
	if err != nil {
		return "", fmt.Errorf("external id %q is not a mercado pago payment id: %w", externalID, err)
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.payClient.Get(ctx, id)
	})
	if err != nil {
		log.Printf("[payment][gateway] status lookup failed external_id=%s err=%v", externalID, err)
		return "", err
	}
	resp := out.(*payment.Response)
	log.Printf("[payment][gateway] status lookup external_id=%s status=%s", externalID, resp.Status)
	return resp.Status, nil
}

func isPaymentGatewayMockEnabled() bool {
	for _, key := range []string{"PAYMENT_GATEWAY_MOCK", "MERCADOPAGO_MOCK"} {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
		switch v {
		case "1", "true", "yes", "on", "mock":
			return true
		}
	}
	return false
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
