package webhookpubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/pkg/circuitbreaker"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRequestTimeout = 15 * time.Second
	tokenTTL              = 5 * time.Minute
)

// Service notifies private order status events to the registered webhooks.
// Every hook has its own circuit breaker.
type Service struct {
	httpClient *client

	lock     sync.RWMutex
	hooks    map[string]*Webhook
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewWebhookPubSubService returns a status publisher invoking the given
// webhooks. More can be added at runtime.
func NewWebhookPubSubService(
	requestTimeout time.Duration, hooks ...*Webhook,
) *Service {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	svc := &Service{
		httpClient: newHTTPClient(requestTimeout),
		hooks:      make(map[string]*Webhook),
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, hook := range hooks {
		svc.add(hook)
	}
	return svc
}

// AddWebhook registers a new hook for the given action and returns its id.
func (ws *Service) AddWebhook(action, endpoint, secret string) (string, error) {
	actionType, ok := WebhookActionFromString(action)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownWebhookAction, action)
	}
	hook, err := NewWebhook(actionType, endpoint, secret)
	if err != nil {
		return "", err
	}

	ws.lock.Lock()
	defer ws.lock.Unlock()
	ws.add(hook)
	return hook.ID, nil
}

func (ws *Service) add(hook *Webhook) {
	ws.hooks[hook.ID] = hook
	ws.breakers[hook.ID] = circuitbreaker.NewCircuitBreaker(
		fmt.Sprintf("webhook-%s", hook.ID),
	)
}

// RemoveWebhook ...
func (ws *Service) RemoveWebhook(id string) error {
	ws.lock.Lock()
	defer ws.lock.Unlock()

	if _, ok := ws.hooks[id]; !ok {
		return ErrWebhookNotFound
	}
	delete(ws.hooks, id)
	delete(ws.breakers, id)
	return nil
}

// ListWebhooks returns the hooks invoked for the given action, including
// those registered for all actions. Secrets are omitted.
func (ws *Service) ListWebhooks(action WebhookAction) []Webhook {
	hooks := ws.hooksForAction(action)
	list := make([]Webhook, 0, len(hooks))
	for _, h := range hooks {
		list = append(list, Webhook{ID: h.ID, ActionType: h.ActionType, Endpoint: h.Endpoint})
	}
	return list
}

// PublishStatus makes a POST request to every webhook endpoint registered for
// the action the event belongs to.
// This method adopts a circuit breaker approach in order to not hang the
// caller on endpoints that are down. A failing endpoint doesn't affect the
// delivery to the others.
func (ws *Service) PublishStatus(ctx context.Context, event domain.StatusEvent) error {
	hooks := ws.hooksForAction(actionForStatus(event.Status))
	if len(hooks) <= 0 {
		return nil
	}

	payload := event.Payload()
	payload["event"] = actionForStatus(event.Status).String()
	message, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	eg := &errgroup.Group{}
	for i := range hooks {
		hook := hooks[i]
		eg.Go(func() error { return ws.doRequest(ctx, hook, string(message)) })
	}
	return eg.Wait()
}

func (ws *Service) hooksForAction(action WebhookAction) []*Webhook {
	ws.lock.RLock()
	defer ws.lock.RUnlock()

	hooks := make([]*Webhook, 0, len(ws.hooks))
	for _, h := range ws.hooks {
		if h.matches(action) {
			hooks = append(hooks, h)
		}
	}
	sort.SliceStable(hooks, func(i, j int) bool { return hooks[i].ID < hooks[j].ID })
	return hooks
}

func (ws *Service) breaker(hook *Webhook) *gobreaker.CircuitBreaker {
	ws.lock.RLock()
	cb, ok := ws.breakers[hook.ID]
	ws.lock.RUnlock()
	if ok {
		return cb
	}
	// The hook has been removed in the meanwhile.
	return circuitbreaker.NewCircuitBreaker(fmt.Sprintf("webhook-%s", hook.ID))
}

func (ws *Service) doRequest(ctx context.Context, hook *Webhook, payload string) error {
	_, err := ws.breaker(hook).Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if hook.IsSecured() {
			now := time.Now()
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				IssuedAt:  now.Unix(),
				ExpiresAt: now.Add(tokenTTL).Unix(),
				Subject:   hook.ID,
			})
			tokenString, err := token.SignedString([]byte(hook.Secret))
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := ws.httpClient.post(ctx, hook.Endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("webhook %s replied %d: %s", hook.Endpoint, status, resp)
		}
		return nil, nil
	})
	if err != nil {
		log.WithError(err).Debugf("failed to invoke webhook %s", hook.ID)
	}
	return err
}
