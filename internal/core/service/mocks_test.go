package service

import (
	"context"
	"sync"
	"time"

	"github.com/funkystitch/storefront/internal/core/domain"
	"github.com/funkystitch/storefront/internal/port"
)

type memProductRepo struct {
	mu          sync.Mutex
	products    map[string]*domain.Product
	adjustCalls int
}

func newMemProductRepo(products ...*domain.Product) *memProductRepo {
	repo := &memProductRepo{products: make(map[string]*domain.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (m *memProductRepo) Create(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *memProductRepo) Update(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return port.ErrNotFound
	}
	m.products[p.ID] = p
	return nil
}

func (m *memProductRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return port.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memProductRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	seen := make(map[string]bool)
	for _, id := range ids {
		if p, ok := m.products[id]; ok && !seen[id] {
			out = append(out, *p)
			seen[id] = true
		}
	}
	return out, nil
}

func (m *memProductRepo) List(ctx context.Context, query domain.ProductQuery) ([]domain.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *memProductRepo) Top(ctx context.Context, limit int) ([]domain.Product, error) {
	products, _, err := m.List(ctx, domain.ProductQuery{})
	if err != nil {
		return nil, err
	}
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (m *memProductRepo) AddReview(ctx context.Context, productID string, review domain.Review, rating float64, numReviews int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return port.ErrNotFound
	}
	p.Reviews = append(p.Reviews, review)
	p.Rating = rating
	p.NumReviews = numReviews
	return nil
}

func (m *memProductRepo) AdjustStockForOrder(ctx context.Context, decs []domain.StockDecrement) ([]domain.StockAdjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustCalls++
	adjustments := make([]domain.StockAdjustment, 0, len(decs))
	for _, dec := range decs {
		p, ok := m.products[dec.ProductID]
		if !ok {
			adjustments = append(adjustments, domain.StockAdjustment{
				ProductID: dec.ProductID,
				Variant:   dec.Variant,
				Quantity:  dec.Quantity,
				Outcome:   domain.StockProductMissing,
			})
			continue
		}
		adjustments = append(adjustments, domain.ApplyStockDecrement(p, dec))
	}
	return adjustments, nil
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*domain.Order)}
}

func (m *memOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *o
	m.orders[o.ID] = &clone
	return nil
}

func (m *memOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (m *memOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrderRepo) Update(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; !ok {
		return port.ErrNotFound
	}
	clone := *o
	m.orders[o.ID] = &clone
	return nil
}

func (m *memOrderRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return port.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *memOrderRepo) PaymentTransactionSeen(ctx context.Context, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.IsPaid && o.PaymentResult != nil && o.PaymentResult.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

type memCartStore struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[string]*domain.Cart)}
}

func (m *memCartStore) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return nil, port.ErrCacheMiss
	}
	return cart, nil
}

func (m *memCartStore) PutCart(ctx context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[cart.UserID] = cart
	return nil
}

func (m *memCartStore) DeleteCart(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

type memClaimStore struct {
	mu     sync.Mutex
	claims map[string]bool
}

func newMemClaimStore() *memClaimStore {
	return &memClaimStore{claims: make(map[string]bool)}
}

func (m *memClaimStore) ClaimTransaction(ctx context.Context, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claims[transactionID] {
		return false, nil
	}
	m.claims[transactionID] = true
	return true, nil
}

func (m *memClaimStore) ReleaseTransaction(ctx context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, transactionID)
	return nil
}

type stubGateway struct {
	verification *port.PaymentVerification
	err          error
}

func (g *stubGateway) Verify(ctx context.Context, transactionID string) (*port.PaymentVerification, error) {
	return g.verification, g.err
}

type recordedEvent struct {
	Type string
	Key  string
}

type memEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (m *memEvents) Publish(ctx context.Context, eventType, key string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, recordedEvent{Type: eventType, Key: key})
	return nil
}

func (m *memEvents) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	repo := &memUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (m *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, port.ErrNotFound
}

func (m *memUserRepo) EmailOrPhoneTaken(ctx context.Context, email, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || (phone != "" && u.Phone == phone) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepo) Update(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return port.ErrNotFound
	}
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *memUserRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return port.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) List(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]string)}
}

func (m *memSessionStore) PutSession(ctx context.Context, token, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = userID
	return nil
}

func (m *memSessionStore) GetSession(ctx context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.sessions[token]
	if !ok {
		return "", port.ErrCacheMiss
	}
	return userID, nil
}

func (m *memSessionStore) DeleteSession(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

type memRegistrationStore struct {
	mu      sync.Mutex
	pending map[string]domain.PendingUser
}

func newMemRegistrationStore() *memRegistrationStore {
	return &memRegistrationStore{pending: make(map[string]domain.PendingUser)}
}

func (m *memRegistrationStore) PutPending(ctx context.Context, pending domain.PendingUser, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[pending.Email] = pending
	return nil
}

func (m *memRegistrationStore) GetPending(ctx context.Context, email string) (*domain.PendingUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, ok := m.pending[email]
	if !ok {
		return nil, port.ErrCacheMiss
	}
	return &pending, nil
}

func (m *memRegistrationStore) DeletePending(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, email)
	return nil
}

type memResetStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemResetStore() *memResetStore {
	return &memResetStore{tokens: make(map[string]string)}
}

func (m *memResetStore) PutResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = userID
	return nil
}

func (m *memResetStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.tokens[token]
	if !ok {
		return "", port.ErrCacheMiss
	}
	delete(m.tokens, token)
	return userID, nil
}

type memMailer struct {
	mu       sync.Mutex
	otps     map[string]string
	resets   map[string]string
	contacts []domain.ContactMessage
}

func newMemMailer() *memMailer {
	return &memMailer{otps: make(map[string]string), resets: make(map[string]string)}
}

func (m *memMailer) SendOTP(ctx context.Context, to, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[to] = otp
	return nil
}

func (m *memMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[to] = resetURL
	return nil
}

func (m *memMailer) SendContact(ctx context.Context, msg domain.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = append(m.contacts, msg)
	return nil
}
