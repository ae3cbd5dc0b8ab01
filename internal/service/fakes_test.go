package service_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/soloviev/wearshop/internal/domain/models"
	"github.com/soloviev/wearshop/internal/storage"
)

var errFakeStorage = errors.New("fake storage failure")

// fakeProductRepo — фиктивный каталог, ключ — id товара
type fakeProductRepo struct {
	products map[int64]*models.Product
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*models.Product)}
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return product, nil
}

// fakeUserRepo — фиктивный репозиторий пользователей, ключ — email
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*models.User
	nextID  int64
	chatErr error // если задана, SetTelegramChatIDTx возвращает её
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[string]*models.User),
	}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return nil, storage.ErrEmailTaken
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, passHash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.PassHash = passHash
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (f *fakeUserRepo) SetTelegramChatIDTx(ctx context.Context, tx *sql.Tx, id int64, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chatErr != nil {
		return f.chatErr
	}
	for _, u := range f.users {
		if u.ID == id {
			u.TelegramChatID = &chatID
			return nil
		}
	}
	return storage.ErrUserNotFound
}

// fakeCartRepo — фиктивный репозиторий корзин
type fakeCartRepo struct {
	carts   map[int64]*models.Cart       // ключ: userID
	items   map[int64][]*models.CartItem // ключ: cartID
	lockErr error                        // если задана, LockByUserIDTx возвращает её
	nextID  int64
}

var _ storage.CartStorage = (*fakeCartRepo)(nil)

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{
		carts: make(map[int64]*models.Cart),
		items: make(map[int64][]*models.CartItem),
	}
}

func (f *fakeCartRepo) GetOrCreateByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	if cart, ok := f.carts[userID]; ok {
		return cart, nil
	}
	f.nextID++
	cart := &models.Cart{ID: f.nextID, UserID: userID}
	f.carts[userID] = cart
	return cart, nil
}

func (f *fakeCartRepo) LockByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Cart, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	cart, ok := f.carts[userID]
	if !ok {
		return nil, storage.ErrCartNotFound
	}
	return cart, nil
}

func (f *fakeCartRepo) Items(ctx context.Context, cartID int64) ([]*models.CartItem, error) {
	return f.items[cartID], nil
}

func (f *fakeCartRepo) ItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.CartItem, error) {
	return f.items[cartID], nil
}

func (f *fakeCartRepo) AddItem(ctx context.Context, cartID, productID int64, quantity int) error {
	for _, it := range f.items[cartID] {
		if it.ProductID == productID {
			it.Quantity += quantity
			return nil
		}
	}
	f.items[cartID] = append(f.items[cartID], &models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

func (f *fakeCartRepo) UpdateItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error {
	for _, it := range f.items[cartID] {
		if it.ProductID == productID {
			it.Quantity = quantity
			return nil
		}
	}
	return storage.ErrCartItemNotFound
}

func (f *fakeCartRepo) RemoveItem(ctx context.Context, cartID, productID int64) error {
	items := f.items[cartID]
	for i, it := range items {
		if it.ProductID == productID {
			f.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return storage.ErrCartItemNotFound
}

func (f *fakeCartRepo) ClearTx(ctx context.Context, tx *sql.Tx, cartID int64) error {
	f.items[cartID] = nil
	return nil
}

// fakeOrderRepo — фиктивный репозиторий заказов
type fakeOrderRepo struct {
	orders      []*models.Order
	itemsByID   map[int64][]models.OrderItem
	failOnItems bool // эмулирует сбой на вставке позиции
	nextID      int64
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{itemsByID: make(map[int64][]models.OrderItem)}
}

func (f *fakeOrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	f.nextID++
	order.ID = f.nextID
	order.CreatedAt = time.Now()
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrderRepo) CreateItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	if f.failOnItems {
		return errFakeStorage
	}
	item.ID = int64(len(f.itemsByID[item.OrderID]) + 1)
	f.itemsByID[item.OrderID] = append(f.itemsByID[item.OrderID], *item)
	return nil
}

func (f *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	var result []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	return result, nil
}

// fakeResetCodeRepo — журнал кодов сброса, только добавление
type fakeResetCodeRepo struct {
	records []*models.PasswordResetCode
	nextID  int64
}

var _ storage.ResetCodeStorage = (*fakeResetCodeRepo)(nil)

func newFakeResetCodeRepo() *fakeResetCodeRepo {
	return &fakeResetCodeRepo{}
}

func (f *fakeResetCodeRepo) Create(ctx context.Context, userID int64, code string) (*models.PasswordResetCode, error) {
	f.nextID++
	rec := &models.PasswordResetCode{
		ID:        f.nextID,
		UserID:    userID,
		Code:      code,
		CreatedAt: time.Now(),
	}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeResetCodeRepo) GetLatestByUserAndCode(ctx context.Context, userID int64, code string) (*models.PasswordResetCode, error) {
	var latest *models.PasswordResetCode
	for _, rec := range f.records {
		if rec.UserID != userID || rec.Code != code {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, storage.ErrCodeNotFound
	}
	return latest, nil
}

// fakeLinkCodeRepo — одна строка на пользователя, перевыпуск перезаписывает
type fakeLinkCodeRepo struct {
	byUser    map[int64]*models.LinkCode
	nextID    int64
	conflicts int // столько первых Upsert отвергаются как занятое значение
}

var _ storage.LinkCodeStorage = (*fakeLinkCodeRepo)(nil)

func newFakeLinkCodeRepo() *fakeLinkCodeRepo {
	return &fakeLinkCodeRepo{byUser: make(map[int64]*models.LinkCode)}
}

func (f *fakeLinkCodeRepo) Upsert(ctx context.Context, userID int64, code string) (*models.LinkCode, error) {
	if f.conflicts > 0 {
		f.conflicts--
		return nil, storage.ErrCodeTaken
	}
	// значение кода уникально глобально, как и в схеме БД
	for _, rec := range f.byUser {
		if rec.Code == code && rec.UserID != userID {
			return nil, storage.ErrCodeTaken
		}
	}
	rec, ok := f.byUser[userID]
	if !ok {
		f.nextID++
		rec = &models.LinkCode{ID: f.nextID, UserID: userID}
		f.byUser[userID] = rec
	}
	rec.Code = code
	rec.Claimed = false
	rec.CreatedAt = time.Now()
	return rec, nil
}

func (f *fakeLinkCodeRepo) GetByCode(ctx context.Context, code string) (*models.LinkCode, error) {
	for _, rec := range f.byUser {
		if rec.Code == code {
			return rec, nil
		}
	}
	return nil, storage.ErrCodeNotFound
}

func (f *fakeLinkCodeRepo) MarkClaimedTx(ctx context.Context, tx *sql.Tx, id int64) error {
	for _, rec := range f.byUser {
		if rec.ID == id && !rec.Claimed {
			rec.Claimed = true
			return nil
		}
	}
	return storage.ErrCodeNotFound
}

// fakeNotifier запоминает отправленные письма
type fakeNotifier struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeNotifier) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}
