package handler_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mess_finder/internal/model"
	"mess_finder/internal/repository"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int]model.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id int) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *memUserRepo) FindAll(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *memUserRepo) Delete(_ context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

type memMessRepo struct {
	mu     sync.Mutex
	nextID int
	messes map[int]model.Mess
}

func newMemMessRepo() *memMessRepo {
	return &memMessRepo{messes: map[int]model.Mess{}}
}

func (r *memMessRepo) Create(_ context.Context, m *model.Mess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	if m.Menu == nil {
		m.Menu = []string{}
	}
	m.CreatedAt, m.UpdatedAt = time.Now(), time.Now()
	r.messes[m.ID] = *m
	return nil
}

func (r *memMessRepo) FindByID(_ context.Context, id int) (*model.Mess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.messes[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (r *memMessRepo) list(keep func(model.Mess) bool) []model.Mess {
	messes := []model.Mess{}
	for _, m := range r.messes {
		if keep(m) {
			messes = append(messes, m)
		}
	}
	sort.Slice(messes, func(i, j int) bool { return messes[i].ID > messes[j].ID })
	return messes
}

func (r *memMessRepo) FindAll(_ context.Context, f model.MessFilters) ([]model.Mess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(m model.Mess) bool {
		if f.Area != nil && !strings.Contains(strings.ToLower(m.Area), strings.ToLower(*f.Area)) {
			return false
		}
		if f.MaxPrice != nil && m.Price.GreaterThan(*f.MaxPrice) {
			return false
		}
		if f.Delivery != nil && m.Delivery != *f.Delivery {
			return false
		}
		return true
	}), nil
}

func (r *memMessRepo) FindByOwner(_ context.Context, ownerID int) ([]model.Mess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(m model.Mess) bool { return m.OwnerID == ownerID }), nil
}

func (r *memMessRepo) Update(_ context.Context, id, ownerID int, in model.UpdateMessInput) (*model.Mess, *string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messes[id]
	if !ok || m.OwnerID != ownerID {
		return nil, nil, nil
	}
	prev := m.ImageURL
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Area != nil {
		m.Area = *in.Area
	}
	if in.Price != nil {
		m.Price = *in.Price
	}
	if in.Delivery != nil {
		m.Delivery = *in.Delivery
	}
	if in.Menu != nil {
		m.Menu = in.Menu
	}
	if in.ImageURL != nil {
		m.ImageURL = in.ImageURL
	}
	m.UpdatedAt = time.Now()
	r.messes[id] = m
	return &m, prev, nil
}

func (r *memMessRepo) Delete(_ context.Context, id, ownerID int) (*model.Mess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messes[id]
	if !ok || (ownerID != 0 && m.OwnerID != ownerID) {
		return nil, nil
	}
	delete(r.messes, id)
	return &m, nil
}

func (r *memMessRepo) FindImagesByOwner(_ context.Context, ownerID int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	images := []string{}
	for _, m := range r.messes {
		if m.OwnerID == ownerID && m.ImageURL != nil {
			images = append(images, *m.ImageURL)
		}
	}
	return images, nil
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (d *memDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = ttl
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[tokenID]
	return ok, nil
}
